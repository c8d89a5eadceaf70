package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kaigocloud/carebill-backend/pkg/config"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "carebill-test",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	orgID := uuid.New()
	payload := AccessTokenPayload{
		UserID:         uuid.New(),
		OrganizationID: &orgID,
		Role:           enums.ActorRoleOperator,
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("expected user id %s, got %s", payload.UserID, claims.UserID)
	}
	if claims.OrganizationID == nil || *claims.OrganizationID != orgID {
		t.Fatalf("expected organization id %s, got %v", orgID, claims.OrganizationID)
	}
	if claims.Role != enums.ActorRoleOperator {
		t.Fatalf("expected operator role, got %s", claims.Role)
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRole("superuser"),
	})
	if err == nil {
		t.Fatalf("expected error for invalid role")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	other := testJWTConfig()
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}
