package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/kaigocloud/carebill-backend/internal/entitlements"
	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

type stubSubscriptionSource struct {
	sub *models.Subscription
	err error
}

func (s *stubSubscriptionSource) FindByOrganization(ctx context.Context, organizationID uuid.UUID) (*models.Subscription, error) {
	return s.sub, s.err
}

func TestEntitlementsGetActiveSubscription(t *testing.T) {
	orgID := uuid.New()
	source := &stubSubscriptionSource{
		sub: &models.Subscription{
			ID:             uuid.New(),
			OrganizationID: orgID,
			Status:         enums.SubscriptionStatusActive,
			Plan:           enums.PlanTypeStandard,
			Features:       pq.StringArray{string(enums.FeatureCarePlans)},
		},
	}

	req := orgRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String()+"/entitlements", orgID, enums.ActorRoleOperator, nil)
	resp := httptest.NewRecorder()
	EntitlementsGet(source, entitlements.NewGate(), nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var envelope struct {
		Data entitlementsResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Active {
		t.Fatal("expected active subscription")
	}
	if envelope.Data.TrialActive {
		t.Fatal("active subscription should not report trial")
	}
	if !envelope.Data.Limits.CanAddStaff {
		t.Fatal("expected staff limit open for active subscription")
	}
	if len(envelope.Data.Features) != 1 {
		t.Fatalf("unexpected features %v", envelope.Data.Features)
	}
}

func TestEntitlementsGetExpiredTrial(t *testing.T) {
	orgID := uuid.New()
	ended := time.Now().Add(-24 * time.Hour)
	source := &stubSubscriptionSource{
		sub: &models.Subscription{
			ID:             uuid.New(),
			OrganizationID: orgID,
			Status:         enums.SubscriptionStatusTrial,
			TrialEndDate:   &ended,
			Plan:           enums.PlanTypeStandard,
		},
	}

	req := orgRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String()+"/entitlements", orgID, enums.ActorRoleOperator, nil)
	resp := httptest.NewRecorder()
	EntitlementsGet(source, entitlements.NewGate(), nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var envelope struct {
		Data entitlementsResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Active {
		t.Fatal("expired trial must not be active")
	}
	if envelope.Data.TrialDaysRemaining != 0 {
		t.Fatalf("expected zero days remaining, got %d", envelope.Data.TrialDaysRemaining)
	}
}

func TestEntitlementsGetMissingSubscription(t *testing.T) {
	orgID := uuid.New()
	source := &stubSubscriptionSource{err: gorm.ErrRecordNotFound}

	req := orgRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String()+"/entitlements", orgID, enums.ActorRoleOperator, nil)
	resp := httptest.NewRecorder()
	EntitlementsGet(source, entitlements.NewGate(), nil)(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
