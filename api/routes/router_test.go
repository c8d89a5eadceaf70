package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaigocloud/carebill-backend/internal/entitlements"
	"github.com/kaigocloud/carebill-backend/internal/plans"
	"github.com/kaigocloud/carebill-backend/internal/pricing"
	"github.com/kaigocloud/carebill-backend/pkg/config"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}

	return NewRouter(
		cfg,
		nil,
		nil,
		nil,
		plans.Default(),
		pricing.NewCalculator(plans.Default(), 10),
		nil,
		nil,
		nil,
		entitlements.NewGate(),
		nil,
	)
}

func TestRouterHealthEndpointsArePublic(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
		if resp.Header().Get("X-CareBill-Env") != "test" {
			t.Fatalf("%s: expected env header", path)
		}
	}
}

func TestRouterAPIRequiresAuthentication(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}
