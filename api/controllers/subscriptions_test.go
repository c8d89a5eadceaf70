package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kaigocloud/carebill-backend/api/middleware"
	"github.com/kaigocloud/carebill-backend/internal/subscriptions"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

type stubSubscriptionService struct {
	got        *subscriptions.SubscriptionDTO
	trialInput subscriptions.StartTrialInput
	paidInput  subscriptions.StartPaidInput
	planInput  subscriptions.ChangePlanInput
	cancelIn   subscriptions.CancelInput
	err        error
}

func (s *stubSubscriptionService) Get(ctx context.Context, organizationID uuid.UUID) (*subscriptions.SubscriptionDTO, error) {
	return s.got, s.err
}

func (s *stubSubscriptionService) StartTrial(ctx context.Context, organizationID uuid.UUID, input subscriptions.StartTrialInput) (*subscriptions.SubscriptionDTO, error) {
	s.trialInput = input
	return s.got, s.err
}

func (s *stubSubscriptionService) StartPaid(ctx context.Context, organizationID uuid.UUID, input subscriptions.StartPaidInput) (*subscriptions.SubscriptionDTO, error) {
	s.paidInput = input
	return s.got, s.err
}

func (s *stubSubscriptionService) ChangePlan(ctx context.Context, organizationID uuid.UUID, input subscriptions.ChangePlanInput) (*subscriptions.SubscriptionDTO, error) {
	s.planInput = input
	return s.got, s.err
}

func (s *stubSubscriptionService) Cancel(ctx context.Context, organizationID uuid.UUID, input subscriptions.CancelInput) (*subscriptions.SubscriptionDTO, error) {
	s.cancelIn = input
	return s.got, s.err
}

func (s *stubSubscriptionService) Suspend(ctx context.Context, organizationID uuid.UUID, actor string) (*subscriptions.SubscriptionDTO, error) {
	return s.got, s.err
}

func (s *stubSubscriptionService) Resume(ctx context.Context, organizationID uuid.UUID, actor string) (*subscriptions.SubscriptionDTO, error) {
	return s.got, s.err
}

func orgRequest(method, target string, orgID uuid.UUID, role enums.ActorRole, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := middleware.WithUserID(req.Context(), uuid.New().String())
	ctx = middleware.WithRole(ctx, string(role))
	if role == enums.ActorRoleOperator {
		ctx = middleware.WithOrganizationID(ctx, orgID.String())
	}
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("organizationId", orgID.String())
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

func testDTO(orgID uuid.UUID, status enums.SubscriptionStatus) *subscriptions.SubscriptionDTO {
	return &subscriptions.SubscriptionDTO{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Status:         status,
		Plan:           enums.PlanTypeStandard,
	}
}

func TestSubscriptionGetReturnsDTO(t *testing.T) {
	orgID := uuid.New()
	service := &stubSubscriptionService{got: testDTO(orgID, enums.SubscriptionStatusActive)}

	req := orgRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String()+"/subscription", orgID, enums.ActorRoleOperator, nil)
	resp := httptest.NewRecorder()
	SubscriptionGet(service, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var envelope struct {
		Data subscriptions.SubscriptionDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrganizationID != orgID {
		t.Fatalf("unexpected organization %s", envelope.Data.OrganizationID)
	}
}

func TestSubscriptionGetRejectsForeignOrganization(t *testing.T) {
	orgID := uuid.New()
	service := &stubSubscriptionService{got: testDTO(orgID, enums.SubscriptionStatusActive)}

	req := orgRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String()+"/subscription", orgID, enums.ActorRoleOperator, nil)
	req = req.WithContext(middleware.WithOrganizationID(req.Context(), uuid.New().String()))
	resp := httptest.NewRecorder()
	SubscriptionGet(service, nil)(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign organization, got %d", resp.Code)
	}
}

func TestSubscriptionGetAllowsAdminAnyOrganization(t *testing.T) {
	orgID := uuid.New()
	service := &stubSubscriptionService{got: testDTO(orgID, enums.SubscriptionStatusActive)}

	req := orgRequest(http.MethodGet, "/api/v1/organizations/"+orgID.String()+"/subscription", orgID, enums.ActorRoleAdmin, nil)
	resp := httptest.NewRecorder()
	SubscriptionGet(service, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.Code)
	}
}

func TestSubscriptionStartTrialParsesPayload(t *testing.T) {
	orgID := uuid.New()
	service := &stubSubscriptionService{got: testDTO(orgID, enums.SubscriptionStatusTrial)}

	payload := `{"plan":"standard","trial_days":14}`
	req := orgRequest(http.MethodPost, "/api/v1/organizations/"+orgID.String()+"/subscription/trial", orgID, enums.ActorRoleOperator, strings.NewReader(payload))
	resp := httptest.NewRecorder()
	SubscriptionStartTrial(service, nil, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if service.trialInput.Plan != enums.PlanTypeStandard {
		t.Fatalf("unexpected plan %s", service.trialInput.Plan)
	}
	if service.trialInput.TrialDays != 14 {
		t.Fatalf("unexpected trial days %d", service.trialInput.TrialDays)
	}
	if service.trialInput.Actor == "" {
		t.Fatal("expected actor from context")
	}
}

func TestSubscriptionStartTrialRejectsUnknownPlan(t *testing.T) {
	orgID := uuid.New()
	service := &stubSubscriptionService{got: testDTO(orgID, enums.SubscriptionStatusTrial)}

	payload := `{"plan":"platinum"}`
	req := orgRequest(http.MethodPost, "/api/v1/organizations/"+orgID.String()+"/subscription/trial", orgID, enums.ActorRoleOperator, strings.NewReader(payload))
	resp := httptest.NewRecorder()
	SubscriptionStartTrial(service, nil, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown plan, got %d", resp.Code)
	}
}

func TestSubscriptionStartPaidForwardsAutoRenewal(t *testing.T) {
	orgID := uuid.New()
	service := &stubSubscriptionService{got: testDTO(orgID, enums.SubscriptionStatusActive)}

	payload := `{"plan":"ai","auto_renewal":false}`
	req := orgRequest(http.MethodPost, "/api/v1/organizations/"+orgID.String()+"/subscription/paid", orgID, enums.ActorRoleOperator, strings.NewReader(payload))
	resp := httptest.NewRecorder()
	SubscriptionStartPaid(service, nil, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if service.paidInput.Plan != enums.PlanTypeAI {
		t.Fatalf("unexpected plan %s", service.paidInput.Plan)
	}
	if service.paidInput.AutoRenewal == nil || *service.paidInput.AutoRenewal {
		t.Fatal("expected auto renewal opt-out forwarded")
	}
}

func TestSubscriptionCancelTrimsReason(t *testing.T) {
	orgID := uuid.New()
	service := &stubSubscriptionService{got: testDTO(orgID, enums.SubscriptionStatusCancelled)}

	payload := `{"reason":"  closing the facility  "}`
	req := orgRequest(http.MethodPost, "/api/v1/organizations/"+orgID.String()+"/subscription/cancel", orgID, enums.ActorRoleOperator, strings.NewReader(payload))
	resp := httptest.NewRecorder()
	SubscriptionCancel(service, nil, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if service.cancelIn.Reason != "closing the facility" {
		t.Fatalf("unexpected reason %q", service.cancelIn.Reason)
	}
}

func TestSubscriptionChangePlanForwardsPlan(t *testing.T) {
	orgID := uuid.New()
	service := &stubSubscriptionService{got: testDTO(orgID, enums.SubscriptionStatusActive)}

	payload := `{"plan":"ai"}`
	req := orgRequest(http.MethodPost, "/api/v1/organizations/"+orgID.String()+"/subscription/plan", orgID, enums.ActorRoleOperator, strings.NewReader(payload))
	resp := httptest.NewRecorder()
	SubscriptionChangePlan(service, nil, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if service.planInput.Plan != enums.PlanTypeAI {
		t.Fatalf("unexpected plan %s", service.planInput.Plan)
	}
}

func TestSubscriptionSuspendAndResume(t *testing.T) {
	orgID := uuid.New()
	service := &stubSubscriptionService{got: testDTO(orgID, enums.SubscriptionStatusSuspended)}

	req := orgRequest(http.MethodPost, "/api/v1/organizations/"+orgID.String()+"/subscription/suspend", orgID, enums.ActorRoleAdmin, nil)
	resp := httptest.NewRecorder()
	SubscriptionSuspend(service, nil, nil)(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on suspend, got %d", resp.Code)
	}

	service.got = testDTO(orgID, enums.SubscriptionStatusActive)
	req = orgRequest(http.MethodPost, "/api/v1/organizations/"+orgID.String()+"/subscription/resume", orgID, enums.ActorRoleAdmin, nil)
	resp = httptest.NewRecorder()
	SubscriptionResume(service, nil, nil)(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on resume, got %d", resp.Code)
	}
}
