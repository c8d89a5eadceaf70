package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/kaigocloud/carebill-backend/internal/plans"
	"github.com/kaigocloud/carebill-backend/pkg/config"
	"github.com/kaigocloud/carebill-backend/pkg/db"
	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
	pkgerrors "github.com/kaigocloud/carebill-backend/pkg/errors"
)

type subscriptionRepository interface {
	FindByOrganization(ctx context.Context, organizationID uuid.UUID) (*models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, sub *models.Subscription) error
}

// Service drives the subscription lifecycle. Every transition reads a fresh
// snapshot, mutates it in memory, and writes it back as one atomic replace.
type Service interface {
	Get(ctx context.Context, organizationID uuid.UUID) (*SubscriptionDTO, error)
	StartTrial(ctx context.Context, organizationID uuid.UUID, input StartTrialInput) (*SubscriptionDTO, error)
	StartPaid(ctx context.Context, organizationID uuid.UUID, input StartPaidInput) (*SubscriptionDTO, error)
	ChangePlan(ctx context.Context, organizationID uuid.UUID, input ChangePlanInput) (*SubscriptionDTO, error)
	Cancel(ctx context.Context, organizationID uuid.UUID, input CancelInput) (*SubscriptionDTO, error)
	Suspend(ctx context.Context, organizationID uuid.UUID, actor string) (*SubscriptionDTO, error)
	Resume(ctx context.Context, organizationID uuid.UUID, actor string) (*SubscriptionDTO, error)
}

// StartTrialInput opens a trial subscription. TrialDays falls back to the
// configured default when zero; Plan is the plan being trialled.
type StartTrialInput struct {
	Plan      enums.PlanType
	TrialDays int
	Actor     string
}

// StartPaidInput opens a paid subscription directly, skipping the trial.
// AutoRenewal defaults to true when nil.
type StartPaidInput struct {
	Plan        enums.PlanType
	AutoRenewal *bool
	Actor       string
}

// ChangePlanInput switches the subscription to another plan.
type ChangePlanInput struct {
	Plan  enums.PlanType
	Actor string
}

// CancelInput closes the subscription.
type CancelInput struct {
	Reason string
	Actor  string
}

type service struct {
	repo    subscriptionRepository
	catalog plans.Catalog
	billing config.BillingConfig
	now     func() time.Time
}

// NewService builds the lifecycle service.
func NewService(repo subscriptionRepository, catalog plans.Catalog, billing config.BillingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if billing.CycleDays <= 0 {
		return nil, fmt.Errorf("billing cycle days must be positive")
	}
	if billing.DefaultTrialDays <= 0 {
		return nil, fmt.Errorf("default trial days must be positive")
	}
	return &service{
		repo:    repo,
		catalog: catalog,
		billing: billing,
		now:     time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, organizationID uuid.UUID) (*SubscriptionDTO, error) {
	sub, err := s.load(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	return FromModel(sub), nil
}

func (s *service) StartTrial(ctx context.Context, organizationID uuid.UUID, input StartTrialInput) (*SubscriptionDTO, error) {
	if organizationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if !input.Plan.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan type")
	}
	trialDays := input.TrialDays
	if trialDays == 0 {
		trialDays = s.billing.DefaultTrialDays
	}
	if trialDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "trial days must not be negative")
	}

	now := s.now()
	trialEnd := now.AddDate(0, 0, trialDays)
	sub := &models.Subscription{
		OrganizationID: organizationID,
		Status:         enums.SubscriptionStatusTrial,
		TrialDays:      trialDays,
		TrialStartDate: &now,
		TrialEndDate:   &trialEnd,
		AutoRenewal:    false,
		CreatedBy:      input.Actor,
		UpdatedBy:      input.Actor,
	}
	s.applyPlanSnapshot(sub, input.Plan)

	if err := s.repo.Create(ctx, sub); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "organization already has a subscription")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
	}
	return FromModel(sub), nil
}

func (s *service) StartPaid(ctx context.Context, organizationID uuid.UUID, input StartPaidInput) (*SubscriptionDTO, error) {
	if organizationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if !input.Plan.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan type")
	}
	autoRenewal := true
	if input.AutoRenewal != nil {
		autoRenewal = *input.AutoRenewal
	}

	now := s.now()
	nextBilling := now.AddDate(0, 0, s.billing.CycleDays)
	sub := &models.Subscription{
		OrganizationID:  organizationID,
		Status:          enums.SubscriptionStatusActive,
		StartDate:       &now,
		AutoRenewal:     autoRenewal,
		NextBillingDate: &nextBilling,
		CreatedBy:       input.Actor,
		UpdatedBy:       input.Actor,
	}
	s.applyPlanSnapshot(sub, input.Plan)

	if err := s.repo.Create(ctx, sub); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "organization already has a subscription")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
	}
	return FromModel(sub), nil
}

// ChangePlan moves the subscription onto another plan and activates it. Valid
// from any state: a trial converts, a suspended or cancelled subscription is
// reinstated. No proration is applied here; callers wanting prorated charges
// compute them separately around this transition.
func (s *service) ChangePlan(ctx context.Context, organizationID uuid.UUID, input ChangePlanInput) (*SubscriptionDTO, error) {
	if !input.Plan.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan type")
	}
	sub, err := s.load(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	previous := sub.Plan

	now := s.now()
	nextBilling := now.AddDate(0, 0, s.billing.CycleDays)
	sub.Status = enums.SubscriptionStatusActive
	sub.TrialEndDate = nil
	sub.AutoRenewal = true
	sub.NextBillingDate = &nextBilling
	if sub.StartDate == nil {
		sub.StartDate = &now
	}
	sub.CancelledAt = nil
	sub.CancellationReason = nil
	sub.UpdatedBy = input.Actor
	s.applyPlanSnapshot(sub, input.Plan)

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
	}
	dto := FromModel(sub)
	dto.PlanChange = classifyPlanChange(previous, input.Plan)
	return dto, nil
}

// classifyPlanChange labels the direction of a plan switch by entitlement
// rank. The label is informational; pricing never consults it.
func classifyPlanChange(from, to enums.PlanType) string {
	switch {
	case to == from:
		return "unchanged"
	case to.IsUpgradeFrom(from):
		return "upgrade"
	default:
		return "downgrade"
	}
}

func (s *service) Cancel(ctx context.Context, organizationID uuid.UUID, input CancelInput) (*SubscriptionDTO, error) {
	sub, err := s.load(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if sub.Status == enums.SubscriptionStatusCancelled {
		return nil, transitionError("cancel", sub.Status)
	}

	now := s.now()
	sub.Status = enums.SubscriptionStatusCancelled
	sub.AutoRenewal = false
	sub.CancelledAt = &now
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		sub.CancellationReason = &reason
	} else {
		sub.CancellationReason = nil
	}
	sub.UpdatedBy = input.Actor

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
	}
	return FromModel(sub), nil
}

func (s *service) Suspend(ctx context.Context, organizationID uuid.UUID, actor string) (*SubscriptionDTO, error) {
	sub, err := s.load(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if sub.Status != enums.SubscriptionStatusActive {
		return nil, transitionError("suspend", sub.Status)
	}

	sub.Status = enums.SubscriptionStatusSuspended
	sub.AutoRenewal = false
	sub.UpdatedBy = actor

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
	}
	return FromModel(sub), nil
}

func (s *service) Resume(ctx context.Context, organizationID uuid.UUID, actor string) (*SubscriptionDTO, error) {
	sub, err := s.load(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if sub.Status != enums.SubscriptionStatusSuspended {
		return nil, transitionError("resume", sub.Status)
	}

	now := s.now()
	nextBilling := now.AddDate(0, 0, s.billing.CycleDays)
	sub.Status = enums.SubscriptionStatusActive
	sub.AutoRenewal = true
	sub.NextBillingDate = &nextBilling
	sub.UpdatedBy = actor

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
	}
	return FromModel(sub), nil
}

func (s *service) load(ctx context.Context, organizationID uuid.UUID) (*models.Subscription, error) {
	if organizationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	sub, err := s.repo.FindByOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	return sub, nil
}

// applyPlanSnapshot overwrites every plan-derived field as one unit. Partial
// updates would let a subscription carry one plan's limits with another plan's
// features, so individual fields are never written outside this helper.
func (s *service) applyPlanSnapshot(sub *models.Subscription, plan enums.PlanType) {
	def := s.catalog.Definition(plan)
	sub.Plan = plan
	sub.MonthlyPrice = def.MonthlyPrice
	sub.MaxStaff = def.MaxStaff
	sub.MaxClients = def.MaxClients
	sub.StorageLimitMB = def.StorageLimitMB
	sub.Features = pq.StringArray(def.FeatureKeys())
}

func transitionError(transition string, current enums.SubscriptionStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot %s subscription in status %s", transition, current))
}
