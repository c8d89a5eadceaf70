package subscriptions

import (
	"time"

	"github.com/google/uuid"

	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

// SubscriptionDTO is the API shape of a subscription record.
type SubscriptionDTO struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`

	Status             enums.SubscriptionStatus `json:"status"`
	TrialDays          int                      `json:"trial_days"`
	TrialStartDate     *time.Time               `json:"trial_start_date,omitempty"`
	TrialEndDate       *time.Time               `json:"trial_end_date,omitempty"`
	StartDate          *time.Time               `json:"start_date,omitempty"`
	CancelledAt        *time.Time               `json:"cancelled_at,omitempty"`
	CancellationReason *string                  `json:"cancellation_reason,omitempty"`

	Plan            enums.PlanType `json:"plan"`
	MonthlyPrice    int64          `json:"monthly_price"`
	MaxStaff        int            `json:"max_staff"`
	MaxClients      int            `json:"max_clients"`
	StorageLimitMB  int64          `json:"storage_limit_mb"`
	Features        []string       `json:"features"`
	AutoRenewal     bool           `json:"auto_renewal"`
	NextBillingDate *time.Time     `json:"next_billing_date,omitempty"`

	// PlanChange classifies a plan-change response as upgrade, downgrade or
	// unchanged by entitlement rank. Empty on every other operation.
	PlanChange string `json:"plan_change,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModel maps the persistence model onto the API DTO.
func FromModel(sub *models.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	features := make([]string, len(sub.Features))
	copy(features, sub.Features)
	return &SubscriptionDTO{
		ID:                 sub.ID,
		OrganizationID:     sub.OrganizationID,
		Status:             sub.Status,
		TrialDays:          sub.TrialDays,
		TrialStartDate:     sub.TrialStartDate,
		TrialEndDate:       sub.TrialEndDate,
		StartDate:          sub.StartDate,
		CancelledAt:        sub.CancelledAt,
		CancellationReason: sub.CancellationReason,
		Plan:               sub.Plan,
		MonthlyPrice:       sub.MonthlyPrice,
		MaxStaff:           sub.MaxStaff,
		MaxClients:         sub.MaxClients,
		StorageLimitMB:     sub.StorageLimitMB,
		Features:           features,
		AutoRenewal:        sub.AutoRenewal,
		NextBillingDate:    sub.NextBillingDate,
		CreatedAt:          sub.CreatedAt,
		UpdatedAt:          sub.UpdatedAt,
	}
}
