package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

// Subscription is the billing root entity, one per organization. The
// plan-derived columns (plan, monthly_price, limits, features) are a snapshot
// taken at the last plan assignment, never a live reference to the catalog.
type Subscription struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID `gorm:"column:organization_id;type:uuid;not null;uniqueIndex"`

	Status             enums.SubscriptionStatus `gorm:"column:status;not null;default:'trial'"`
	TrialDays          int                      `gorm:"column:trial_days;not null;default:0"`
	TrialStartDate     *time.Time               `gorm:"column:trial_start_date"`
	TrialEndDate       *time.Time               `gorm:"column:trial_end_date"`
	StartDate          *time.Time               `gorm:"column:start_date"`
	CancelledAt        *time.Time               `gorm:"column:cancelled_at"`
	CancellationReason *string                  `gorm:"column:cancellation_reason"`

	Plan            enums.PlanType `gorm:"column:plan;not null"`
	MonthlyPrice    int64          `gorm:"column:monthly_price;not null;default:0"`
	MaxStaff        int            `gorm:"column:max_staff;not null;default:0"`
	MaxClients      int            `gorm:"column:max_clients;not null;default:0"`
	StorageLimitMB  int64          `gorm:"column:storage_limit_mb;not null;default:0"`
	Features        pq.StringArray `gorm:"column:features;type:text[];default:ARRAY[]::text[]"`
	AutoRenewal     bool           `gorm:"column:auto_renewal;not null;default:false"`
	NextBillingDate *time.Time     `gorm:"column:next_billing_date"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
	CreatedBy string    `gorm:"column:created_by"`
	UpdatedBy string    `gorm:"column:updated_by"`
}

// HasFeature reports whether the snapshotted feature set contains key.
func (s *Subscription) HasFeature(key enums.FeatureKey) bool {
	if s == nil {
		return false
	}
	for _, feature := range s.Features {
		if feature == string(key) {
			return true
		}
	}
	return false
}
