package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

// Repository persists subscription records. Each write replaces the whole row,
// matching the one-atomic-update-per-transition contract of the lifecycle.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByOrganization loads the organization's subscription.
func (r *Repository) FindByOrganization(ctx context.Context, organizationID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "organization_id = ?", organizationID).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create inserts a new subscription row. The unique index on organization_id
// enforces one subscription per organization at the database level.
func (r *Repository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// Update replaces the stored row with the provided snapshot.
func (r *Repository) Update(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// ListTrialsEndedBefore returns trial subscriptions whose trial window closed
// before the cutoff. Used by the expiry sweep.
func (r *Repository) ListTrialsEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.SubscriptionStatusTrial).
		Where("trial_end_date IS NOT NULL AND trial_end_date < ?", cutoff).
		Order("trial_end_date ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListDueForRenewal returns active auto-renewing subscriptions whose next
// billing date is at or before the cutoff.
func (r *Repository) ListDueForRenewal(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.SubscriptionStatusActive).
		Where("auto_renewal = ?", true).
		Where("next_billing_date IS NOT NULL AND next_billing_date <= ?", cutoff).
		Order("next_billing_date ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}
