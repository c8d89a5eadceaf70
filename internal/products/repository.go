package products

import (
	"context"

	"gorm.io/gorm"

	"github.com/kaigocloud/carebill-backend/pkg/db/models"
)

// Repository persists the add-on product catalog.
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

// ListActive returns the sellable catalog ordered for display.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC").
		Order("id ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindByIDs loads the requested products in one query. Missing IDs are simply
// absent from the result; callers decide whether that is an error.
func (r *Repository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).
		Error
	return rows, err
}

// Upsert creates or replaces a catalog row, used by seeding and admin tooling.
func (r *Repository) Upsert(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}
