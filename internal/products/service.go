package products

import (
	"context"
	"fmt"

	"github.com/kaigocloud/carebill-backend/internal/pricing"
	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	pkgerrors "github.com/kaigocloud/carebill-backend/pkg/errors"
)

type productRepository interface {
	ListActive(ctx context.Context) ([]models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

// Service exposes the add-on product catalog.
type Service interface {
	ListActive(ctx context.Context) ([]models.Product, error)
	ResolveForPricing(ctx context.Context, ids []string) ([]pricing.ProductInput, error)
}

type service struct {
	repo productRepository
}

// NewService builds a product catalog service.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

// ResolveForPricing turns product IDs into calculator inputs. The result keeps
// the caller's order because the fee breakdown is rendered line by line.
// Duplicate, unknown, and inactive IDs are rejected.
func (s *service) ResolveForPricing(ctx context.Context, ids []string) ([]pricing.ProductInput, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product id: "+id)
		}
		seen[id] = true
	}

	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[string]models.Product, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	inputs := make([]pricing.ProductInput, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found: "+id)
		}
		if !row.Active {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product not available: "+id)
		}
		inputs = append(inputs, pricing.ProductInput{
			ID:            row.ID,
			Name:          row.DisplayName,
			PriceStandard: row.PriceStandard,
			PriceAI:       row.PriceAI,
		})
	}
	return inputs, nil
}
