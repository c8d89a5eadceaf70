package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/kaigocloud/carebill-backend/api/responses"
	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	pkgerrors "github.com/kaigocloud/carebill-backend/pkg/errors"
	"github.com/kaigocloud/carebill-backend/pkg/logger"
)

// ProductCatalogService describes the product methods used by the HTTP controllers.
type ProductCatalogService interface {
	ListActive(ctx context.Context) ([]models.Product, error)
}

type productResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	PriceStandard int64  `json:"price_standard"`
	PriceAI       *int64 `json:"price_ai,omitempty"`
	SortOrder     int    `json:"sort_order"`
	UpdatedAt     string `json:"updated_at"`
}

type productListResponse struct {
	Products []productResponse `json:"products"`
}

func ProductsList(svc ProductCatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		items, err := svc.ListActive(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result := make([]productResponse, 0, len(items))
		for _, item := range items {
			result = append(result, productToResponse(item))
		}
		responses.WriteSuccess(w, productListResponse{Products: result})
	}
}

func productToResponse(product models.Product) productResponse {
	return productResponse{
		ID:            product.ID,
		DisplayName:   product.DisplayName,
		PriceStandard: product.PriceStandard,
		PriceAI:       product.PriceAI,
		SortOrder:     product.SortOrder,
		UpdatedAt:     product.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
