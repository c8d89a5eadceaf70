package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/kaigocloud/carebill-backend/api/responses"
	"github.com/kaigocloud/carebill-backend/api/validators"
	"github.com/kaigocloud/carebill-backend/internal/pricing"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
	pkgerrors "github.com/kaigocloud/carebill-backend/pkg/errors"
	"github.com/kaigocloud/carebill-backend/pkg/logger"
	"github.com/kaigocloud/carebill-backend/pkg/metrics"
)

// ProductResolver turns product ids into priced inputs for the calculator.
type ProductResolver interface {
	ResolveForPricing(ctx context.Context, ids []string) ([]pricing.ProductInput, error)
}

type pricingPreviewRequest struct {
	Plan                string   `json:"plan"`
	DeviceCount         int      `json:"device_count"`
	ProductIDs          []string `json:"product_ids"`
	AIEnabledProductIDs []string `json:"ai_enabled_product_ids"`
	RepresentativeCount *int     `json:"representative_count"`
	DiscountRatePercent int      `json:"discount_rate_percent"`
	DiscountAmount      int64    `json:"discount_amount"`
}

// PricingPreview prices a hypothetical configuration without touching any
// subscription state.
func PricingPreview(calc *pricing.Calculator, products ProductResolver, billingMetrics *metrics.BillingMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if calc == nil || products == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload pricingPreviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		plan, err := enums.ParsePlanType(strings.TrimSpace(payload.Plan))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan"))
			return
		}

		inputs, err := products.ResolveForPricing(ctx, payload.ProductIDs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		calculation, err := calc.MonthlyFee(pricing.MonthlyFeeParams{
			Plan:                plan,
			DeviceCount:         payload.DeviceCount,
			Products:            inputs,
			AIEnabledProductIDs: payload.AIEnabledProductIDs,
			RepresentativeCount: payload.RepresentativeCount,
			DiscountRatePercent: payload.DiscountRatePercent,
			DiscountAmount:      payload.DiscountAmount,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		billingMetrics.ObserveFeeTotal(string(calculation.Plan), calculation.Total)
		responses.WriteSuccess(w, calculation)
	}
}
