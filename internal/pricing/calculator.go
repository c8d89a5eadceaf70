package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kaigocloud/carebill-backend/internal/plans"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
	pkgerrors "github.com/kaigocloud/carebill-backend/pkg/errors"
)

// DefaultTaxRatePercent is the Japanese consumption tax applied to every bill.
const DefaultTaxRatePercent = 10

// ProductInput is one add-on considered by a fee calculation. PriceAI is the
// monthly surcharge of the AI variant; nil when the product has none.
type ProductInput struct {
	ID            string
	Name          string
	PriceStandard int64
	PriceAI       *int64
}

// ProductDetail is the per-product line of a calculation breakdown.
type ProductDetail struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	BasePrice   int64  `json:"base_price"`
	AIEnabled   bool   `json:"ai_enabled"`
	AIPrice     int64  `json:"ai_price"`
	Subtotal    int64  `json:"subtotal"`
}

// Calculation is the full output of one monthly-fee run. It is a value object
// rebuilt from scratch on every invocation and never mutated afterwards.
type Calculation struct {
	Plan               enums.PlanType  `json:"plan"`
	DeviceCount        int             `json:"device_count"`
	DeviceFee          int64           `json:"device_fee"`
	ProductDetails     []ProductDetail `json:"product_details"`
	ProductFeesTotal   int64           `json:"product_fees_total"`
	AIFeesTotal        int64           `json:"ai_fees_total"`
	Subtotal           int64           `json:"subtotal"`
	Discount           int64           `json:"discount"`
	TaxRatePercent     int             `json:"tax_rate_percent"`
	Tax                int64           `json:"tax"`
	Total              int64           `json:"total"`
	RepresentativeFree bool            `json:"representative_free"`
	FreeStaffCount     int             `json:"free_staff_count"`
}

// MonthlyFeeParams feeds one calculation run. RepresentativeCount defaults to
// one representative when nil; a caller billing an organization with no
// representative passes an explicit zero. DeviceCount is supplied already net
// of any exclusions.
type MonthlyFeeParams struct {
	Plan                enums.PlanType
	DeviceCount         int
	Products            []ProductInput
	AIEnabledProductIDs []string
	RepresentativeCount *int
	DiscountRatePercent int
	DiscountAmount      int64
}

// Calculator prices subscriptions off an injected plan catalog. All methods
// are pure and safe for concurrent use.
type Calculator struct {
	catalog plans.Catalog
	taxRate decimal.Decimal
}

// NewCalculator builds a calculator. A non-positive taxRatePercent falls back
// to the statutory default.
func NewCalculator(catalog plans.Catalog, taxRatePercent int) *Calculator {
	if taxRatePercent <= 0 {
		taxRatePercent = DefaultTaxRatePercent
	}
	return &Calculator{
		catalog: catalog,
		taxRate: decimal.New(int64(taxRatePercent), -2),
	}
}

// MonthlyFee computes the bill for one month. The step order is fixed for
// audit reproducibility: device fee, product fees in input order, subtotal,
// discount (floored, capped at subtotal), tax (floored on the remainder),
// total. Rounding happens only at the discount and tax steps, never per line.
func (c *Calculator) MonthlyFee(params MonthlyFeeParams) (*Calculation, error) {
	if !params.Plan.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown plan type")
	}
	if params.DeviceCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device count must not be negative")
	}
	representativeCount := 1
	if params.RepresentativeCount != nil {
		representativeCount = *params.RepresentativeCount
	}
	if representativeCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "representative count must not be negative")
	}
	if params.DiscountRatePercent < 0 || params.DiscountRatePercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount rate must be between 0 and 100")
	}
	if params.DiscountAmount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount amount must not be negative")
	}

	representativeFree := representativeCount >= 1
	freeStaffCount := 0
	if representativeFree {
		freeStaffCount = 1
	}

	var deviceFee int64
	if plans.DeviceBilled(params.Plan) {
		def := c.catalog.Definition(params.Plan)
		deviceFee = int64(params.DeviceCount) * def.DevicePrice
	}

	aiEnabled := make(map[string]bool, len(params.AIEnabledProductIDs))
	for _, id := range params.AIEnabledProductIDs {
		aiEnabled[id] = true
	}

	details := make([]ProductDetail, 0, len(params.Products))
	var productFeesTotal, aiFeesTotal int64
	for _, product := range params.Products {
		var aiPrice int64
		on := aiEnabled[product.ID] && product.PriceAI != nil
		if on {
			aiPrice = *product.PriceAI
		}
		lineSubtotal := product.PriceStandard + aiPrice
		details = append(details, ProductDetail{
			ProductID:   product.ID,
			ProductName: product.Name,
			BasePrice:   product.PriceStandard,
			AIEnabled:   on,
			AIPrice:     aiPrice,
			Subtotal:    lineSubtotal,
		})
		productFeesTotal += lineSubtotal
		aiFeesTotal += aiPrice
	}

	subtotal := deviceFee + productFeesTotal

	discount := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(int64(params.DiscountRatePercent))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart() + params.DiscountAmount
	if discount > subtotal {
		discount = subtotal
	}

	afterDiscount := subtotal - discount
	tax := decimal.NewFromInt(afterDiscount).Mul(c.taxRate).Floor().IntPart()
	total := afterDiscount + tax

	if discount < 0 || tax < 0 || total < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fee calculation produced a negative amount")
	}

	return &Calculation{
		Plan:               params.Plan,
		DeviceCount:        params.DeviceCount,
		DeviceFee:          deviceFee,
		ProductDetails:     details,
		ProductFeesTotal:   productFeesTotal,
		AIFeesTotal:        aiFeesTotal,
		Subtotal:           subtotal,
		Discount:           discount,
		TaxRatePercent:     int(c.taxRate.Mul(decimal.NewFromInt(100)).IntPart()),
		Tax:                tax,
		Total:              total,
		RepresentativeFree: representativeFree,
		FreeStaffCount:     freeStaffCount,
	}, nil
}

// PriceDifference returns how much switching from current to next changes the
// monthly bill; positive means the bill goes up.
func PriceDifference(current, next *Calculation) int64 {
	if current == nil || next == nil {
		return 0
	}
	return next.Total - current.Total
}
