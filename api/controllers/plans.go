package controllers

import (
	"net/http"

	"github.com/kaigocloud/carebill-backend/api/responses"
	"github.com/kaigocloud/carebill-backend/internal/plans"
)

type planResponse struct {
	Type           string   `json:"type"`
	MonthlyPrice   int64    `json:"monthly_price"`
	DevicePrice    int64    `json:"device_price"`
	DeviceBilled   bool     `json:"device_billed"`
	MaxStaff       int      `json:"max_staff"`
	MaxClients     int      `json:"max_clients"`
	StorageLimitMB int64    `json:"storage_limit_mb"`
	Features       []string `json:"features"`
}

type planListResponse struct {
	Plans []planResponse `json:"plans"`
}

// PlansList exposes the plan catalog. The catalog is static configuration, so
// there is no service behind this handler.
func PlansList(catalog plans.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types := catalog.Types()
		result := make([]planResponse, 0, len(types))
		for _, planType := range types {
			def := catalog.Definition(planType)
			result = append(result, planResponse{
				Type:           string(def.Type),
				MonthlyPrice:   def.MonthlyPrice,
				DevicePrice:    def.DevicePrice,
				DeviceBilled:   plans.DeviceBilled(def.Type),
				MaxStaff:       def.MaxStaff,
				MaxClients:     def.MaxClients,
				StorageLimitMB: def.StorageLimitMB,
				Features:       def.FeatureKeys(),
			})
		}
		responses.WriteSuccess(w, planListResponse{Plans: result})
	}
}
