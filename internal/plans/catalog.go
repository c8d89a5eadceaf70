package plans

import (
	"fmt"

	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

// Definition carries the entitlements and pricing of one plan type. Prices are
// integer yen per month; DevicePrice is charged per registered device.
type Definition struct {
	Type           enums.PlanType
	MonthlyPrice   int64
	DevicePrice    int64
	MaxStaff       int
	MaxClients     int
	StorageLimitMB int64
	Features       map[enums.FeatureKey]bool
}

// FeatureKeys returns the enabled feature keys in a stable order, suitable for
// snapshotting onto a subscription record.
func (d Definition) FeatureKeys() []string {
	keys := make([]string, 0, len(d.Features))
	for _, candidate := range []enums.FeatureKey{
		enums.FeatureCarePlans,
		enums.FeatureDeviceSync,
		enums.FeatureCSVExport,
		enums.FeatureAIAssist,
		enums.FeatureVoiceTranscribe,
	} {
		if d.Features[candidate] {
			keys = append(keys, string(candidate))
		}
	}
	return keys
}

// Catalog is the immutable PlanType -> Definition table. It is configuration,
// built once at startup and injected into anything that prices a subscription.
type Catalog struct {
	definitions map[enums.PlanType]Definition
}

// Default returns the standard catalog.
func Default() Catalog {
	return newCatalog(
		Definition{
			Type:           enums.PlanTypeDemo,
			MonthlyPrice:   0,
			DevicePrice:    0,
			MaxStaff:       3,
			MaxClients:     5,
			StorageLimitMB: 1024,
			Features: map[enums.FeatureKey]bool{
				enums.FeatureCarePlans: true,
			},
		},
		Definition{
			Type:           enums.PlanTypeFree,
			MonthlyPrice:   0,
			DevicePrice:    0,
			MaxStaff:       5,
			MaxClients:     10,
			StorageLimitMB: 2048,
			Features: map[enums.FeatureKey]bool{
				enums.FeatureCarePlans: true,
				enums.FeatureCSVExport: true,
			},
		},
		Definition{
			Type:           enums.PlanTypeStandard,
			MonthlyPrice:   0,
			DevicePrice:    1000,
			MaxStaff:       50,
			MaxClients:     200,
			StorageLimitMB: 51200,
			Features: map[enums.FeatureKey]bool{
				enums.FeatureCarePlans:  true,
				enums.FeatureDeviceSync: true,
				enums.FeatureCSVExport:  true,
			},
		},
		Definition{
			Type:           enums.PlanTypeAI,
			MonthlyPrice:   0,
			DevicePrice:    1500,
			MaxStaff:       100,
			MaxClients:     500,
			StorageLimitMB: 102400,
			Features: map[enums.FeatureKey]bool{
				enums.FeatureCarePlans:       true,
				enums.FeatureDeviceSync:      true,
				enums.FeatureCSVExport:       true,
				enums.FeatureAIAssist:        true,
				enums.FeatureVoiceTranscribe: true,
			},
		},
	)
}

func newCatalog(definitions ...Definition) Catalog {
	byType := make(map[enums.PlanType]Definition, len(definitions))
	for _, def := range definitions {
		byType[def.Type] = def
	}
	return Catalog{definitions: byType}
}

// Definition looks up the plan definition. The plan enum is closed; an unknown
// plan is a programming error and panics rather than defaulting to a zero
// price, which would silently underbill.
func (c Catalog) Definition(plan enums.PlanType) Definition {
	def, ok := c.definitions[plan]
	if !ok {
		panic(fmt.Sprintf("plans: unknown plan type %q", plan))
	}
	return def
}

// Types returns the catalogued plan types ordered by entitlement rank.
func (c Catalog) Types() []enums.PlanType {
	ordered := []enums.PlanType{
		enums.PlanTypeDemo,
		enums.PlanTypeFree,
		enums.PlanTypeStandard,
		enums.PlanTypeAI,
	}
	types := make([]enums.PlanType, 0, len(ordered))
	for _, plan := range ordered {
		if _, ok := c.definitions[plan]; ok {
			types = append(types, plan)
		}
	}
	return types
}

// DeviceBilled reports whether the plan charges per device. Demo and free
// plans never bill devices.
func DeviceBilled(plan enums.PlanType) bool {
	return plan != enums.PlanTypeDemo && plan != enums.PlanTypeFree
}
