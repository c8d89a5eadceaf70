package enums

import "fmt"

// PlanType identifies the base subscription plan of an organization.
type PlanType string

const (
	PlanTypeDemo     PlanType = "demo"
	PlanTypeFree     PlanType = "free"
	PlanTypeStandard PlanType = "standard"
	PlanTypeAI       PlanType = "ai"
)

var validPlanTypes = []PlanType{
	PlanTypeDemo,
	PlanTypeFree,
	PlanTypeStandard,
	PlanTypeAI,
}

// planRank orders plans by entitlement, lowest first. Used only to classify a
// plan change as upgrade or downgrade, never for price lookup.
var planRank = map[PlanType]int{
	PlanTypeDemo:     0,
	PlanTypeFree:     1,
	PlanTypeStandard: 2,
	PlanTypeAI:       3,
}

// String implements fmt.Stringer.
func (p PlanType) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PlanType) IsValid() bool {
	for _, candidate := range validPlanTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// Rank returns the entitlement rank of the plan (demo < free < standard < ai).
func (p PlanType) Rank() int {
	return planRank[p]
}

// IsUpgradeFrom reports whether switching from other to p raises the
// entitlement rank.
func (p PlanType) IsUpgradeFrom(other PlanType) bool {
	return p.Rank() > other.Rank()
}

// ParsePlanType converts raw input into a PlanType.
func ParsePlanType(value string) (PlanType, error) {
	for _, candidate := range validPlanTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan type %q", value)
}
