package entitlements

import (
	"math"
	"time"

	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

// Limits is the go/no-go answer for capacity-gated actions. The gate does not
// compare live usage against the plan limits; each flag reflects only whether
// the subscription itself is active, and the calling feature owns the count
// comparison.
type Limits struct {
	CanAddStaff      bool `json:"can_add_staff"`
	CanAddClient     bool `json:"can_add_client"`
	StorageAvailable bool `json:"storage_available"`
}

// Gate answers feature-access questions against a subscription snapshot.
// Callers must go through the gate instead of inspecting status directly so
// that trial expiry stays centralized: a trial past its end date is inactive
// even before the expiry sweep flips its status.
type Gate struct {
	now func() time.Time
}

// NewGate builds a gate using the wall clock.
func NewGate() *Gate {
	return &Gate{now: time.Now}
}

// IsTrialActive reports whether the subscription is inside a live trial
// window. The trial end date is the sole authority.
func (g *Gate) IsTrialActive(sub *models.Subscription) bool {
	if sub == nil || sub.Status != enums.SubscriptionStatusTrial {
		return false
	}
	if sub.TrialEndDate == nil {
		return false
	}
	return sub.TrialEndDate.After(g.now())
}

// IsSubscriptionActive reports whether the subscription currently grants
// access. Suspended and cancelled subscriptions are always inactive.
func (g *Gate) IsSubscriptionActive(sub *models.Subscription) bool {
	if sub == nil {
		return false
	}
	if sub.Status == enums.SubscriptionStatusTrial {
		return g.IsTrialActive(sub)
	}
	return sub.Status == enums.SubscriptionStatusActive
}

// TrialDaysRemaining returns the whole days left in the trial, zero when the
// trial has ended or never existed. Partial days round up.
func (g *Gate) TrialDaysRemaining(sub *models.Subscription) int {
	if sub == nil || sub.TrialEndDate == nil {
		return 0
	}
	remaining := sub.TrialEndDate.Sub(g.now())
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// HasFeature reports whether an active subscription's snapshot includes the
// feature. Inactive subscriptions grant nothing regardless of the snapshot.
func (g *Gate) HasFeature(sub *models.Subscription, key enums.FeatureKey) bool {
	return g.IsSubscriptionActive(sub) && sub.HasFeature(key)
}

// CheckLimits evaluates the capacity flags for the subscription.
func (g *Gate) CheckLimits(sub *models.Subscription) Limits {
	active := g.IsSubscriptionActive(sub)
	return Limits{
		CanAddStaff:      active,
		CanAddClient:     active,
		StorageAvailable: active,
	}
}
