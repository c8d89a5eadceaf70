package entitlements

import (
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
)

var gateNow = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

func newTestGate() *Gate {
	g := NewGate()
	g.now = func() time.Time { return gateNow }
	return g
}

func subWithStatus(status enums.SubscriptionStatus) *models.Subscription {
	return &models.Subscription{
		Status:   status,
		Plan:     enums.PlanTypeStandard,
		Features: pq.StringArray{string(enums.FeatureCarePlans), string(enums.FeatureDeviceSync)},
	}
}

func TestIsTrialActive(t *testing.T) {
	gate := newTestGate()

	future := gateNow.Add(48 * time.Hour)
	past := gateNow.Add(-time.Hour)

	sub := subWithStatus(enums.SubscriptionStatusTrial)
	sub.TrialEndDate = &future
	if !gate.IsTrialActive(sub) {
		t.Fatalf("expected trial active before end date")
	}

	sub.TrialEndDate = &past
	if gate.IsTrialActive(sub) {
		t.Fatalf("expected trial inactive after end date even while status is trial")
	}

	sub.TrialEndDate = nil
	if gate.IsTrialActive(sub) {
		t.Fatalf("expected trial inactive without end date")
	}

	active := subWithStatus(enums.SubscriptionStatusActive)
	active.TrialEndDate = &future
	if gate.IsTrialActive(active) {
		t.Fatalf("expected non-trial status to not count as trial")
	}

	if gate.IsTrialActive(nil) {
		t.Fatalf("expected nil subscription inactive")
	}
}

func TestIsSubscriptionActive(t *testing.T) {
	gate := newTestGate()

	future := gateNow.Add(24 * time.Hour)
	trial := subWithStatus(enums.SubscriptionStatusTrial)
	trial.TrialEndDate = &future
	if !gate.IsSubscriptionActive(trial) {
		t.Fatalf("expected live trial to be active")
	}

	expired := subWithStatus(enums.SubscriptionStatusTrial)
	past := gateNow.Add(-24 * time.Hour)
	expired.TrialEndDate = &past
	if gate.IsSubscriptionActive(expired) {
		t.Fatalf("expected expired trial to be inactive")
	}

	if !gate.IsSubscriptionActive(subWithStatus(enums.SubscriptionStatusActive)) {
		t.Fatalf("expected active subscription to be active")
	}
	if gate.IsSubscriptionActive(subWithStatus(enums.SubscriptionStatusSuspended)) {
		t.Fatalf("expected suspended subscription to be inactive")
	}
	if gate.IsSubscriptionActive(subWithStatus(enums.SubscriptionStatusCancelled)) {
		t.Fatalf("expected cancelled subscription to be inactive")
	}
}

func TestTrialDaysRemaining(t *testing.T) {
	gate := newTestGate()

	sub := subWithStatus(enums.SubscriptionStatusTrial)

	exact := gateNow.Add(72 * time.Hour)
	sub.TrialEndDate = &exact
	if got := gate.TrialDaysRemaining(sub); got != 3 {
		t.Fatalf("expected 3 days, got %d", got)
	}

	partial := gateNow.Add(25 * time.Hour)
	sub.TrialEndDate = &partial
	if got := gate.TrialDaysRemaining(sub); got != 2 {
		t.Fatalf("expected partial day to round up to 2, got %d", got)
	}

	past := gateNow.Add(-time.Hour)
	sub.TrialEndDate = &past
	if got := gate.TrialDaysRemaining(sub); got != 0 {
		t.Fatalf("expected 0 after expiry, got %d", got)
	}

	sub.TrialEndDate = nil
	if got := gate.TrialDaysRemaining(sub); got != 0 {
		t.Fatalf("expected 0 without end date, got %d", got)
	}
}

func TestHasFeature(t *testing.T) {
	gate := newTestGate()

	active := subWithStatus(enums.SubscriptionStatusActive)
	if !gate.HasFeature(active, enums.FeatureDeviceSync) {
		t.Fatalf("expected snapshotted feature granted")
	}
	if gate.HasFeature(active, enums.FeatureAIAssist) {
		t.Fatalf("expected missing feature denied")
	}

	suspended := subWithStatus(enums.SubscriptionStatusSuspended)
	if gate.HasFeature(suspended, enums.FeatureDeviceSync) {
		t.Fatalf("expected inactive subscription to grant nothing")
	}
}

func TestCheckLimits_FollowsActivity(t *testing.T) {
	gate := newTestGate()

	limits := gate.CheckLimits(subWithStatus(enums.SubscriptionStatusActive))
	if !limits.CanAddStaff || !limits.CanAddClient || !limits.StorageAvailable {
		t.Fatalf("expected all flags on for active subscription, got %+v", limits)
	}

	limits = gate.CheckLimits(subWithStatus(enums.SubscriptionStatusCancelled))
	if limits.CanAddStaff || limits.CanAddClient || limits.StorageAvailable {
		t.Fatalf("expected all flags off for cancelled subscription, got %+v", limits)
	}
}
