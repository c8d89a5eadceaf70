package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics records subscription lifecycle and pricing activity.
type BillingMetrics struct {
	transitions *prometheus.CounterVec
	renewals    *prometheus.CounterVec
	feeTotals   *prometheus.HistogramVec
}

// NewBillingMetrics registers the billing metrics on the provided registerer.
func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	if reg == nil {
		return &BillingMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_transitions",
		Help: "Subscription lifecycle transitions by name and resulting status.",
	}, []string{"transition", "status"})
	renewals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_renewals",
		Help: "Automatic renewals processed, by plan.",
	}, []string{"plan"})
	feeTotals := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "monthly_fee_total_yen",
		Help:    "Computed monthly fee totals in yen.",
		Buckets: []float64{0, 1000, 3000, 5000, 10000, 30000, 50000, 100000},
	}, []string{"plan"})
	reg.MustRegister(transitions, renewals, feeTotals)
	return &BillingMetrics{
		transitions: transitions,
		renewals:    renewals,
		feeTotals:   feeTotals,
	}
}

// IncTransition increments the transition counter.
func (b *BillingMetrics) IncTransition(transition, status string) {
	if b == nil || b.transitions == nil {
		return
	}
	b.transitions.WithLabelValues(normalizeLabel(transition), normalizeLabel(status)).Inc()
}

// IncRenewal increments the renewal counter for the plan.
func (b *BillingMetrics) IncRenewal(plan string) {
	if b == nil || b.renewals == nil {
		return
	}
	b.renewals.WithLabelValues(normalizeLabel(plan)).Inc()
}

// ObserveFeeTotal records a computed monthly total for the plan.
func (b *BillingMetrics) ObserveFeeTotal(plan string, totalYen int64) {
	if b == nil || b.feeTotals == nil {
		return
	}
	b.feeTotals.WithLabelValues(normalizeLabel(plan)).Observe(float64(totalYen))
}
