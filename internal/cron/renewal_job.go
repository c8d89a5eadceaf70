package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kaigocloud/carebill-backend/internal/plans"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
	"github.com/kaigocloud/carebill-backend/pkg/logger"
	"github.com/kaigocloud/carebill-backend/pkg/metrics"
)

// RenewalJobParams configure the renewal sweep.
type RenewalJobParams struct {
	Logger    *logger.Logger
	Repo      subscriptionSweepRepository
	Catalog   plans.Catalog
	CycleDays int
	Metrics   *metrics.BillingMetrics
}

// NewRenewalJob constructs the job that advances the billing date of active
// auto-renewing subscriptions whose cycle has come due.
func NewRenewalJob(params RenewalJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if len(params.Catalog.Types()) == 0 {
		return nil, fmt.Errorf("plan catalog required")
	}
	if params.CycleDays <= 0 {
		return nil, fmt.Errorf("cycle days must be positive")
	}
	return &renewalJob{
		logg:      params.Logger,
		repo:      params.Repo,
		catalog:   params.Catalog,
		cycleDays: params.CycleDays,
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

type renewalJob struct {
	logg      *logger.Logger
	repo      subscriptionSweepRepository
	catalog   plans.Catalog
	cycleDays int
	metrics   *metrics.BillingMetrics
	now       func() time.Time
}

func (j *renewalJob) Name() string { return "renewal" }

func (j *renewalJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	rows, err := j.repo.ListDueForRenewal(ctx, now, renewalBatchSize)
	if err != nil {
		return fmt.Errorf("query due subscriptions: %w", err)
	}

	count := 0
	for i := range rows {
		sub := rows[i]
		if sub.Status != enums.SubscriptionStatusActive || !sub.AutoRenewal {
			continue
		}
		// Advance from the stored date, not from now, so a delayed sweep
		// does not drift the cadence.
		base := now
		if sub.NextBillingDate != nil {
			base = *sub.NextBillingDate
		}
		next := base.AddDate(0, 0, j.cycleDays)
		sub.NextBillingDate = &next
		// Renewal is the moment catalog changes take effect. The plan-derived
		// fields are only ever overwritten together, never one at a time.
		if sub.Plan.IsValid() {
			def := j.catalog.Definition(sub.Plan)
			sub.MonthlyPrice = def.MonthlyPrice
			sub.MaxStaff = def.MaxStaff
			sub.MaxClients = def.MaxClients
			sub.StorageLimitMB = def.StorageLimitMB
			sub.Features = pq.StringArray(def.FeatureKeys())
		}
		sub.UpdatedBy = renewalJobActor
		if err := j.repo.Update(ctx, &sub); err != nil {
			return fmt.Errorf("renew subscription %s: %w", sub.ID, err)
		}
		j.metrics.IncRenewal(string(sub.Plan))
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "renewal sweep complete")
	return nil
}
