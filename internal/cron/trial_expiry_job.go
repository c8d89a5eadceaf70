package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
	"github.com/kaigocloud/carebill-backend/pkg/logger"
)

const (
	trialExpiryBatchSize = 500
	trialExpiredReason   = "trial_expired"
	trialExpiryJobActor  = "cron:trial-expiry"
	renewalBatchSize     = 500
	renewalJobActor      = "cron:renewal"
)

type subscriptionSweepRepository interface {
	ListTrialsEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error)
	ListDueForRenewal(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
}

// TrialExpiryJobParams configure the trial expiry sweep.
type TrialExpiryJobParams struct {
	Logger *logger.Logger
	Repo   subscriptionSweepRepository
}

// NewTrialExpiryJob constructs the job that cancels subscriptions whose trial
// window has closed. The entitlement gate already denies access to expired
// trials before this sweep runs; the job only reconciles the stored status.
func NewTrialExpiryJob(params TrialExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	return &trialExpiryJob{
		logg: params.Logger,
		repo: params.Repo,
		now:  time.Now,
	}, nil
}

type trialExpiryJob struct {
	logg *logger.Logger
	repo subscriptionSweepRepository
	now  func() time.Time
}

func (j *trialExpiryJob) Name() string { return "trial-expiry" }

func (j *trialExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	rows, err := j.repo.ListTrialsEndedBefore(ctx, now, trialExpiryBatchSize)
	if err != nil {
		return fmt.Errorf("query expired trials: %w", err)
	}

	count := 0
	for i := range rows {
		sub := rows[i]
		if sub.Status != enums.SubscriptionStatusTrial {
			continue
		}
		reason := trialExpiredReason
		cancelledAt := now
		sub.Status = enums.SubscriptionStatusCancelled
		sub.AutoRenewal = false
		sub.CancelledAt = &cancelledAt
		sub.CancellationReason = &reason
		sub.UpdatedBy = trialExpiryJobActor
		if err := j.repo.Update(ctx, &sub); err != nil {
			return fmt.Errorf("cancel expired trial %s: %w", sub.ID, err)
		}
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "trial expiry sweep complete")
	return nil
}
