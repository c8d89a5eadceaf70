package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
	"github.com/kaigocloud/carebill-backend/pkg/logger"
)

type stubSweepRepo struct {
	trials     []models.Subscription
	due        []models.Subscription
	listErr    error
	updateErr  error
	updated    []models.Subscription
	gotTrialTo time.Time
	gotDueTo   time.Time
}

func (s *stubSweepRepo) ListTrialsEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error) {
	s.gotTrialTo = cutoff
	return s.trials, s.listErr
}

func (s *stubSweepRepo) ListDueForRenewal(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error) {
	s.gotDueTo = cutoff
	return s.due, s.listErr
}

func (s *stubSweepRepo) Update(ctx context.Context, sub *models.Subscription) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, *sub)
	return nil
}

var jobNow = time.Date(2024, time.June, 10, 3, 0, 0, 0, time.UTC)

func expiredTrial() models.Subscription {
	ended := jobNow.Add(-24 * time.Hour)
	return models.Subscription{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Status:         enums.SubscriptionStatusTrial,
		TrialEndDate:   &ended,
		Plan:           enums.PlanTypeStandard,
	}
}

func TestTrialExpiryJob_CancelsExpiredTrials(t *testing.T) {
	repo := &stubSweepRepo{trials: []models.Subscription{expiredTrial(), expiredTrial()}}
	job, err := NewTrialExpiryJob(TrialExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Repo:   repo,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job.(*trialExpiryJob).now = func() time.Time { return jobNow }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}

	if len(repo.updated) != 2 {
		t.Fatalf("expected 2 cancellations, got %d", len(repo.updated))
	}
	for _, sub := range repo.updated {
		if sub.Status != enums.SubscriptionStatusCancelled {
			t.Fatalf("expected cancelled, got %s", sub.Status)
		}
		if sub.AutoRenewal {
			t.Fatalf("expected auto renewal off")
		}
		if sub.CancellationReason == nil || *sub.CancellationReason != "trial_expired" {
			t.Fatalf("expected trial_expired reason, got %v", sub.CancellationReason)
		}
		if sub.CancelledAt == nil || !sub.CancelledAt.Equal(jobNow) {
			t.Fatalf("expected cancelled at %s, got %v", jobNow, sub.CancelledAt)
		}
		if sub.UpdatedBy != "cron:trial-expiry" {
			t.Fatalf("expected job actor recorded, got %q", sub.UpdatedBy)
		}
	}
	if !repo.gotTrialTo.Equal(jobNow) {
		t.Fatalf("expected cutoff %s, got %s", jobNow, repo.gotTrialTo)
	}
}

func TestTrialExpiryJob_SkipsNonTrialRows(t *testing.T) {
	stale := expiredTrial()
	stale.Status = enums.SubscriptionStatusActive
	repo := &stubSweepRepo{trials: []models.Subscription{stale}}
	job, err := NewTrialExpiryJob(TrialExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Repo:   repo,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("expected no writes, got %d", len(repo.updated))
	}
}

func TestTrialExpiryJob_PropagatesErrors(t *testing.T) {
	repo := &stubSweepRepo{listErr: errors.New("db down")}
	job, err := NewTrialExpiryJob(TrialExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Repo:   repo,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewTrialExpiryJob_RequiresDeps(t *testing.T) {
	if _, err := NewTrialExpiryJob(TrialExpiryJobParams{Repo: &stubSweepRepo{}}); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewTrialExpiryJob(TrialExpiryJobParams{Logger: logger.New(logger.Options{ServiceName: "cron-test"})}); err == nil {
		t.Fatalf("expected error without repository")
	}
}
