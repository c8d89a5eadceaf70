package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaigocloud/carebill-backend/api/controllers/orgscope"
	"github.com/kaigocloud/carebill-backend/api/responses"
	"github.com/kaigocloud/carebill-backend/internal/entitlements"
	"github.com/kaigocloud/carebill-backend/pkg/db/models"
	pkgerrors "github.com/kaigocloud/carebill-backend/pkg/errors"
	"github.com/kaigocloud/carebill-backend/pkg/logger"
)

// SubscriptionSource loads the raw subscription row the gate evaluates.
type SubscriptionSource interface {
	FindByOrganization(ctx context.Context, organizationID uuid.UUID) (*models.Subscription, error)
}

type entitlementsResponse struct {
	Status             string              `json:"status"`
	Plan               string              `json:"plan"`
	Active             bool                `json:"active"`
	TrialActive        bool                `json:"trial_active"`
	TrialDaysRemaining int                 `json:"trial_days_remaining"`
	Features           []string            `json:"features"`
	Limits             entitlements.Limits `json:"limits"`
}

// EntitlementsGet answers the single question every other service asks: what
// may this organization do right now.
func EntitlementsGet(source SubscriptionSource, gate *entitlements.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if source == nil || gate == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlement service unavailable"))
			return
		}

		orgID, err := orgscope.ResolveOrganizationID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := source.FindByOrganization(ctx, orgID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "subscription not found"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription"))
			return
		}

		features := make([]string, len(sub.Features))
		copy(features, sub.Features)

		responses.WriteSuccess(w, entitlementsResponse{
			Status:             string(sub.Status),
			Plan:               string(sub.Plan),
			Active:             gate.IsSubscriptionActive(sub),
			TrialActive:        gate.IsTrialActive(sub),
			TrialDaysRemaining: gate.TrialDaysRemaining(sub),
			Features:           features,
			Limits:             gate.CheckLimits(sub),
		})
	}
}
