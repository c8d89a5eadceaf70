package controllers

import (
	"net/http"
	"strings"

	"github.com/kaigocloud/carebill-backend/api/controllers/orgscope"
	"github.com/kaigocloud/carebill-backend/api/middleware"
	"github.com/kaigocloud/carebill-backend/api/responses"
	"github.com/kaigocloud/carebill-backend/api/validators"
	"github.com/kaigocloud/carebill-backend/internal/subscriptions"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
	pkgerrors "github.com/kaigocloud/carebill-backend/pkg/errors"
	"github.com/kaigocloud/carebill-backend/pkg/logger"
	"github.com/kaigocloud/carebill-backend/pkg/metrics"
)

type startTrialRequest struct {
	Plan      string `json:"plan"`
	TrialDays int    `json:"trial_days"`
}

type startPaidRequest struct {
	Plan        string `json:"plan"`
	AutoRenewal *bool  `json:"auto_renewal"`
}

type changePlanRequest struct {
	Plan string `json:"plan"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func SubscriptionGet(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		orgID, err := orgscope.ResolveOrganizationID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.Get(ctx, orgID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, sub)
	}
}

func SubscriptionStartTrial(svc subscriptions.Service, billingMetrics *metrics.BillingMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		orgID, err := orgscope.ResolveOrganizationID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload startTrialRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		plan, err := parsePlan(payload.Plan)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.StartTrial(ctx, orgID, subscriptions.StartTrialInput{
			Plan:      plan,
			TrialDays: payload.TrialDays,
			Actor:     middleware.UserIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		billingMetrics.IncTransition("start_trial", string(sub.Status))
		responses.WriteSuccessStatus(w, http.StatusCreated, sub)
	}
}

func SubscriptionStartPaid(svc subscriptions.Service, billingMetrics *metrics.BillingMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		orgID, err := orgscope.ResolveOrganizationID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload startPaidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		plan, err := parsePlan(payload.Plan)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.StartPaid(ctx, orgID, subscriptions.StartPaidInput{
			Plan:        plan,
			AutoRenewal: payload.AutoRenewal,
			Actor:       middleware.UserIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		billingMetrics.IncTransition("start_paid", string(sub.Status))
		responses.WriteSuccessStatus(w, http.StatusCreated, sub)
	}
}

func SubscriptionChangePlan(svc subscriptions.Service, billingMetrics *metrics.BillingMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		orgID, err := orgscope.ResolveOrganizationID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload changePlanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		plan, err := parsePlan(payload.Plan)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.ChangePlan(ctx, orgID, subscriptions.ChangePlanInput{
			Plan:  plan,
			Actor: middleware.UserIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		billingMetrics.IncTransition("change_plan", string(sub.Status))
		responses.WriteSuccess(w, sub)
	}
}

func SubscriptionCancel(svc subscriptions.Service, billingMetrics *metrics.BillingMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		orgID, err := orgscope.ResolveOrganizationID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload cancelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.Cancel(ctx, orgID, subscriptions.CancelInput{
			Reason: strings.TrimSpace(payload.Reason),
			Actor:  middleware.UserIDFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		billingMetrics.IncTransition("cancel", string(sub.Status))
		responses.WriteSuccess(w, sub)
	}
}

// SubscriptionSuspend is admin-only; the route guards the role, the controller
// only executes the transition.
func SubscriptionSuspend(svc subscriptions.Service, billingMetrics *metrics.BillingMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		orgID, err := orgscope.ResolveOrganizationID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.Suspend(ctx, orgID, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		billingMetrics.IncTransition("suspend", string(sub.Status))
		responses.WriteSuccess(w, sub)
	}
}

func SubscriptionResume(svc subscriptions.Service, billingMetrics *metrics.BillingMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		orgID, err := orgscope.ResolveOrganizationID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sub, err := svc.Resume(ctx, orgID, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		billingMetrics.IncTransition("resume", string(sub.Status))
		responses.WriteSuccess(w, sub)
	}
}

func parsePlan(raw string) (enums.PlanType, error) {
	plan, err := enums.ParsePlanType(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan")
	}
	return plan, nil
}
