package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kaigocloud/carebill-backend/api/controllers"
	"github.com/kaigocloud/carebill-backend/api/middleware"
	"github.com/kaigocloud/carebill-backend/internal/entitlements"
	"github.com/kaigocloud/carebill-backend/internal/plans"
	"github.com/kaigocloud/carebill-backend/internal/pricing"
	productsvc "github.com/kaigocloud/carebill-backend/internal/products"
	subscriptionsvc "github.com/kaigocloud/carebill-backend/internal/subscriptions"
	"github.com/kaigocloud/carebill-backend/pkg/config"
	"github.com/kaigocloud/carebill-backend/pkg/enums"
	"github.com/kaigocloud/carebill-backend/pkg/logger"
	"github.com/kaigocloud/carebill-backend/pkg/metrics"
	"github.com/kaigocloud/carebill-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	pingers map[string]controllers.Pinger,
	catalog plans.Catalog,
	calculator *pricing.Calculator,
	productService productsvc.Service,
	subscriptionService subscriptionsvc.Service,
	subscriptionSource controllers.SubscriptionSource,
	gate *entitlements.Gate,
	billingMetrics *metrics.BillingMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/plans", controllers.PlansList(catalog))
		r.Get("/products", controllers.ProductsList(productService, logg))
		r.Post("/pricing/preview", controllers.PricingPreview(calculator, productService, billingMetrics, logg))

		r.Route("/organizations/{organizationId}", func(r chi.Router) {
			r.Get("/subscription", controllers.SubscriptionGet(subscriptionService, logg))
			r.Post("/subscription/trial", controllers.SubscriptionStartTrial(subscriptionService, billingMetrics, logg))
			r.Post("/subscription/paid", controllers.SubscriptionStartPaid(subscriptionService, billingMetrics, logg))
			r.Post("/subscription/plan", controllers.SubscriptionChangePlan(subscriptionService, billingMetrics, logg))
			r.Post("/subscription/cancel", controllers.SubscriptionCancel(subscriptionService, billingMetrics, logg))

			admin := r.With(middleware.RequireRole(string(enums.ActorRoleAdmin), logg))
			admin.Post("/subscription/suspend", controllers.SubscriptionSuspend(subscriptionService, billingMetrics, logg))
			admin.Post("/subscription/resume", controllers.SubscriptionResume(subscriptionService, billingMetrics, logg))

			r.Get("/entitlements", controllers.EntitlementsGet(subscriptionSource, gate, logg))
		})
	})

	return r
}
