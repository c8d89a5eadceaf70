package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kaigocloud/carebill-backend/api/controllers"
	"github.com/kaigocloud/carebill-backend/api/routes"
	"github.com/kaigocloud/carebill-backend/internal/entitlements"
	"github.com/kaigocloud/carebill-backend/internal/plans"
	"github.com/kaigocloud/carebill-backend/internal/pricing"
	"github.com/kaigocloud/carebill-backend/internal/products"
	"github.com/kaigocloud/carebill-backend/internal/subscriptions"
	"github.com/kaigocloud/carebill-backend/pkg/config"
	"github.com/kaigocloud/carebill-backend/pkg/db"
	"github.com/kaigocloud/carebill-backend/pkg/logger"
	"github.com/kaigocloud/carebill-backend/pkg/metrics"
	"github.com/kaigocloud/carebill-backend/pkg/migrate"
	"github.com/kaigocloud/carebill-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	catalog := plans.Default()
	calculator := pricing.NewCalculator(catalog, cfg.Billing.TaxRatePercent)
	billingMetrics := metrics.NewBillingMetrics(prometheus.DefaultRegisterer)

	productService, err := products.NewService(products.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	subscriptionRepo := subscriptions.NewRepository(dbClient.DB())
	subscriptionService, err := subscriptions.NewService(subscriptionRepo, catalog, cfg.Billing)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			catalog,
			calculator,
			productService,
			subscriptionService,
			subscriptionRepo,
			entitlements.NewGate(),
			billingMetrics,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
