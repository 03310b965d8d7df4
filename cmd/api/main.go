package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mateovidal/spinmart-backend/api/routes"
	"github.com/mateovidal/spinmart-backend/internal/cart"
	"github.com/mateovidal/spinmart-backend/internal/checkout"
	"github.com/mateovidal/spinmart-backend/internal/spin"
	"github.com/mateovidal/spinmart-backend/pkg/config"
	"github.com/mateovidal/spinmart-backend/pkg/db"
	"github.com/mateovidal/spinmart-backend/pkg/kvstore"
	"github.com/mateovidal/spinmart-backend/pkg/kvstore/gormstore"
	"github.com/mateovidal/spinmart-backend/pkg/kvstore/redisstore"
	"github.com/mateovidal/spinmart-backend/pkg/logger"
	"github.com/mateovidal/spinmart-backend/pkg/metrics"
	"github.com/mateovidal/spinmart-backend/pkg/migrate"
	"github.com/mateovidal/spinmart-backend/pkg/redis"
	"github.com/mateovidal/spinmart-backend/pkg/vault"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	// Promo state prefers redis when one is configured and falls back to
	// the kv_entries table on the primary database.
	var redisClient *redis.Client
	var stateStore kvstore.Store
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		stateStore, err = redisstore.New(redisClient)
	} else {
		stateStore, err = gormstore.New(dbClient.DB())
	}
	if err != nil {
		logg.Error(context.Background(), "failed to build state store", err)
		os.Exit(1)
	}

	sealed, err := vault.New(cfg.Vault, stateStore)
	if err != nil {
		logg.Error(context.Background(), "failed to build vault", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	promoMetrics := metrics.NewPromoMetrics(registry)

	spinService, err := spin.NewService(spin.ServiceParams{
		Vault:   sealed,
		Config:  cfg.Spin,
		Logger:  logg,
		Metrics: promoMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create spin service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(sealed, cfg.Cart)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		cartService,
		spinService,
		checkout.NewRepository(dbClient.DB()),
		checkout.NewRateLookup(cfg.Shipping),
		logg,
		promoMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
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
			dbClient,
			redisClient,
			spinService,
			cartService,
			checkoutService,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
