package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rpalomera/shopmetrics-backend/api/controllers"
	"github.com/rpalomera/shopmetrics-backend/api/routes"
	"github.com/rpalomera/shopmetrics-backend/internal/ingest"
	"github.com/rpalomera/shopmetrics-backend/internal/reports"
	"github.com/rpalomera/shopmetrics-backend/internal/warehouse"
	"github.com/rpalomera/shopmetrics-backend/pkg/config"
	"github.com/rpalomera/shopmetrics-backend/pkg/db"
	"github.com/rpalomera/shopmetrics-backend/pkg/logger"
	"github.com/rpalomera/shopmetrics-backend/pkg/metrics"
	"github.com/rpalomera/shopmetrics-backend/pkg/migrate"
	"github.com/rpalomera/shopmetrics-backend/pkg/redis"
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
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	loader := ingest.NewLoader(cfg.Dataset.Dir, logg, pipelineMetrics)
	recordStore, summary, err := loader.Run(ctx)
	if err != nil {
		logg.Error(ctx, "failed to ingest dataset", err)
		os.Exit(1)
	}

	pingers := map[string]controllers.Pinger{}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()
	pingers["db"] = dbClient

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.PersistWarehouse {
		repo := warehouse.NewRepository(dbClient)
		if err := repo.Reset(ctx); err != nil {
			logg.Error(ctx, "failed to reset warehouse", err)
			os.Exit(1)
		}
		if err := repo.PersistSnapshot(ctx, recordStore); err != nil {
			logg.Error(ctx, "failed to persist warehouse snapshot", err)
			os.Exit(1)
		}
		logg.Info(ctx, "warehouse snapshot persisted")
	}

	var cache controllers.ReportCache
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(ctx, "error closing redis", err)
			}
		}()
		cache = redisClient
		pingers["redis"] = redisClient
	}

	svc := reports.NewService(recordStore, cfg.Reports.TopCustomers)
	handler := routes.NewRouter(cfg, logg, svc, summary, cache, pingers, registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info(logg.WithField(ctx, "addr", server.Addr), "api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "server stopped", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
	logg.Info(ctx, "api stopped")
}
