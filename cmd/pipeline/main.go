package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/rpalomera/shopmetrics-backend/internal/ingest"
	"github.com/rpalomera/shopmetrics-backend/internal/render"
	"github.com/rpalomera/shopmetrics-backend/internal/reports"
	"github.com/rpalomera/shopmetrics-backend/internal/synthetic"
	"github.com/rpalomera/shopmetrics-backend/internal/warehouse"
	"github.com/rpalomera/shopmetrics-backend/pkg/config"
	"github.com/rpalomera/shopmetrics-backend/pkg/db"
	"github.com/rpalomera/shopmetrics-backend/pkg/logger"
	"github.com/rpalomera/shopmetrics-backend/pkg/migrate"
)

// The batch entrypoint: generate (optionally), ingest, validate, aggregate,
// render, and persist (optionally), then exit.
func main() {
	logg := logger.New(logger.Options{ServiceName: "pipeline"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	generate := flag.Bool("generate", false, "generate a synthetic dataset before running")
	seed := flag.Int64("seed", 42, "generator seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pipeline",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := context.Background()

	if *generate {
		opts := synthetic.DefaultOptions()
		opts.Seed = *seed
		if err := synthetic.WriteCSVs(cfg.Dataset.Dir, synthetic.Generate(opts)); err != nil {
			logg.Error(ctx, "failed to generate dataset", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "dir", cfg.Dataset.Dir), "synthetic dataset written")
	}

	loader := ingest.NewLoader(cfg.Dataset.Dir, logg, nil)
	recordStore, summary, err := loader.Run(ctx)
	if err != nil {
		logg.Error(ctx, "pipeline halted", err)
		os.Exit(1)
	}
	if !summary.Report.Passed() {
		logg.Warn(logg.WithField(ctx, "anomalies", len(summary.Report.Anomalies)),
			"quality checks failed, results are not business-trustworthy")
	}

	svc := reports.NewService(recordStore, cfg.Reports.TopCustomers)
	results, err := svc.Run(ctx)
	if err != nil {
		logg.Error(ctx, "aggregation failed", err)
		os.Exit(1)
	}

	if err := render.WriteInsights(cfg.Dataset.InsightsPath, results, summary.Report); err != nil {
		logg.Error(ctx, "failed to write insights", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "path", cfg.Dataset.InsightsPath), "insights written")

	if cfg.FeatureFlags.PersistWarehouse {
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

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}

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

	logg.Info(logg.WithFields(ctx, map[string]any{
		"duration_ms": summary.Duration.Milliseconds(),
		"anomalies":   len(summary.Report.Anomalies),
	}), "pipeline complete")
}
