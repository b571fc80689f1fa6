package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/rpalomera/shopmetrics-backend/internal/synthetic"
	"github.com/rpalomera/shopmetrics-backend/pkg/config"
	"github.com/rpalomera/shopmetrics-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "generate"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	seed := flag.Int64("seed", 42, "generator seed")
	products := flag.Int("products", 200, "number of products")
	customers := flag.Int("customers", 500, "number of customers")
	orders := flag.Int("orders", 2000, "number of orders")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	ctx := context.Background()

	d := synthetic.Generate(synthetic.Options{
		Seed:      *seed,
		Products:  *products,
		Customers: *customers,
		Orders:    *orders,
	})
	if err := synthetic.WriteCSVs(cfg.Dataset.Dir, d); err != nil {
		logg.Error(ctx, "failed to write dataset", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"dir":       cfg.Dataset.Dir,
		"products":  len(d.Products),
		"customers": len(d.Customers),
		"orders":    len(d.Orders),
		"items":     len(d.OrderItems),
		"reviews":   len(d.Reviews),
	}), "synthetic dataset written")
}
