package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"OrderDesk/internal/catalog"
	"OrderDesk/migrations"
	"OrderDesk/pkg/kit"
)

const service = "catalog"

func main() {
	log := kit.NewLogger(service, os.Getenv("LOG_LEVEL"))

	err := run(log)
	_ = log.Sync()
	if err != nil {
		log.Fatal("catalog service failed", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	port := getenv("PORT", "8082")
	metricsToken := os.Getenv("METRICS_TOKEN")

	var store catalog.Store = catalog.NewStore()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		ctx := context.Background()
		pool, err := kit.OpenPostgres(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer pool.Close()

		if err := migrations.Apply(ctx, pool); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		ps := catalog.NewPostgresStore(pool)
		if err := ps.Seed(ctx, catalog.DefaultProducts()); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		store = ps
	}

	h := catalog.NewHandler(&catalog.Server{Store: store, Log: log}, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: metricsToken != "",
		MetricsToken:   metricsToken,
	})

	return kit.RunHTTPServer(":"+port, h, log)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
