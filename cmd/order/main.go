package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"OrderDesk/internal/catalog"
	"OrderDesk/internal/clock"
	"OrderDesk/internal/gateway"
	"OrderDesk/internal/order"
	"OrderDesk/migrations"
	"OrderDesk/pkg/kit"
)

const service = "order"

func main() {
	log := kit.NewLogger(service, os.Getenv("LOG_LEVEL"))

	err := run(log)
	_ = log.Sync()
	if err != nil {
		log.Fatal("order service failed", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	port := getenv("PORT", "8080")
	dbURL := os.Getenv("DATABASE_URL")
	catalogURL := os.Getenv("CATALOG_URL")
	metricsToken := os.Getenv("METRICS_TOKEN")

	rate, err := strconv.Atoi(getenv("ORDER_RATE_LIMIT", "0"))
	if err != nil || rate < 0 {
		return fmt.Errorf("ORDER_RATE_LIMIT must be a non-negative integer, got %q", os.Getenv("ORDER_RATE_LIMIT"))
	}
	trusted, err := kit.ParseTrustedProxies(os.Getenv("TRUSTED_PROXIES"))
	if err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	var (
		orders   order.Store
		products catalog.Store
	)
	if dbURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		orders = order.NewStore()
		products = catalog.NewStore()
	} else {
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
		orders = order.NewPostgresStore(pool)
		products = ps
	}

	deps := order.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: metricsToken != "",
		MetricsToken:   metricsToken,
		RatePerMinute:  rate,
		TrustedProxies: trusted,
	}

	var lookup order.ProductLookup = products
	if catalogURL != "" {
		mount, err := gateway.CatalogRoutes(catalogURL, log)
		if err != nil {
			return fmt.Errorf("CATALOG_URL: %w", err)
		}
		client := order.NewCatalogClient(catalogURL)
		lookup = client
		deps.Mount = mount
		deps.Ready = append(deps.Ready, client)
		log.Info("using remote catalog", zap.String("catalog_url", catalogURL))
	} else {
		cs := &catalog.Server{Store: products, Log: log}
		deps.Mount = func(r chi.Router) { cs.Routes(r) }
		deps.Ready = append(deps.Ready, products)
	}

	svc := order.NewService(orders, lookup, clock.NewSystem(), log)
	svc.Metrics = order.NewMetrics(deps.Registry)

	h := order.NewHandler(&order.Server{Orders: svc, Log: log}, deps)

	return kit.RunHTTPServer(":"+port, h, log)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
