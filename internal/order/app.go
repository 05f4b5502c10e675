package order

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"OrderDesk/pkg/kit"
)

const readyTimeout = 1 * time.Second

// Pinger is anything readyz has to wait for.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// RatePerMinute caps POST /api/order per client IP; 0 disables it.
	RatePerMinute int

	// TrustedProxies may set X-Forwarded-For for rate limiting.
	TrustedProxies []netip.Prefix

	// Mount adds routes next to the order API: the in-process catalog or a
	// proxy to the remote one.
	Mount func(r chi.Router)

	// Ready lists the dependencies readyz pings besides the order store.
	Ready []Pinger
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.Registry != nil {
		metrics := kit.NewMetrics(deps.Registry)
		r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))
		if deps.MetricsEnabled {
			r.Handle("/metrics", kit.MetricsHandler(deps.Registry, deps.MetricsToken))
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	ready := append([]Pinger{s.Orders.Store}, deps.Ready...)
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for _, p := range ready {
			if err := p.Ping(ctx); err != nil {
				s.logger().Warn("readyz failed", zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	limiter := kit.NewIPRateLimiter(deps.RatePerMinute, time.Minute, deps.TrustedProxies...)
	r.With(limiter.Middleware).Post("/api/order", s.CreateHandler())
	r.Get("/api/order/{id}", s.GetHandler())

	if deps.Mount != nil {
		deps.Mount(r)
	}

	return r
}
