package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rpalomera/shopmetrics-backend/api/controllers"
	"github.com/rpalomera/shopmetrics-backend/api/middleware"
	"github.com/rpalomera/shopmetrics-backend/internal/ingest"
	"github.com/rpalomera/shopmetrics-backend/internal/reports"
	"github.com/rpalomera/shopmetrics-backend/pkg/config"
	"github.com/rpalomera/shopmetrics-backend/pkg/logger"
)

// NewRouter wires the report API. cache and the ping dependencies may be nil.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	svc *reports.Service,
	summary *ingest.Summary,
	cache controllers.ReportCache,
	pingers map[string]controllers.Pinger,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	reportHandlers := controllers.NewReports(svc, logg, cache, cfg.Reports.CacheTTL)
	qualityHandlers := controllers.NewQuality(summary)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportHandlers.All())
			r.Get("/top-customers", reportHandlers.TopCustomers())
			r.Get("/categories", reportHandlers.Categories())
			r.Get("/monthly-trend", reportHandlers.MonthlyTrend())
			r.Get("/cohorts", reportHandlers.Cohorts())
			r.Get("/rating-impact", reportHandlers.RatingImpact())
		})
		r.Route("/quality", func(r chi.Router) {
			r.Get("/", qualityHandlers.Report())
			r.Get("/summary", qualityHandlers.Summary())
		})
	})

	return r
}
