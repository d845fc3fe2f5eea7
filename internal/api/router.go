package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultRateLimit is the per-IP request budget per minute.
const DefaultRateLimit = 60

// RouterConfig carries the router's HTTP-level settings.
type RouterConfig struct {
	Token       string
	CORSOrigins []string
	// RateLimit is requests per minute per IP; 0 means DefaultRateLimit.
	RateLimit int
}

// NewRouter builds and returns the Chi router with all routes configured.
// Only plan creation requires bearer auth. redis may be nil when no Redis
// is configured.
func NewRouter(handlers *Handlers, cfg RouterConfig, db, redis Pinger, log *slog.Logger) *chi.Mux {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(CORS(cfg.CORSOrigins))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redis, log))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))

		r.Get("/api/v1/plans/{city}/{days}/{style}", handlers.ComposePlan)
		r.Get("/api/v1/plans/{id}", handlers.GetPlan)
		r.Get("/api/v1/plans", handlers.ListPlans)
		r.Get("/api/v1/attractions/{city}", handlers.Attractions)
		r.Get("/api/v1/recommendations", handlers.Recommend)

		r.With(BearerAuth(cfg.Token)).Post("/api/v1/plans", handlers.CreatePlan)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
