package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"educalc/internal/calculator"
	"educalc/internal/config"
	"educalc/internal/observability"
)

// NewRouter assembles the HTTP surface: observability middleware first so
// every request carries a request ID and trace, then CORS and the auth and
// rate-limit gates, then the calculation routes. /health and /metrics stay
// outside tracing.
func NewRouter(cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(AuthMiddleware(cfg.Auth))
	r.Use(RateLimitMiddleware(cfg.RateLimit))

	r.Get("/health", calculator.HealthHandler(cfg.Environment))
	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r)

	return r
}
