package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
	// RateLimitPerMinute caps avatar requests per client IP. Zero disables the limit.
	RateLimitPerMinute int
	// RequestTimeout bounds avatar requests, including the wait for the engine. Zero disables it.
	RequestTimeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins:     []string{"*"},
		RateLimitPerMinute: 60,
		RequestTimeout:     3 * time.Minute,
	}
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(h *Handlers, logger *slog.Logger, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Engine-backed routes share one engine, so they are rate limited.
	r.Route("/v1/avatars", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(RateLimit(cfg.RateLimitPerMinute, time.Minute))
		}
		if cfg.RequestTimeout > 0 {
			r.Use(TimeoutMiddleware(cfg.RequestTimeout))
		}
		r.Post("/crop", h.Crop)
		r.Post("/decorate", h.Decorate)
	})

	return r
}
