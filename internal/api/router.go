// Package api provides the HTTP API for SkyCast.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/api/handler"
	"github.com/skycast/skycast/internal/api/middleware"
	"github.com/skycast/skycast/internal/provider/resilience"
	"github.com/skycast/skycast/internal/session"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Session     *session.Session
	Registry    *resilience.Registry

	AdvisoryEnabled bool
	RefreshInterval time.Duration
	RefreshStats    handler.RefreshStats
	RequireTLS      bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "skycast-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:         cfg.Version,
		BuildTime:       cfg.BuildTime,
		Registry:        cfg.Registry,
		Session:         cfg.Session,
		AdvisoryEnabled: cfg.AdvisoryEnabled,
		RefreshInterval: cfg.RefreshInterval,
		RefreshStats:    cfg.RefreshStats,
	})

	// Rate limits per endpoint category
	searchRateLimit := middleware.RateLimitByIP(middleware.SearchRateLimit)     // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		if cfg.Session == nil {
			return
		}
		sessionHandler := handler.NewSessionHandler(cfg.Session, cfg.Logger)

		// Endpoints that reach the upstream providers
		r.Group(func(r chi.Router) {
			r.Use(searchRateLimit)
			r.Use(middleware.RequireJSON)
			r.Post("/search", sessionHandler.Search)
			r.Post("/refresh", sessionHandler.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Use(middleware.RequireJSON)
			r.Post("/search/open", sessionHandler.OpenSearch)
			r.Put("/selection", sessionHandler.SelectDay)
			r.Get("/view", sessionHandler.GetView)
			r.Get("/view/stream", sessionHandler.Stream)
		})
	})

	return r
}
