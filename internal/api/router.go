// Package api provides the HTTP API for ChargeSpot.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/api/handler"
	"github.com/chargespot/chargespot/internal/api/middleware"
	"github.com/chargespot/chargespot/internal/layer"
	"github.com/chargespot/chargespot/internal/provider/resilience"
	"github.com/chargespot/chargespot/internal/report"
	"github.com/chargespot/chargespot/internal/station"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	Metrics        *middleware.Metrics
	Registry       *resilience.Registry
	StationService *station.Service
	LayerBuilder   *layer.Builder
	Renderer       *report.Renderer
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing()) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.ContentTypeJSON)      // JSON content type default

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.StationService)
	stationHandler := handler.NewStationHandler(cfg.StationService, cfg.LayerBuilder, cfg.Renderer)

	// Rate limit middleware per endpoint category
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Search and export trigger upstream calls or document renders,
		// so they get the stricter limit.
		r.With(expensiveRateLimit).Post("/stations:search", stationHandler.Search)
		r.With(expensiveRateLimit).Post("/stations:export", stationHandler.Export)

		// Result-set reads
		r.Route("/stations", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", stationHandler.List)
			r.Delete("/", stationHandler.Clear)
			r.Get("/filters", stationHandler.FilterValues)
			r.Get("/layer", stationHandler.Layer)
			r.Get("/{stationId}", stationHandler.Get)
		})
	})

	return r
}
