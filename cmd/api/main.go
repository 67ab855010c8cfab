// Package main provides the entrypoint for the ChargeSpot API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/chargespot/chargespot/internal/api"
	"github.com/chargespot/chargespot/internal/api/middleware"
	"github.com/chargespot/chargespot/internal/layer"
	"github.com/chargespot/chargespot/internal/provider/resilience"
	"github.com/chargespot/chargespot/internal/report"
	"github.com/chargespot/chargespot/internal/station"
	"github.com/chargespot/chargespot/internal/station/openchargemap"
	"github.com/chargespot/chargespot/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "chargespot-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting ChargeSpot API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Initialize the OpenChargeMap provider
	registry := resilience.NewRegistry()

	ocmTimeout := 30 * time.Second
	if raw := os.Getenv("OCM_TIMEOUT"); raw != "" {
		if parsed, parseErr := time.ParseDuration(raw); parseErr == nil {
			ocmTimeout = parsed
		} else {
			log.Warn().Str("value", raw).Msg("invalid OCM_TIMEOUT, using default")
		}
	}

	ocmAPIKey := os.Getenv("OCM_API_KEY")
	if ocmAPIKey == "" {
		log.Warn().Msg("OCM_API_KEY not set - OpenChargeMap may rate-limit requests")
	}

	provider := openchargemap.NewClient(openchargemap.ClientConfig{
		APIKey:   ocmAPIKey,
		BaseURL:  os.Getenv("OCM_BASE_URL"),
		Timeout:  ocmTimeout,
		Registry: registry,
		Logger:   log,
	})
	log.Info().Str("provider", provider.Name()).Msg("station provider initialized")

	// Initialize the station service
	stationService := station.NewService(station.ServiceConfig{
		Provider: provider,
		Logger:   log,
	})
	log.Info().Msg("station service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		Metrics:        metrics,
		Registry:       registry,
		StationService: stationService,
		LayerBuilder:   layer.NewBuilder(log),
		Renderer:       report.NewRenderer(),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // PDF export can take a while
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
