// Package main provides the entrypoint for the SkyCast API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // location time zones on minimal images

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/advisory"
	"github.com/skycast/skycast/internal/advisory/gemini"
	"github.com/skycast/skycast/internal/api"
	"github.com/skycast/skycast/internal/api/middleware"
	"github.com/skycast/skycast/internal/config"
	"github.com/skycast/skycast/internal/provider/resilience"
	"github.com/skycast/skycast/internal/session"
	"github.com/skycast/skycast/internal/telemetry"
	"github.com/skycast/skycast/internal/weather"
	"github.com/skycast/skycast/internal/weather/openmeteo"
	"github.com/skycast/skycast/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "skycast-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	log = log.Level(level)

	log.Info().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Msg("starting SkyCast API")

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
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

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	providerMetrics, err := telemetry.NewProviderMetrics(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}
	advisoryMetrics, err := telemetry.NewAdvisoryMetrics(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize advisory metrics")
	}

	// Outbound clients
	registry := resilience.NewRegistry()
	newClient := func(c resilience.ClientConfig, timeout time.Duration) *resilience.Client {
		c.Timeout = timeout
		c.RequestsPerSecond = cfg.ProviderRPS
		c.Registry = registry
		c.Logger = log
		return resilience.NewClient(c)
	}

	meteo := openmeteo.NewClient(openmeteo.ClientConfig{
		GeocodingURL:    cfg.GeocodingURL,
		ForecastURL:     cfg.ForecastURL,
		ForecastDays:    cfg.ForecastDays,
		GeocodingClient: newClient(openmeteo.DefaultClientConfig(openmeteo.GeocodingProviderName), cfg.ProviderTimeout),
		ForecastClient:  newClient(openmeteo.DefaultClientConfig(openmeteo.ForecastProviderName), cfg.ProviderTimeout),
		Logger:          log,
	})

	weatherService := weather.NewService(weather.ServiceConfig{
		Geocoder: meteo,
		Forecast: meteo,
		Logger:   log,
		Language: cfg.GeocodingLanguage,
		Recorder: providerMetrics,
	})

	sessionCfg := session.Config{
		Searcher: weatherService,
		Logger:   log,
	}
	if cfg.AdvisoryEnabled() {
		generator := gemini.NewClient(gemini.ClientConfig{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: newClient(gemini.DefaultClientConfig(), cfg.AdvisoryTimeout),
			Logger:     log,
		})
		sessionCfg.Advisor = advisory.New(advisory.Config{
			Generator: generator,
			Timeout:   cfg.AdvisoryTimeout,
			Logger:    log,
			Recorder:  advisoryMetrics,
		})
		log.Info().Str("model", cfg.GeminiModel).Msg("advisory enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set - advisories disabled")
	}

	sess := session.New(sessionCfg)

	// Periodic refresh
	refreshCfg := worker.DefaultRefreshConfig()
	refreshCfg.Interval = cfg.RefreshInterval
	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:    refreshCfg,
		Logger:    log,
		Refresher: sess,
	})
	scheduler := worker.NewScheduler(refreshJob, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule refresh")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		Session:         sess,
		Registry:        registry,
		AdvisoryEnabled: cfg.AdvisoryEnabled(),
		RefreshInterval: cfg.RefreshInterval,
		RefreshStats:    refreshJob,
		RequireTLS:      cfg.RequireTLS,
	})

	// WriteTimeout is left unset so view streams stay open.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
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

	scheduler.Stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Closing the session ends open streams, which Shutdown does not track.
	sess.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
