// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings of the API process.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	OTelEnabled     bool
	OTLPEndpoint    string
	OTelSampleRatio float64

	GeocodingURL      string
	ForecastURL       string
	GeocodingLanguage string
	ForecastDays      int
	ProviderTimeout   time.Duration
	ProviderRPS       float64

	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	AdvisoryTimeout time.Duration

	// RefreshInterval re-runs the last search periodically; zero disables it.
	RefreshInterval time.Duration

	RequireTLS bool
}

// AdvisoryEnabled reports whether an advisory generator is configured.
func (c *Config) AdvisoryEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Load reads files (default ".env") into the environment without overriding
// variables already set, then builds the configuration. Missing files are
// not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getenvDefault("APP_PORT", "8080"),
		Environment:       getenvDefault("APP_ENV", "development"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		OTLPEndpoint:      getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		GeocodingURL:      os.Getenv("GEOCODING_BASE_URL"),
		ForecastURL:       os.Getenv("FORECAST_BASE_URL"),
		GeocodingLanguage: getenvDefault("GEOCODING_LANGUAGE", "en"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getenvDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:     os.Getenv("GEMINI_BASE_URL"),
	}

	var err error
	if cfg.OTelEnabled, err = getenvBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.RequireTLS, err = getenvBool("REQUIRE_TLS", false); err != nil {
		return nil, err
	}
	if cfg.OTelSampleRatio, err = getenvFloat("OTEL_SAMPLE_RATIO", 1); err != nil {
		return nil, err
	}
	if cfg.OTelSampleRatio < 0 || cfg.OTelSampleRatio > 1 {
		return nil, fmt.Errorf("invalid OTEL_SAMPLE_RATIO: %v not in [0,1]", cfg.OTelSampleRatio)
	}
	if cfg.ForecastDays, err = getenvInt("FORECAST_DAYS", 8); err != nil {
		return nil, err
	}
	if cfg.ForecastDays < 1 || cfg.ForecastDays > 16 {
		return nil, fmt.Errorf("invalid FORECAST_DAYS: %d not in [1,16]", cfg.ForecastDays)
	}
	if cfg.ProviderRPS, err = getenvFloat("PROVIDER_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.ProviderTimeout, err = getenvDuration("PROVIDER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AdvisoryTimeout, err = getenvDuration("ADVISORY_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 0); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval < 0 {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %s is negative", cfg.RefreshInterval)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
