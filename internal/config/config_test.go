package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/skycast/internal/config"
)

var configKeys = []string{
	"APP_PORT", "APP_ENV", "LOG_LEVEL", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SAMPLE_RATIO",
	"GEOCODING_BASE_URL", "FORECAST_BASE_URL", "GEOCODING_LANGUAGE", "FORECAST_DAYS",
	"PROVIDER_TIMEOUT", "PROVIDER_RPS", "GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
	"ADVISORY_TIMEOUT", "REFRESH_INTERVAL", "REQUIRE_TLS",
}

// clearEnv blanks every key for the test; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 1.0, cfg.OTelSampleRatio)
	assert.Equal(t, "en", cfg.GeocodingLanguage)
	assert.Equal(t, 8, cfg.ForecastDays)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 5.0, cfg.ProviderRPS)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 15*time.Second, cfg.AdvisoryTimeout)
	assert.Zero(t, cfg.RefreshInterval)
	assert.False(t, cfg.RequireTLS)
	assert.False(t, cfg.AdvisoryEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.2")
	t.Setenv("FORECAST_DAYS", "7")
	t.Setenv("PROVIDER_RPS", "2.5")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("REFRESH_INTERVAL", "15m")
	t.Setenv("REQUIRE_TLS", "1")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, 0.2, cfg.OTelSampleRatio)
	assert.Equal(t, 7, cfg.ForecastDays)
	assert.Equal(t, 2.5, cfg.ProviderRPS)
	assert.True(t, cfg.AdvisoryEnabled())
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.True(t, cfg.RequireTLS)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FORECAST_DAYS", "eight"},
		{"FORECAST_DAYS", "30"},
		{"PROVIDER_TIMEOUT", "10"},
		{"PROVIDER_RPS", "fast"},
		{"OTEL_ENABLED", "maybe"},
		{"OTEL_SAMPLE_RATIO", "1.5"},
		{"REFRESH_INTERVAL", "-5m"},
		{"ADVISORY_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv only fills variables that are unset, not empty ones.
	for _, k := range []string{"APP_PORT", "GEOCODING_LANGUAGE"} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("APP_ENV", "production")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=7070\nGEOCODING_LANGUAGE=vi\nAPP_ENV=staging\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("APP_PORT")
		os.Unsetenv("GEOCODING_LANGUAGE")
	})

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "vi", cfg.GeocodingLanguage)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
}
