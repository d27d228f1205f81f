// Package openmeteo implements the geocoding and forecast collaborators
// against the Open-Meteo HTTP APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/provider/resilience"
	"github.com/skycast/skycast/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "open-meteo"

	// GeocodingProviderName and ForecastProviderName name the two outbound clients.
	GeocodingProviderName = "open-meteo-geocoding"
	ForecastProviderName  = "open-meteo-forecast"

	// DefaultGeocodingURL is the Open-Meteo geocoding search endpoint.
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

	// DefaultForecastURL is the Open-Meteo forecast endpoint.
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

	// DefaultForecastDays covers today plus seven days.
	DefaultForecastDays = 8
)

// Field lists requested from the forecast endpoint.
var (
	currentFields = []string{
		"temperature_2m", "relative_humidity_2m", "apparent_temperature", "is_day",
		"precipitation", "weather_code", "surface_pressure", "wind_speed_10m",
		"wind_direction_10m", "dew_point_2m",
	}
	hourlyFields = []string{"temperature_2m", "weather_code", "is_day"}
	dailyFields  = []string{
		"weather_code", "temperature_2m_max", "temperature_2m_min", "sunrise", "sunset",
		"uv_index_max", "precipitation_sum", "wind_speed_10m_max", "wind_direction_10m_dominant",
	}
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// GeocodingURL is the geocoding search endpoint (optional).
	GeocodingURL string

	// ForecastURL is the forecast endpoint (optional).
	ForecastURL string

	// ForecastDays is the forecast horizon (default: 8).
	ForecastDays int

	// GeocodingClient and ForecastClient are the HTTP clients to use (optional).
	// If nil, resilient clients with defaults are created.
	GeocodingClient *resilience.Client
	ForecastClient  *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client. It satisfies both weather.Geocoder
// and weather.ForecastProvider.
type Client struct {
	geocodingURL string
	forecastURL  string
	forecastDays int
	geocoding    *resilience.Client
	forecast     *resilience.Client
	logger       zerolog.Logger
}

// APIError is a non-success response from Open-Meteo.
type APIError struct {
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("open-meteo: status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("open-meteo: unexpected status code: %d", e.StatusCode)
}

// DefaultClientConfig is the outbound profile for both Open-Meteo hosts.
// Calls are not retried: a failed geocode or forecast surfaces as a
// provider error and the user searches again.
func DefaultClientConfig(name string) resilience.ClientConfig {
	cfg := resilience.DefaultClientConfig(name)
	cfg.MaxRetries = 0
	cb := resilience.DefaultCircuitBreakerConfig(name)
	cb.Interval = time.Minute
	cb.Timeout = 30 * time.Second
	cfg.CircuitBreaker = &cb
	return cfg
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	geocodingURL := cfg.GeocodingURL
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}

	forecastURL := cfg.ForecastURL
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}

	days := cfg.ForecastDays
	if days <= 0 {
		days = DefaultForecastDays
	}

	geocoding := cfg.GeocodingClient
	if geocoding == nil {
		geocoding = resilience.NewClient(DefaultClientConfig(GeocodingProviderName))
	}
	forecast := cfg.ForecastClient
	if forecast == nil {
		forecast = resilience.NewClient(DefaultClientConfig(ForecastProviderName))
	}

	return &Client{
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		forecastDays: days,
		geocoding:    geocoding,
		forecast:     forecast,
		logger:       cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Geocode returns the first search result for name, or nil when there is none.
// An empty language omits the parameter.
func (c *Client) Geocode(ctx context.Context, name string, count int, language string) (*weather.Location, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("count", strconv.Itoa(count))
	if language != "" {
		q.Set("language", language)
	}
	q.Set("format", "json")

	var resp geocodingResponse
	if err := c.getJSON(ctx, c.geocoding, c.geocodingURL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		return nil, nil
	}

	r := resp.Results[0]
	return &weather.Location{
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timezone:  r.Timezone,
	}, nil
}

// GetForecast fetches current, hourly and daily data in the location's own zone.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) (*weather.RawForecastPayload, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("current", strings.Join(currentFields, ","))
	q.Set("hourly", strings.Join(hourlyFields, ","))
	q.Set("daily", strings.Join(dailyFields, ","))
	q.Set("timezone", "auto")
	q.Set("past_days", "0")
	q.Set("forecast_days", strconv.Itoa(c.forecastDays))

	var payload weather.RawForecastPayload
	if err := c.getJSON(ctx, c.forecast, c.forecastURL+"?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) getJSON(ctx context.Context, client *resilience.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body errorResponse
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &body) == nil {
				apiErr.Reason = body.Reason
			}
		}
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("reason", apiErr.Reason).
			Str("provider", client.Name()).
			Msg("open-meteo request rejected")
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Open-Meteo API response structures.

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

type errorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}
