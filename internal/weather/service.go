package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Geocoder resolves free-text place names.
type Geocoder interface {
	// Geocode returns the best match for name, or nil when there is none.
	// An empty language leaves the choice to the provider.
	Geocode(ctx context.Context, name string, count int, language string) (*Location, error)

	// Name returns the provider name for logging.
	Name() string
}

// ForecastProvider retrieves raw forecasts.
type ForecastProvider interface {
	// GetForecast fetches current, hourly and daily data for a location.
	GetForecast(ctx context.Context, lat, lon float64) (*RawForecastPayload, error)

	// Name returns the provider name for logging.
	Name() string
}

// RequestRecorder receives timings of provider calls.
type RequestRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	Geocoder Geocoder
	Forecast ForecastProvider

	// Logger for service operations.
	Logger zerolog.Logger

	// Language is passed to the first geocoding attempts (default: "en").
	Language string

	// Now returns the wall-clock time (default: time.Now).
	Now func() time.Time

	// Recorder is optional.
	Recorder RequestRecorder
}

// Service runs location searches and builds weather models.
type Service struct {
	geocoder Geocoder
	forecast ForecastProvider
	logger   zerolog.Logger
	language string
	now      func() time.Time
	recorder RequestRecorder
}

// Result is a successful search.
type Result struct {
	Location Location
	Model    *Model
}

type geocodeAttempt struct {
	name     string
	count    int
	language string
}

const (
	geocodeCount        = 5
	relaxedGeocodeCount = 1
)

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		geocoder: cfg.Geocoder,
		forecast: cfg.Forecast,
		logger:   cfg.Logger,
		language: language,
		now:      now,
		recorder: cfg.Recorder,
	}
}

// BuildQuery joins a city and an optional country into one geocoding query.
func BuildQuery(city, country string) string {
	city = strings.TrimSpace(city)
	country = strings.TrimSpace(country)
	if country == "" {
		return city
	}
	return city + ", " + country
}

// Search resolves query to a location and builds its weather model.
//
// Errors: ErrEmptyQuery, ErrLocationNotFound, ErrNetwork (wrapping the
// transport error) or a *DataShapeError.
func (s *Service) Search(ctx context.Context, query string) (*Result, error) {
	loc, err := s.Locate(ctx, query)
	if err != nil {
		return nil, err
	}

	model, err := s.Forecast(ctx, *loc)
	if err != nil {
		return nil, err
	}

	return &Result{Location: *loc, Model: model}, nil
}

// Locate runs the geocoding fallback chain: the full query, then the part
// before the first comma, then a relaxed single-result lookup.
func (s *Service) Locate(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	attempts := []geocodeAttempt{{query, geocodeCount, s.language}}
	if first, _, found := strings.Cut(query, ","); found {
		if first = strings.TrimSpace(first); first != "" {
			attempts = append(attempts, geocodeAttempt{first, geocodeCount, s.language})
		}
	}
	attempts = append(attempts, geocodeAttempt{query, relaxedGeocodeCount, ""})

	for _, a := range attempts {
		loc, err := s.geocode(ctx, a.name, a.count, a.language)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			s.logger.Debug().
				Str("query", query).
				Str("matched", a.name).
				Str("location", loc.DisplayName()).
				Msg("location resolved")
			return loc, nil
		}
	}

	s.logger.Info().Str("query", query).Msg("location not found")
	return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, query)
}

// Forecast fetches and normalizes the forecast for a resolved location.
func (s *Service) Forecast(ctx context.Context, loc Location) (*Model, error) {
	if err := validateCoordinates(loc.Latitude, loc.Longitude); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Float64("lat", loc.Latitude).
		Float64("lon", loc.Longitude).
		Str("provider", s.forecast.Name()).
		Msg("fetching forecast from provider")

	start := time.Now()
	payload, err := s.forecast.GetForecast(ctx, loc.Latitude, loc.Longitude)
	s.record(s.forecast.Name(), "forecast", start, err)
	if err != nil {
		s.logger.Error().Err(err).
			Float64("lat", loc.Latitude).
			Float64("lon", loc.Longitude).
			Msg("failed to fetch forecast")
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	model, err := Normalize(payload, loc.DisplayName(), s.now())
	if err != nil {
		var shapeErr *DataShapeError
		if errors.As(err, &shapeErr) {
			s.logger.Error().
				Str("field", shapeErr.Field).
				Str("reason", shapeErr.Reason).
				Msg("rejected malformed forecast payload")
		}
		return nil, err
	}
	return model, nil
}

func (s *Service) geocode(ctx context.Context, name string, count int, language string) (*Location, error) {
	start := time.Now()
	loc, err := s.geocoder.Geocode(ctx, name, count, language)
	s.record(s.geocoder.Name(), "geocode", start, err)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("geocoding failed")
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return loc, nil
}

func (s *Service) record(provider, operation string, start time.Time, err error) {
	if s.recorder != nil {
		s.recorder.RecordRequest(provider, operation, time.Since(start), err)
	}
}

// validateCoordinates checks if coordinates are valid.
func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
