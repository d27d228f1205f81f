package weather_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/skycast/internal/weather"
)

type geocodeCall struct {
	Name     string
	Count    int
	Language string
}

type mockGeocoder struct {
	mu      sync.Mutex
	calls   []geocodeCall
	matches map[string]*weather.Location
	err     error
}

func (m *mockGeocoder) Geocode(_ context.Context, name string, count int, language string) (*weather.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, geocodeCall{name, count, language})
	if m.err != nil {
		return nil, m.err
	}
	key := name
	if language == "" {
		key = "relaxed:" + name
	}
	return m.matches[key], nil
}

func (m *mockGeocoder) Name() string { return "mock-geocoder" }

type mockForecast struct {
	payload *weather.RawForecastPayload
	err     error
	calls   int
}

func (m *mockForecast) GetForecast(_ context.Context, _, _ float64) (*weather.RawForecastPayload, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.payload, nil
}

func (m *mockForecast) Name() string { return "mock-forecast" }

type recordedRequest struct {
	provider  string
	operation string
	failed    bool
}

type mockRecorder struct {
	requests []recordedRequest
}

func (m *mockRecorder) RecordRequest(provider, operation string, _ time.Duration, err error) {
	m.requests = append(m.requests, recordedRequest{provider, operation, err != nil})
}

var hcmc = &weather.Location{
	Name:      "Ho Chi Minh City",
	Country:   "Vietnam",
	Latitude:  10.82,
	Longitude: 106.63,
	Timezone:  fixtureZone,
}

func newTestService(geo *mockGeocoder, fc *mockForecast, rec *mockRecorder) *weather.Service {
	cfg := weather.ServiceConfig{
		Geocoder: geo,
		Forecast: fc,
		Logger:   zerolog.Nop(),
		Now:      fixtureNow,
	}
	if rec != nil {
		cfg.Recorder = rec
	}
	return weather.NewService(cfg)
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "Hanoi, Vietnam", weather.BuildQuery(" Hanoi ", "Vietnam "))
	assert.Equal(t, "Hanoi", weather.BuildQuery("Hanoi", "  "))
}

func TestService_Search_Success(t *testing.T) {
	geo := &mockGeocoder{matches: map[string]*weather.Location{"Ho Chi Minh City": hcmc}}
	fc := &mockForecast{payload: newPayload("2024-06-01", 8)}
	rec := &mockRecorder{}

	result, err := newTestService(geo, fc, rec).Search(context.Background(), "Ho Chi Minh City")
	require.NoError(t, err)

	assert.Equal(t, *hcmc, result.Location)
	assert.Equal(t, "Ho Chi Minh City, Vietnam", result.Model.Current.City)
	assert.Equal(t, 25, result.Model.Current.Temp)
	assert.Equal(t, []geocodeCall{{"Ho Chi Minh City", 5, "en"}}, geo.calls)

	assert.Equal(t, []recordedRequest{
		{"mock-geocoder", "geocode", false},
		{"mock-forecast", "forecast", false},
	}, rec.requests)
}

func TestService_Locate_FallsBackToFirstSegment(t *testing.T) {
	geo := &mockGeocoder{matches: map[string]*weather.Location{"Hanoi": {Name: "Hanoi", Country: "Vietnam"}}}
	svc := newTestService(geo, &mockForecast{}, nil)

	loc, err := svc.Locate(context.Background(), "Hanoi, Viet Nam")
	require.NoError(t, err)

	assert.Equal(t, "Hanoi", loc.Name)
	assert.Equal(t, []geocodeCall{
		{"Hanoi, Viet Nam", 5, "en"},
		{"Hanoi", 5, "en"},
	}, geo.calls)
}

func TestService_Locate_RelaxedAttempt(t *testing.T) {
	geo := &mockGeocoder{matches: map[string]*weather.Location{"relaxed:Saigon": hcmc}}
	svc := newTestService(geo, &mockForecast{}, nil)

	loc, err := svc.Locate(context.Background(), "Saigon")
	require.NoError(t, err)

	assert.Equal(t, hcmc.Name, loc.Name)
	assert.Equal(t, []geocodeCall{
		{"Saigon", 5, "en"},
		{"Saigon", 1, ""},
	}, geo.calls)
}

func TestService_Search_LocationNotFound(t *testing.T) {
	geo := &mockGeocoder{}
	fc := &mockForecast{}

	result, err := newTestService(geo, fc, nil).Search(context.Background(), "Xyzzyplex")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
	assert.Len(t, geo.calls, 2)
	assert.Zero(t, fc.calls)
}

func TestService_Search_EmptyQuery(t *testing.T) {
	geo := &mockGeocoder{}

	_, err := newTestService(geo, &mockForecast{}, nil).Search(context.Background(), "   ")

	assert.ErrorIs(t, err, weather.ErrEmptyQuery)
	assert.Empty(t, geo.calls)
}

func TestService_Search_GeocoderFailure(t *testing.T) {
	cause := errors.New("connection refused")
	geo := &mockGeocoder{err: cause}
	rec := &mockRecorder{}

	_, err := newTestService(geo, &mockForecast{}, rec).Search(context.Background(), "Hanoi")

	assert.ErrorIs(t, err, weather.ErrNetwork)
	assert.ErrorIs(t, err, cause)
	assert.Len(t, geo.calls, 1)
	require.Len(t, rec.requests, 1)
	assert.True(t, rec.requests[0].failed)
}

func TestService_Search_ForecastFailure(t *testing.T) {
	cause := errors.New("timeout")
	geo := &mockGeocoder{matches: map[string]*weather.Location{"Ho Chi Minh City": hcmc}}
	fc := &mockForecast{err: cause}

	_, err := newTestService(geo, fc, nil).Search(context.Background(), "Ho Chi Minh City")

	assert.ErrorIs(t, err, weather.ErrNetwork)
	assert.ErrorIs(t, err, cause)
}

func TestService_Search_MalformedPayload(t *testing.T) {
	payload := newPayload("2024-06-01", 8)
	payload.Hourly.Temperature = payload.Hourly.Temperature[:10]

	geo := &mockGeocoder{matches: map[string]*weather.Location{"Ho Chi Minh City": hcmc}}
	fc := &mockForecast{payload: payload}

	result, err := newTestService(geo, fc, nil).Search(context.Background(), "Ho Chi Minh City")

	assert.Nil(t, result)
	var shapeErr *weather.DataShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "hourly.temperature_2m", shapeErr.Field)
	assert.NotErrorIs(t, err, weather.ErrNetwork)
}

func TestService_Forecast_InvalidCoordinates(t *testing.T) {
	fc := &mockForecast{}
	svc := newTestService(&mockGeocoder{}, fc, nil)

	_, err := svc.Forecast(context.Background(), weather.Location{Name: "Nowhere", Latitude: 91})

	assert.ErrorIs(t, err, weather.ErrInvalidCoordinates)
	assert.Zero(t, fc.calls)
}
