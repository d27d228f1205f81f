package api_test

import (
	"context"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/skycast/skycast/internal/weather"
)

const fixtureZone = "Asia/Ho_Chi_Minh"

func zone() *time.Location {
	loc, err := time.LoadLocation(fixtureZone)
	if err != nil {
		panic(err)
	}
	return loc
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 5, 30, 0, 0, zone())
}

func ptr(v float64) *float64 { return &v }

func payload(temp float64) *weather.RawForecastPayload {
	first := time.Date(2024, 6, 1, 0, 0, 0, 0, zone())
	p := &weather.RawForecastPayload{
		Timezone:         fixtureZone,
		UTCOffsetSeconds: 7 * 3600,
		Current: weather.RawCurrent{
			Temperature:         temp,
			RelativeHumidity:    78,
			ApparentTemperature: 27.4,
			IsDay:               1,
			WeatherCode:         2,
			SurfacePressure:     1008.6,
			WindSpeed:           11.4,
			WindDirection:       135,
			DewPoint:            21.2,
		},
	}
	for d := 0; d < 8; d++ {
		day := first.AddDate(0, 0, d)
		date := day.Format(time.DateOnly)
		p.Daily.Time = append(p.Daily.Time, date)
		p.Daily.WeatherCode = append(p.Daily.WeatherCode, 61)
		p.Daily.TemperatureMax = append(p.Daily.TemperatureMax, 29.2)
		p.Daily.TemperatureMin = append(p.Daily.TemperatureMin, 22.1)
		p.Daily.Sunrise = append(p.Daily.Sunrise, date+"T05:31")
		p.Daily.Sunset = append(p.Daily.Sunset, date+"T18:12")
		p.Daily.UVIndexMax = append(p.Daily.UVIndexMax, ptr(7.25))
		p.Daily.PrecipitationSum = append(p.Daily.PrecipitationSum, ptr(4.1))
		p.Daily.WindSpeedMax = append(p.Daily.WindSpeedMax, 18.6)
		p.Daily.WindDirectionDominant = append(p.Daily.WindDirectionDominant, 225)
		for h := 0; h < 24; h++ {
			p.Hourly.Time = append(p.Hourly.Time, day.Add(time.Duration(h)*time.Hour).Format("2006-01-02T15:04"))
			p.Hourly.Temperature = append(p.Hourly.Temperature, 25)
			p.Hourly.WeatherCode = append(p.Hourly.WeatherCode, 3)
			p.Hourly.IsDay = append(p.Hourly.IsDay, 1)
		}
	}
	return p
}

func result(name, country string, temp float64) *weather.Result {
	loc := weather.Location{Name: name, Country: country, Latitude: 10.8, Longitude: 106.6}
	model, err := weather.Normalize(payload(temp), loc.DisplayName(), fixedNow())
	if err != nil {
		panic(err)
	}
	return &weather.Result{Location: loc, Model: model}
}

// stubSearcher answers queries from a table; unknown queries are not found.
type stubSearcher struct {
	mu      sync.Mutex
	replies map[string]*weather.Result
	errs    map[string]error
	queries []string
}

func newStubSearcher() *stubSearcher {
	return &stubSearcher{
		replies: make(map[string]*weather.Result),
		errs:    make(map[string]error),
	}
}

func (s *stubSearcher) Search(_ context.Context, query string) (*weather.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if err, ok := s.errs[query]; ok {
		return nil, err
	}
	if r, ok := s.replies[query]; ok {
		return r, nil
	}
	return nil, weather.ErrLocationNotFound
}
