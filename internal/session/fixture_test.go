package session_test

import (
	"context"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/skycast/skycast/internal/weather"
)

func zone() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		panic(err)
	}
	return loc
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 5, 30, 0, 0, zone())
}

func uv(v float64) *float64 { return &v }

// payload builds an eight day forecast starting 2024-06-01 with the given
// current temperature.
func payload(temp float64) *weather.RawForecastPayload {
	first := time.Date(2024, 6, 1, 0, 0, 0, 0, zone())
	p := &weather.RawForecastPayload{
		Timezone:         "Asia/Ho_Chi_Minh",
		UTCOffsetSeconds: 7 * 3600,
		Current: weather.RawCurrent{
			Temperature:         temp,
			RelativeHumidity:    78,
			ApparentTemperature: 27.4,
			IsDay:               1,
			Precipitation:       0.3,
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
		p.Daily.UVIndexMax = append(p.Daily.UVIndexMax, uv(7.25))
		p.Daily.PrecipitationSum = append(p.Daily.PrecipitationSum, uv(4.1))
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

func result(name string, temp float64) *weather.Result {
	loc := weather.Location{Name: name, Country: "Vietnam", Latitude: 10.8, Longitude: 106.6}
	model, err := weather.Normalize(payload(temp), loc.DisplayName(), fixedNow())
	if err != nil {
		panic(err)
	}
	return &weather.Result{Location: loc, Model: model}
}

type searchReply struct {
	result *weather.Result
	err    error
}

// fakeSearcher answers each query from a table. A query with a gate blocks
// until the gate is closed.
type fakeSearcher struct {
	mu      sync.Mutex
	replies map[string]searchReply
	gates   map[string]chan struct{}
	started chan string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		replies: make(map[string]searchReply),
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
}

func (f *fakeSearcher) reply(query string, r *weather.Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[query] = searchReply{r, err}
}

func (f *fakeSearcher) gate(query string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[query] = ch
	return ch
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (*weather.Result, error) {
	f.mu.Lock()
	gate := f.gates[query]
	f.mu.Unlock()

	f.started <- query
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.replies[query]
	if !ok {
		return nil, weather.ErrLocationNotFound
	}
	return r.result, r.err
}

// fakeAdvisor returns text per city. A city with a gate blocks until it is closed.
type fakeAdvisor struct {
	mu    sync.Mutex
	texts map[string]string
	gates map[string]chan struct{}
	calls []string
}

func newFakeAdvisor() *fakeAdvisor {
	return &fakeAdvisor{texts: make(map[string]string), gates: make(map[string]chan struct{})}
}

func (f *fakeAdvisor) Fetch(ctx context.Context, city string, _ int, _ string) (string, bool) {
	f.mu.Lock()
	f.calls = append(f.calls, city)
	gate := f.gates[city]
	text, ok := f.texts[city]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", false
		}
	}
	return text, ok
}
