package session

import (
	"errors"
	"time"

	"github.com/skycast/skycast/internal/weather"
	"github.com/skycast/skycast/internal/weather/gauge"
)

// User-facing error messages.
const (
	MessageLocationNotFound = "Location not found"
	MessageSearchFailed     = "Could not load the weather, please try again"
)

// View is the render-ready projection of a State.
type View struct {
	Generation  uint64       `json:"generation"`
	Loading     bool         `json:"loading"`
	Searching   bool         `json:"searching"`
	Error       string       `json:"error,omitempty"`
	Query       string       `json:"query,omitempty"`
	Current     *CurrentView `json:"current,omitempty"`
	Daily       []DayView    `json:"daily"`
	SelectedDay int          `json:"selectedDay"`
	Hourly      []HourView   `json:"hourly"`
	Details     *DetailsView `json:"details,omitempty"`
	Advice      string       `json:"advice,omitempty"`
}

// CurrentView is the current snapshot with its ambient background.
type CurrentView struct {
	weather.CurrentSnapshot
	Icon weather.Icon `json:"icon"`
	Sky  gauge.Sky    `json:"sky"`
	Orb  gauge.Point  `json:"orb"`
}

// DayView is one row of the daily list.
type DayView struct {
	weather.DailyEntry
	Icon weather.Icon `json:"icon"`

	// CurrentDot places the current temperature on today's range bar.
	CurrentDot *float64 `json:"currentDot,omitempty"`
}

// HourView is one cell of the hourly strip.
type HourView struct {
	weather.WindowEntry
	Icon weather.Icon `json:"icon"`
}

// DetailsView is the selected day's details with gauge projections.
type DetailsView struct {
	weather.DetailRecord
	SunProgress   float64     `json:"sunProgress"`
	Sun           gauge.Point `json:"sun"`
	SunVisible    bool        `json:"sunVisible"`
	WindLabel     string      `json:"windLabel"`
	PressureAngle float64     `json:"pressureAngle"`
	UVBar         *float64    `json:"uvBar,omitempty"`
	UVLevel       string      `json:"uvLevel"`
}

// BuildView renders s at now. Wall-clock projections are read in the
// model's own zone.
func BuildView(s State, now time.Time) View {
	v := View{
		Generation:  s.Generation,
		Loading:     s.Loading,
		Searching:   s.Searching,
		Error:       ErrorMessage(s.Err),
		Query:       s.Query,
		Daily:       []DayView{},
		SelectedDay: s.SelectedDay,
		Hourly:      []HourView{},
	}

	m := s.Model
	if m == nil {
		return v
	}
	if m.Location != nil {
		now = now.In(m.Location)
	}

	cur := m.Current
	isDay := cur.IsDay == 1
	v.Current = &CurrentView{
		CurrentSnapshot: cur,
		Icon:            weather.IconFor(cur.ConditionCode, cur.IsDay),
		Sky:             gauge.SkyLayers(cur.ConditionCode, isDay),
		Orb:             gauge.SkyOrbPosition(isDay, now),
	}

	v.Daily = make([]DayView, 0, len(m.Daily))
	for i, d := range m.Daily {
		day := DayView{DailyEntry: d, Icon: weather.IconFor(d.Code, 1)}
		if i == 0 {
			dot := gauge.DotPosition(float64(d.Min), float64(d.Max), float64(cur.Temp))
			day.CurrentDot = &dot
		}
		v.Daily = append(v.Daily, day)
	}

	window := weather.SelectHourlyWindow(m, s.SelectedDay, now)
	v.Hourly = make([]HourView, 0, len(window))
	for _, h := range window {
		v.Hourly = append(v.Hourly, HourView{WindowEntry: h, Icon: weather.IconFor(h.Code, h.IsDay)})
	}

	if s.SelectedDay >= 0 && s.SelectedDay < len(m.Daily) {
		v.Details = buildDetails(m.Daily[s.SelectedDay].Details, now)
	}

	v.Advice = m.Advice
	return v
}

func buildDetails(d weather.DetailRecord, now time.Time) *DetailsView {
	progress := gauge.SunArcProgress(d.Sunrise, d.Sunset, now)
	details := &DetailsView{
		DetailRecord:  d,
		SunProgress:   progress,
		Sun:           gauge.SunArcPoint(progress),
		SunVisible:    progress > 0 && progress < 1,
		WindLabel:     gauge.WindDirectionLabel(float64(d.WindDirection)),
		PressureAngle: gauge.PressureAngle(float64(d.Pressure)),
		UVLevel:       weather.NotAvailable,
	}
	if d.UVIndex != nil {
		bar := gauge.UVBarPosition(*d.UVIndex)
		details.UVBar = &bar
		details.UVLevel = gauge.UVLevel(*d.UVIndex)
	}
	return details
}

// ErrorMessage maps a search error to the message shown to the user.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, weather.ErrLocationNotFound), errors.Is(err, weather.ErrEmptyQuery):
		return MessageLocationNotFound
	default:
		return MessageSearchFailed
	}
}
