package weather

import (
	"strconv"
	"time"
)

// TodayWindowHours is how many hourly entries the "today" strip shows,
// enough to roll over into tomorrow.
const TodayWindowHours = 26

// WindowEntry is one hourly entry with its display label.
type WindowEntry struct {
	HourlyEntry
	Label string `json:"label"`
}

// SelectHourlyWindow returns the hourly entries to show for the selected day.
//
// For day 0 the window is anchored to now: it starts at the first entry at or
// after the top of the current local hour, spans TodayWindowHours entries and
// labels the first one NowLabel. It is empty when the series ends before now.
// For later days it holds every entry on that calendar date. Other labels are
// the local hour of day without padding.
//
// An index outside the daily list yields an empty window.
func SelectHourlyWindow(m *Model, dayIndex int, now time.Time) []WindowEntry {
	if m == nil || dayIndex < 0 || dayIndex >= len(m.Daily) {
		return []WindowEntry{}
	}
	if dayIndex == 0 {
		return todayWindow(m, now)
	}

	date := m.Daily[dayIndex].Date
	window := make([]WindowEntry, 0, 24)
	for _, h := range m.Hourly {
		if h.Date() == date {
			window = append(window, WindowEntry{HourlyEntry: h, Label: hourLabel(h.Time)})
		}
	}
	return window
}

func todayWindow(m *Model, now time.Time) []WindowEntry {
	anchor := topOfHour(now, m.Location)

	start := -1
	for i, h := range m.Hourly {
		if !h.Time.Before(anchor) {
			start = i
			break
		}
	}
	if start < 0 {
		return []WindowEntry{}
	}

	end := min(start+TodayWindowHours, len(m.Hourly))
	window := make([]WindowEntry, 0, end-start)
	for i, h := range m.Hourly[start:end] {
		label := hourLabel(h.Time)
		if i == 0 {
			label = NowLabel
		}
		window = append(window, WindowEntry{HourlyEntry: h, Label: label})
	}
	return window
}

// topOfHour truncates now to the start of its hour in loc. Truncating the
// absolute instant would be wrong for zones with sub-hour offsets.
func topOfHour(now time.Time, loc *time.Location) time.Time {
	if loc != nil {
		now = now.In(loc)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
}

func hourLabel(t time.Time) string {
	return strconv.Itoa(t.Hour())
}
