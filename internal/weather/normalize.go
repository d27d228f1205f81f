package weather

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// localTimeLayout is how the source encodes local timestamps when a
// time zone is requested.
const localTimeLayout = "2006-01-02T15:04"

// Normalize converts one forecast payload into a Model for the named city.
// now anchors the "Today" label and the snapshot time; it is read in the
// location's zone. A payload that breaks the parallel-array invariants is
// rejected with a *DataShapeError and no model is returned.
func Normalize(payload *RawForecastPayload, city string, now time.Time) (*Model, error) {
	if payload == nil {
		return nil, shapeErrorf("payload", "missing")
	}
	if err := validateShape(payload); err != nil {
		return nil, err
	}

	loc := payloadLocation(payload)
	zone := sourceZone(payload)

	daily, err := normalizeDaily(&payload.Daily, now.In(loc).Format(time.DateOnly), zone)
	if err != nil {
		return nil, err
	}
	daily[0].Details = mergeCurrent(daily[0].Details, &payload.Current)

	hourly, err := normalizeHourly(&payload.Hourly, zone, loc)
	if err != nil {
		return nil, err
	}

	cur := &payload.Current
	cond := Classify(cur.WeatherCode, cur.IsDay)

	return &Model{
		Current: CurrentSnapshot{
			Temp:          Round(cur.Temperature),
			ConditionCode: cur.WeatherCode,
			High:          daily[0].Max,
			Low:           daily[0].Min,
			City:          city,
			Description:   cond.Text,
			Background:    cond.Background,
			Details:       daily[0].Details,
			IsDay:         cur.IsDay,
			Time:          now.In(loc),
		},
		Daily:    daily,
		Hourly:   hourly,
		Advice:   AdvicePlaceholder,
		Location: loc,
	}, nil
}

type seriesLen struct {
	field string
	got   int
}

// validateShape reports the first series, in payload order, whose length
// differs from its time axis.
func validateShape(p *RawForecastPayload) error {
	d := &p.Daily
	n := len(d.Time)
	if n == 0 {
		return shapeErrorf("daily.time", "no forecast days")
	}
	if err := checkLens(n, []seriesLen{
		{"daily.weather_code", len(d.WeatherCode)},
		{"daily.temperature_2m_max", len(d.TemperatureMax)},
		{"daily.temperature_2m_min", len(d.TemperatureMin)},
		{"daily.sunrise", len(d.Sunrise)},
		{"daily.sunset", len(d.Sunset)},
		{"daily.uv_index_max", len(d.UVIndexMax)},
		{"daily.precipitation_sum", len(d.PrecipitationSum)},
		{"daily.wind_speed_10m_max", len(d.WindSpeedMax)},
		{"daily.wind_direction_10m_dominant", len(d.WindDirectionDominant)},
	}); err != nil {
		return err
	}

	h := &p.Hourly
	return checkLens(len(h.Time), []seriesLen{
		{"hourly.temperature_2m", len(h.Temperature)},
		{"hourly.weather_code", len(h.WeatherCode)},
		{"hourly.is_day", len(h.IsDay)},
	})
}

func checkLens(want int, series []seriesLen) error {
	for _, s := range series {
		if s.got != want {
			return shapeErrorf(s.field, "length %d, want %d", s.got, want)
		}
	}
	return nil
}

func normalizeDaily(d *RawDaily, today string, zone *time.Location) ([]DailyEntry, error) {
	entries := make([]DailyEntry, len(d.Time))
	var prev time.Time

	for i, date := range d.Time {
		day, err := time.ParseInLocation(time.DateOnly, date, zone)
		if err != nil {
			return nil, shapeErrorf("daily.time", "index %d: %q is not a date", i, date)
		}
		if i > 0 && !day.After(prev) {
			return nil, shapeErrorf("daily.time", "index %d: %s not after %s", i, date, prev.Format(time.DateOnly))
		}
		prev = day

		label := day.Format("Mon")
		if date == today {
			label = TodayLabel
		}

		entries[i] = DailyEntry{
			Day:  label,
			Date: date,
			Min:  Round(d.TemperatureMin[i]),
			Max:  Round(d.TemperatureMax[i]),
			Code: d.WeatherCode[i],
			Details: DetailRecord{
				UVIndex:       copyFloat(d.UVIndexMax[i]),
				Sunrise:       clockString(d.Sunrise[i], zone),
				Sunset:        clockString(d.Sunset[i], zone),
				WindSpeed:     Round(d.WindSpeedMax[i]),
				WindDirection: normalizeBearing(d.WindDirectionDominant[i]),
				Humidity:      NotAvailable,
				FeelsLike:     NotAvailable,
				Visibility:    DefaultVisibility,
				Pressure:      SeaLevelPressure,
				Precipitation: precipitation(d.PrecipitationSum[i]),
				DewPoint:      NotAvailable,
			},
		}
	}
	return entries, nil
}

// mergeCurrent overrides the fields that only the instantaneous reading has.
func mergeCurrent(details DetailRecord, cur *RawCurrent) DetailRecord {
	details.Humidity = formatNumber(cur.RelativeHumidity) + "%"
	details.FeelsLike = degrees(cur.ApparentTemperature)
	details.Pressure = Round(cur.SurfacePressure)
	details.Precipitation = precipitation(&cur.Precipitation)
	details.WindSpeed = Round(cur.WindSpeed)
	details.WindDirection = normalizeBearing(cur.WindDirection)
	details.DewPoint = degrees(cur.DewPoint)
	return details
}

// normalizeHourly reads timestamps in the source's fixed offset. A series
// written in true local time repeats one wall-clock hour when the clocks go
// back; that repeat is kept, any other step backwards is rejected.
func normalizeHourly(h *RawHourly, zone, loc *time.Location) ([]HourlyEntry, error) {
	entries := make([]HourlyEntry, len(h.Time))

	for i, raw := range h.Time {
		t, err := ParseLocalTime(raw, zone)
		if err != nil {
			return nil, shapeErrorf("hourly.time", "index %d: %v", i, err)
		}
		if i > 0 && !t.After(entries[i-1].Time) {
			if !t.Equal(entries[i-1].Time) || !repeatedWallHour(raw, loc) {
				return nil, shapeErrorf("hourly.time", "index %d: %s not after previous entry", i, raw)
			}
		}
		entries[i] = HourlyEntry{
			Time:  t,
			Temp:  Round(h.Temperature[i]),
			Code:  h.WeatherCode[i],
			IsDay: h.IsDay[i],
		}
	}
	return entries, nil
}

// ParseLocalTime parses a source timestamp. Timestamps without an offset
// are read in loc; RFC 3339 timestamps keep their offset and are moved to loc.
func ParseLocalTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(localTimeLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t.In(loc), nil
}

// repeatedWallHour reports whether the wall-clock time s occurs twice in loc.
func repeatedWallHour(s string, loc *time.Location) bool {
	t, err := time.ParseInLocation(localTimeLayout, s, loc)
	if err != nil {
		return false
	}
	for _, d := range []time.Duration{-time.Hour, time.Hour} {
		if t.Add(d).In(loc).Format(localTimeLayout) == s {
			return true
		}
	}
	return false
}

// sourceZone is the fixed offset the source encoded its local timestamps in.
// Parsing in the named zone instead would fold or drop an hour at a DST change.
func sourceZone(p *RawForecastPayload) *time.Location {
	name := p.Timezone
	if name == "" {
		name = "UTC"
	}
	return time.FixedZone(name, p.UTCOffsetSeconds)
}

// payloadLocation resolves the named zone of the location; it is used to read
// the wall clock.
func payloadLocation(p *RawForecastPayload) *time.Location {
	if p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			return loc
		}
	}
	return sourceZone(p)
}

// Round rounds half-way values towards positive infinity.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

func normalizeBearing(deg float64) int {
	b := Round(deg) % 360
	if b < 0 {
		b += 360
	}
	return b
}

func clockString(s string, loc *time.Location) string {
	t, err := ParseLocalTime(s, loc)
	if err != nil {
		return unknownClockString
	}
	return t.Format("15:04")
}

func precipitation(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return formatNumber(*v) + " mm"
}

func degrees(v float64) string {
	return strconv.Itoa(Round(v)) + "°"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
