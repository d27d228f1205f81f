// Package gauge projects weather values onto the positions and angles of
// the view's visual gauges. Every function is pure; callers pass the clock.
package gauge

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Pressure gauge domain in hPa and its arc in degrees.
const (
	PressureMin = 960.0
	PressureMax = 1060.0
	ArcStart    = -135.0
	ArcSweep    = 270.0
)

// Fixed local window that the sky orb treats as daytime, in minutes since midnight.
const (
	dayStartMinutes = 6 * 60
	dayEndMinutes   = 18 * 60
	minutesPerDay   = 24 * 60
)

// UVHighThreshold is the UV index above which exposure is reported as high.
const UVHighThreshold = 5.0

// UV level labels.
const (
	UVLevelLow  = "Low"
	UVLevelHigh = "High"
)

var compassRose = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Point is a position in a 0-100 percentage coordinate space, y growing down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DotPosition returns where current sits between low and high as a percentage.
// Values outside the range saturate at 0 or 100. A degenerate range yields 0.
func DotPosition(low, high, current float64) float64 {
	if high <= low {
		return 0
	}
	if current < low {
		return 0
	}
	if current > high {
		return 100
	}
	return (current - low) / (high - low) * 100
}

// PressureAngle maps a pressure in hPa onto the gauge arc, -135 to 135 degrees.
func PressureAngle(pressure float64) float64 {
	p := clamp(pressure, PressureMin, PressureMax)
	return ArcStart + (p-PressureMin)/(PressureMax-PressureMin)*ArcSweep
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// SunArcProgress returns how far the sun has travelled between sunrise and
// sunset, from 0 to 1. now is read as a wall clock in its own zone.
// Unparseable or inverted times yield 0.
func SunArcProgress(sunrise, sunset string, now time.Time) float64 {
	rise, ok := ParseClock(sunrise)
	if !ok {
		return 0
	}
	set, ok := ParseClock(sunset)
	if !ok || set <= rise {
		return 0
	}

	m := minutesOfDay(now)
	switch {
	case m < float64(rise):
		return 0
	case m > float64(set):
		return 1
	}
	return (m - float64(rise)) / float64(set-rise)
}

// SunArcPoint places the sun marker on the arc for a progress value.
func SunArcPoint(progress float64) Point {
	p := clamp(progress, 0, 1)
	return Point{
		X: p * 100,
		Y: 50 - math.Sin(p*math.Pi)*40,
	}
}

// SkyOrbPosition places the ambient sun or moon. Daytime runs 06:00-18:00.
// The moon crosses the whole sky between 18:00 and midnight, then restarts
// from the middle and reaches the far side at 06:00. Night readings outside
// those windows, 18:00 itself included, pin the moon to the far side.
func SkyOrbPosition(isDay bool, now time.Time) Point {
	m := minutesOfDay(now)

	var p float64
	switch {
	case isDay:
		p = (m - dayStartMinutes) / (dayEndMinutes - dayStartMinutes)
	case m > dayEndMinutes:
		p = (m - dayEndMinutes) / (minutesPerDay - dayEndMinutes)
	default:
		p = 0.5 + m/dayStartMinutes*0.5
	}
	p = clamp(p, 0, 1)

	return Point{
		X: p * 100,
		Y: 80 - math.Sin(p*math.Pi)*70,
	}
}

// Sky lists the ambient background layers to draw.
type Sky struct {
	Orb    bool `json:"orb"`
	Clouds bool `json:"clouds"`
	Rain   bool `json:"rain"`
	Stars  bool `json:"stars"`
}

// SkyLayers picks the background layers for a weather code.
func SkyLayers(code int, isDay bool) Sky {
	raining := isRaining(code)
	cloudy := isCloudy(code)
	return Sky{
		Orb:    !raining && !cloudy,
		Clouds: raining || cloudy,
		Rain:   raining,
		Stars:  !isDay,
	}
}

func isRaining(code int) bool {
	return code >= 50 && code <= 99
}

func isCloudy(code int) bool {
	return code == 2 || code == 3 || code == 45
}

// WindDirectionLabel returns the 8-point compass abbreviation for a bearing.
func WindDirectionLabel(degrees float64) string {
	i := int(math.Floor(degrees/45+0.5)) % len(compassRose)
	if i < 0 {
		i += len(compassRose)
	}
	return compassRose[i]
}

// UVBarPosition returns the UV bar fill as a percentage; an index of 10 fills it.
func UVBarPosition(uv float64) float64 {
	return clamp(uv*10, 0, 100)
}

// UVLevel classifies a UV index.
func UVLevel(uv float64) string {
	if uv > UVHighThreshold {
		return UVLevelHigh
	}
	return UVLevelLow
}

func minutesOfDay(t time.Time) float64 {
	return float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
