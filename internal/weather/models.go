package weather

import (
	"time"
)

// Placeholder values for detail fields the forecast source does not provide.
const (
	NotAvailable       = "N/A"
	DefaultVisibility  = "10 km"
	SeaLevelPressure   = 1013
	AdvicePlaceholder  = "..."
	TodayLabel         = "Today"
	NowLabel           = "Now"
	unknownClockString = "--:--"
)

// Location is a geocoding match for a free-text place query.
type Location struct {
	Name      string
	Country   string
	Latitude  float64
	Longitude float64
	Timezone  string
}

// DisplayName returns "name, country", or just the name when the country is unknown.
func (l Location) DisplayName() string {
	if l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}

// RawForecastPayload is the forecast document as delivered by the source.
// Each block holds parallel arrays that share one index.
type RawForecastPayload struct {
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Timezone         string     `json:"timezone"`
	UTCOffsetSeconds int        `json:"utc_offset_seconds"`
	Current          RawCurrent `json:"current"`
	Hourly           RawHourly  `json:"hourly"`
	Daily            RawDaily   `json:"daily"`
}

// RawCurrent holds the instantaneous reading.
type RawCurrent struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature_2m"`
	RelativeHumidity    float64 `json:"relative_humidity_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	IsDay               int     `json:"is_day"`
	Precipitation       float64 `json:"precipitation"`
	WeatherCode         int     `json:"weather_code"`
	SurfacePressure     float64 `json:"surface_pressure"`
	WindSpeed           float64 `json:"wind_speed_10m"`
	WindDirection       float64 `json:"wind_direction_10m"`
	DewPoint            float64 `json:"dew_point_2m"`
}

// RawHourly holds the hourly series.
type RawHourly struct {
	Time        []string  `json:"time"`
	Temperature []float64 `json:"temperature_2m"`
	WeatherCode []int     `json:"weather_code"`
	IsDay       []int     `json:"is_day"`
}

// RawDaily holds one entry per calendar day, index 0 being today.
// Nullable series use pointers; the source emits null when a value is unknown.
type RawDaily struct {
	Time                  []string   `json:"time"`
	WeatherCode           []int      `json:"weather_code"`
	TemperatureMax        []float64  `json:"temperature_2m_max"`
	TemperatureMin        []float64  `json:"temperature_2m_min"`
	Sunrise               []string   `json:"sunrise"`
	Sunset                []string   `json:"sunset"`
	UVIndexMax            []*float64 `json:"uv_index_max"`
	PrecipitationSum      []*float64 `json:"precipitation_sum"`
	WindSpeedMax          []float64  `json:"wind_speed_10m_max"`
	WindDirectionDominant []float64  `json:"wind_direction_10m_dominant"`
}

// DetailRecord bundles the secondary attributes of one calendar day.
type DetailRecord struct {
	// UVIndex is nil when the source had no value for the day.
	UVIndex       *float64 `json:"uvIndex"`
	Sunrise       string   `json:"sunrise"`
	Sunset        string   `json:"sunset"`
	WindSpeed     int      `json:"windSpeed"`     // km/h
	WindDirection int      `json:"windDirection"` // degrees, 0-359
	Humidity      string   `json:"humidity"`
	FeelsLike     string   `json:"feelsLike"`
	Visibility    string   `json:"visibility"`
	Pressure      int      `json:"pressure"` // hPa
	Precipitation string   `json:"precipitation"`
	DewPoint      string   `json:"dewPoint,omitempty"`
}

// DailyEntry is one forecast day.
type DailyEntry struct {
	Day     string       `json:"day"`
	Date    string       `json:"date"` // YYYY-MM-DD
	Min     int          `json:"min"`
	Max     int          `json:"max"`
	Code    int          `json:"code"`
	Details DetailRecord `json:"details"`
}

// HourlyEntry is one hour of the forecast horizon.
type HourlyEntry struct {
	// Time is in the location's zone.
	Time  time.Time `json:"time"`
	Temp  int       `json:"temp"`
	Code  int       `json:"code"`
	IsDay int       `json:"isDay"`
}

// Date returns the local calendar date of the entry as YYYY-MM-DD.
func (h HourlyEntry) Date() string {
	return h.Time.Format(time.DateOnly)
}

// CurrentSnapshot is the instantaneous view of the location.
type CurrentSnapshot struct {
	Temp          int          `json:"temp"`
	ConditionCode int          `json:"conditionCode"`
	High          int          `json:"high"`
	Low           int          `json:"low"`
	City          string       `json:"city"`
	Description   string       `json:"description"`
	Background    Background   `json:"background"`
	Details       DetailRecord `json:"details"`
	IsDay         int          `json:"isDay"`
	Time          time.Time    `json:"time"`
}

// Model is the root aggregate built from one forecast payload.
// It is read-only after construction except for Advice.
type Model struct {
	Current  CurrentSnapshot `json:"current"`
	Daily    []DailyEntry    `json:"daily"`
	Hourly   []HourlyEntry   `json:"hourly"`
	Advice   string          `json:"advice"`
	Location *time.Location  `json:"-"`
}

// WithAdvice returns a copy of the model with the advisory text replaced.
// Slices are shared with the receiver.
func (m *Model) WithAdvice(advice string) *Model {
	clone := *m
	clone.Advice = advice
	return &clone
}
