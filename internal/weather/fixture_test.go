package weather_test

import (
	"time"
	_ "time/tzdata"

	"github.com/skycast/skycast/internal/weather"
)

const fixtureZone = "Asia/Ho_Chi_Minh"

func fixtureLocation() *time.Location {
	loc, err := time.LoadLocation(fixtureZone)
	if err != nil {
		panic(err)
	}
	return loc
}

func ptr(v float64) *float64 { return &v }

// newPayload builds a well-formed payload of days forecast days starting at
// the given local date, with 24 hourly entries per day.
func newPayload(start string, days int) *weather.RawForecastPayload {
	loc := fixtureLocation()
	first, err := time.ParseInLocation(time.DateOnly, start, loc)
	if err != nil {
		panic(err)
	}

	p := &weather.RawForecastPayload{
		Latitude:         10.82,
		Longitude:        106.63,
		Timezone:         fixtureZone,
		UTCOffsetSeconds: 7 * 3600,
		Current: weather.RawCurrent{
			Time:                start + "T05:30",
			Temperature:         24.6,
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

	for d := 0; d < days; d++ {
		day := first.AddDate(0, 0, d)
		date := day.Format(time.DateOnly)
		p.Daily.Time = append(p.Daily.Time, date)
		p.Daily.WeatherCode = append(p.Daily.WeatherCode, 61)
		p.Daily.TemperatureMax = append(p.Daily.TemperatureMax, 29.2+float64(d))
		p.Daily.TemperatureMin = append(p.Daily.TemperatureMin, 22.1+float64(d))
		p.Daily.Sunrise = append(p.Daily.Sunrise, date+"T05:31")
		p.Daily.Sunset = append(p.Daily.Sunset, date+"T18:12")
		p.Daily.UVIndexMax = append(p.Daily.UVIndexMax, ptr(7.25))
		p.Daily.PrecipitationSum = append(p.Daily.PrecipitationSum, ptr(4.1))
		p.Daily.WindSpeedMax = append(p.Daily.WindSpeedMax, 18.6)
		p.Daily.WindDirectionDominant = append(p.Daily.WindDirectionDominant, 225)

		for h := 0; h < 24; h++ {
			ts := day.Add(time.Duration(h) * time.Hour)
			p.Hourly.Time = append(p.Hourly.Time, ts.Format("2006-01-02T15:04"))
			p.Hourly.Temperature = append(p.Hourly.Temperature, 20.4+float64(h)/2)
			p.Hourly.WeatherCode = append(p.Hourly.WeatherCode, 3)
			isDay := 0
			if h >= 6 && h < 18 {
				isDay = 1
			}
			p.Hourly.IsDay = append(p.Hourly.IsDay, isDay)
		}
	}
	return p
}

// fixtureNow is 05:30 local on the first fixture day.
func fixtureNow() time.Time {
	return time.Date(2024, 6, 1, 5, 30, 0, 0, fixtureLocation())
}
