package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skycast/skycast/internal/weather"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		isDay      int
		text       string
		background weather.Background
	}{
		{"clear day", 0, 1, "Clear", weather.BackgroundSunny},
		{"clear night", 0, 0, "Clear night", weather.BackgroundNight},
		{"mainly clear", 1, 1, "Mainly clear", weather.BackgroundCloudy},
		{"overcast", 3, 0, "Overcast", weather.BackgroundCloudy},
		{"fog", 45, 1, "Fog", weather.BackgroundCloudy},
		{"rime fog", 48, 1, "Rime fog", weather.BackgroundCloudy},
		{"drizzle", 53, 1, "Drizzle", weather.BackgroundRain},
		{"heavy rain", 65, 1, "Heavy rain", weather.BackgroundRain},
		{"snow", 73, 1, "Snow", weather.BackgroundRain},
		{"showers", 81, 0, "Rain showers", weather.BackgroundRain},
		{"thunderstorm with hail", 99, 1, "Thunderstorm with hail", weather.BackgroundRain},
		{"unknown high code", 77, 1, weather.UnknownCondition, weather.BackgroundRain},
		{"unknown low code", 10, 1, weather.UnknownCondition, weather.BackgroundCloudy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := weather.Classify(tt.code, tt.isDay)
			assert.Equal(t, tt.text, got.Text)
			assert.Equal(t, tt.background, got.Background)
		})
	}
}

func TestIconFor(t *testing.T) {
	tests := []struct {
		code  int
		isDay int
		want  weather.Icon
	}{
		{0, 1, weather.IconSun},
		{0, 0, weather.IconMoon},
		{2, 1, weather.IconPartlyCloudyDay},
		{1, 0, weather.IconPartlyCloudyNight},
		{3, 1, weather.IconCloud},
		{48, 1, weather.IconFog},
		{63, 1, weather.IconRain},
		{82, 1, weather.IconHeavyRain},
		{75, 0, weather.IconSnow},
		{96, 1, weather.IconThunder},
		{30, 1, weather.IconSun},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, weather.IconFor(tt.code, tt.isDay), "code %d isDay %d", tt.code, tt.isDay)
	}
}
