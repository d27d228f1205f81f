package weather_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/skycast/internal/weather"
)

func normalizedFixture(t *testing.T) *weather.Model {
	t.Helper()
	model, err := weather.Normalize(newPayload("2024-06-01", 8), "HCMC", fixtureNow())
	require.NoError(t, err)
	return model
}

func TestSelectHourlyWindow_Today(t *testing.T) {
	model := normalizedFixture(t)

	window := weather.SelectHourlyWindow(model, 0, fixtureNow())
	require.Len(t, window, weather.TodayWindowHours)

	start := time.Date(2024, 6, 1, 5, 0, 0, 0, fixtureLocation())
	assert.True(t, window[0].Time.Equal(start), "window starts at %s", window[0].Time)
	assert.Equal(t, weather.NowLabel, window[0].Label)

	for i, entry := range window[1:] {
		want := start.Add(time.Duration(i+1) * time.Hour)
		assert.True(t, entry.Time.Equal(want))
		assert.Equal(t, strconv.Itoa(want.Hour()), entry.Label)
	}
	assert.Equal(t, "6", window[len(window)-1].Label)
	assert.Equal(t, "2024-06-02", window[len(window)-1].Date())
}

func TestSelectHourlyWindow_TodayNowInOtherZone(t *testing.T) {
	model := normalizedFixture(t)

	// Same instant as fixtureNow expressed in UTC.
	now := fixtureNow().UTC()
	window := weather.SelectHourlyWindow(model, 0, now)

	require.NotEmpty(t, window)
	assert.Equal(t, 5, window[0].Time.Hour())
}

func TestSelectHourlyWindow_OnTheHour(t *testing.T) {
	model := normalizedFixture(t)

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, fixtureLocation())
	window := weather.SelectHourlyWindow(model, 0, now)

	require.NotEmpty(t, window)
	assert.True(t, window[0].Time.Equal(now))
}

func TestSelectHourlyWindow_TruncatedAtSeriesEnd(t *testing.T) {
	model := normalizedFixture(t)

	now := time.Date(2024, 6, 8, 20, 15, 0, 0, fixtureLocation())
	window := weather.SelectHourlyWindow(model, 0, now)

	require.Len(t, window, 4)
	assert.Equal(t, weather.NowLabel, window[0].Label)
	assert.Equal(t, "23", window[3].Label)
}

func TestSelectHourlyWindow_EmptyAfterSeries(t *testing.T) {
	model := normalizedFixture(t)

	now := time.Date(2024, 6, 9, 0, 10, 0, 0, fixtureLocation())
	window := weather.SelectHourlyWindow(model, 0, now)

	assert.NotNil(t, window)
	assert.Empty(t, window)
}

func TestSelectHourlyWindow_LaterDay(t *testing.T) {
	model := normalizedFixture(t)

	for k := 1; k < len(model.Daily); k++ {
		window := weather.SelectHourlyWindow(model, k, fixtureNow())
		require.Len(t, window, 24, "day %d", k)

		for h, entry := range window {
			assert.Equal(t, model.Daily[k].Date, entry.Date())
			assert.Equal(t, strconv.Itoa(h), entry.Label)
		}
	}
}

func TestSelectHourlyWindow_LaterDayIgnoresNow(t *testing.T) {
	model := normalizedFixture(t)

	late := time.Date(2024, 6, 3, 23, 59, 0, 0, fixtureLocation())
	assert.Equal(t,
		weather.SelectHourlyWindow(model, 3, fixtureNow()),
		weather.SelectHourlyWindow(model, 3, late),
	)
}

func TestSelectHourlyWindow_IndexOutOfRange(t *testing.T) {
	model := normalizedFixture(t)

	for _, idx := range []int{-1, 8, 42} {
		window := weather.SelectHourlyWindow(model, idx, fixtureNow())
		assert.NotNil(t, window, "index %d", idx)
		assert.Empty(t, window, "index %d", idx)
	}
}

func TestSelectHourlyWindow_NilModel(t *testing.T) {
	assert.Empty(t, weather.SelectHourlyWindow(nil, 0, fixtureNow()))
}

func TestSelectHourlyWindow_HalfHourOffsetZone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	payload := newPayload("2024-06-01", 2)
	payload.Timezone = "Asia/Kolkata"
	payload.UTCOffsetSeconds = 5*3600 + 1800

	now := time.Date(2024, 6, 1, 5, 45, 0, 0, kolkata)
	model, err := weather.Normalize(payload, "Kolkata", now)
	require.NoError(t, err)

	window := weather.SelectHourlyWindow(model, 0, now.UTC())
	require.NotEmpty(t, window)
	assert.Equal(t, 5, window[0].Time.Hour())
	assert.Equal(t, 0, window[0].Time.Minute())
}
