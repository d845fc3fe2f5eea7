package weather_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripplanner/internal/weather"
)

func mustRange(t *testing.T, start, end string) weather.DateRange {
	t.Helper()
	r, err := weather.ParseDateRange(start, end)
	require.NoError(t, err)
	return r
}

func TestNormalizeRange_SwapsInverted(t *testing.T) {
	r := mustRange(t, "2025-06-10", "2025-06-01")

	got := weather.NormalizeRange(&r, time.Now())
	assert.Equal(t, "2025-06-01..2025-06-10", got.String())
}

func TestNormalizeRange_TruncatesAtStart(t *testing.T) {
	r := mustRange(t, "2025-06-01", "2025-06-30")

	got := weather.NormalizeRange(&r, time.Now())
	assert.Equal(t, weather.MaxForecastDays, got.Days())
	assert.Equal(t, "2025-06-01..2025-06-16", got.String())
}

func TestNormalizeRange_InvertedAndLong(t *testing.T) {
	r := mustRange(t, "2025-07-31", "2025-07-01")

	got := weather.NormalizeRange(&r, time.Now())
	assert.Equal(t, "2025-07-01..2025-07-16", got.String())
}

func TestNormalizeRange_Default(t *testing.T) {
	now := time.Date(2025, 3, 10, 22, 15, 0, 0, time.UTC)

	got := weather.NormalizeRange(nil, now)
	assert.Equal(t, "2025-03-10..2025-03-16", got.String())
	assert.Equal(t, weather.DefaultSpanDays, got.Days())
}

func TestDateRange_SingleDay(t *testing.T) {
	r := mustRange(t, "2025-01-01", "2025-01-01")
	assert.Equal(t, 1, r.Days())
	assert.Equal(t, r, r.Clamp(weather.MaxForecastDays))
}

func TestDateRange_Intersect(t *testing.T) {
	r := mustRange(t, "2025-06-01", "2025-06-10")

	got, ok := r.Intersect(mustRange(t, "2025-06-05", "2025-06-20"))
	require.True(t, ok)
	assert.Equal(t, "2025-06-05..2025-06-10", got.String())

	_, ok = r.Intersect(mustRange(t, "2025-07-01", "2025-07-05"))
	assert.False(t, ok)
}

func TestDateRange_JSON(t *testing.T) {
	r := mustRange(t, "2025-06-01", "2025-06-03")

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-06-01","end":"2025-06-03"}`, string(b))

	var back weather.DateRange
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r, back)
}

func TestParseDateRange_Invalid(t *testing.T) {
	_, err := weather.ParseDateRange("2025-13-01", "2025-06-01")
	require.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Clear sky", weather.Describe(0).Description)
	assert.Equal(t, "thunderstorm-hail", weather.Describe(99).Key)
	assert.Equal(t, weather.Condition{Description: "Unknown conditions", Key: "unknown", Icon: "❓"}, weather.Describe(42))
}

func TestNearestHumidity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := func(f float64) *float64 { return &f }

	times := []time.Time{now.Add(-2 * time.Hour), now.Add(-time.Hour), now.Add(3 * time.Hour)}
	got, ok := weather.NearestHumidity(now, times, []*float64{v(40), v(55), v(70)})
	require.True(t, ok)
	assert.Equal(t, 55.0, got)
}

func TestNearestHumidity_TieKeepsEarliest(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	v := func(f float64) *float64 { return &f }

	times := []time.Time{now.Add(-30 * time.Minute), now.Add(30 * time.Minute)}
	got, ok := weather.NearestHumidity(now, times, []*float64{v(60), v(80)})
	require.True(t, ok)
	assert.Equal(t, 60.0, got)
}

func TestNearestHumidity_SkipsNil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := func(f float64) *float64 { return &f }

	times := []time.Time{now, now.Add(2 * time.Hour)}
	got, ok := weather.NearestHumidity(now, times, []*float64{nil, v(80)})
	require.True(t, ok)
	assert.Equal(t, 80.0, got)

	_, ok = weather.NearestHumidity(now, nil, nil)
	assert.False(t, ok)
}

func TestCalendarDay_KeepsLocalDate(t *testing.T) {
	warsaw := time.FixedZone("CEST", 2*60*60)
	late := time.Date(2025, 7, 1, 23, 45, 0, 0, warsaw)

	got := weather.CalendarDay(late)

	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), got)

	day := weather.Day{Date: got.Format(weather.DateLayout)}
	assert.Equal(t, "2025-07-01", day.Date)
}

func TestNewDateRange_DropsTimeOfDay(t *testing.T) {
	r := weather.NewDateRange(
		time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 3, 6, 0, 0, 0, time.UTC),
	)

	assert.Equal(t, "2025-07-01..2025-07-03", r.String())
	assert.Equal(t, 3, r.Days())
}
