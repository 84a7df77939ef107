package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		alias    string
		expected Frequency
	}{
		{"", DefaultFrequency},
		{"W", DefaultFrequency},
		{"w-mon", Frequency{Unit: Weekly, Anchor: time.Monday}},
		{"W-SUN", Frequency{Unit: Weekly, Anchor: time.Sunday}},
		{"D", Frequency{Unit: Daily}},
		{"MS", Frequency{Unit: Monthly}},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			f, err := ParseFrequency(tt.alias)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}

	_, err := ParseFrequency("W-XYZ")
	assert.ErrorIs(t, err, ErrUnknownFrequency)
	_, err = ParseFrequency("Q")
	assert.ErrorIs(t, err, ErrUnknownFrequency)
}

func TestFrequencyStringRoundTrip(t *testing.T) {
	for _, alias := range []string{"D", "MS", "W-MON", "W-WED", "W-SUN"} {
		f, err := ParseFrequency(alias)
		require.NoError(t, err)
		assert.Equal(t, alias, f.String())
	}
}

func TestTruncate(t *testing.T) {
	wednesday := time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), DefaultFrequency.Truncate(wednesday))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Frequency{Unit: Weekly, Anchor: time.Sunday}.Truncate(wednesday))
	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), Frequency{Unit: Daily}.Truncate(wednesday))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Frequency{Unit: Monthly}.Truncate(wednesday))

	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, DefaultFrequency.Truncate(monday), "a period start is its own period")
}

func TestZeroFrequencyIsWeekly(t *testing.T) {
	var zero Frequency
	wednesday := time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

	assert.True(t, zero.IsZero())
	assert.False(t, Frequency{Unit: Daily}.IsZero())
	assert.Equal(t, "W-MON", zero.String())
	assert.Equal(t, DefaultFrequency.Truncate(wednesday), zero.Truncate(wednesday))
	assert.Equal(t, DefaultFrequency.Next(wednesday), zero.Next(wednesday))
	assert.Len(t, zero.Periods(wednesday, wednesday.AddDate(0, 0, 14)), 3)
}

func TestNextAndPeriods(t *testing.T) {
	monday := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), DefaultFrequency.Next(monday))
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Frequency{Unit: Monthly}.Add(time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), 2))

	periods := DefaultFrequency.Periods(monday.AddDate(0, 0, 2), monday.AddDate(0, 0, 16))
	assert.Len(t, periods, 3)
	assert.Equal(t, monday, periods[0])
}

func TestResample(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []Point{
		{Time: monday.AddDate(0, 0, 16), Value: 9},
		{Time: monday.AddDate(0, 0, 1), Value: 10},
		{Time: monday.AddDate(0, 0, 3), Value: 20},
		{Time: monday.AddDate(0, 0, 22), Value: 5},
	}

	s := Resample(points, DefaultFrequency)
	require.Equal(t, 4, s.Len())
	assert.Equal(t, 15.0, s.Values[0])
	assert.True(t, math.IsNaN(s.Values[1]), "week without points is undefined")
	assert.Equal(t, 9.0, s.Values[2])
	assert.Equal(t, 5.0, s.Values[3])
	assert.Equal(t, monday, s.Timestamps[0])

	assert.Equal(t, 0, Resample(nil, DefaultFrequency).Len())
}

func TestMeanByTime(t *testing.T) {
	day := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	out := MeanByTime([]Point{
		{Time: day.Add(24 * time.Hour), Value: 3},
		{Time: day, Value: 1},
		{Time: day, Value: 2},
	})

	require.Len(t, out, 2)
	assert.Equal(t, day, out[0].Time)
	assert.Equal(t, 1.5, out[0].Value)
	assert.Equal(t, 3.0, out[1].Value)
}
