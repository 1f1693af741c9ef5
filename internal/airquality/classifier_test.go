package airquality_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch/airwatch/internal/airquality"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		aqi   float64
		level airquality.Level
		label string
	}{
		{0, airquality.LevelGood, "Good"},
		{50, airquality.LevelGood, "Good"},
		{50.01, airquality.LevelModerate, "Moderate"},
		{65.5, airquality.LevelModerate, "Moderate"},
		{100, airquality.LevelModerate, "Moderate"},
		{100.5, airquality.LevelUnhealthy, "Unhealthy"},
		{145.7, airquality.LevelUnhealthy, "Unhealthy"},
		{200, airquality.LevelUnhealthy, "Unhealthy"},
		{250, airquality.LevelVeryUnhealthy, "Very Unhealthy"},
		{300, airquality.LevelVeryUnhealthy, "Very Unhealthy"},
		{301, airquality.LevelHazardous, "Hazardous"},
		{1e6, airquality.LevelHazardous, "Hazardous"},
	}

	for _, tt := range tests {
		level, err := airquality.Classify(tt.aqi)
		require.NoError(t, err, "aqi %v", tt.aqi)
		assert.Equal(t, tt.level, level, "aqi %v", tt.aqi)
		assert.Equal(t, tt.label, level.Label(), "aqi %v", tt.aqi)
	}
}

func TestClassify_Invalid(t *testing.T) {
	for _, aqi := range []float64{-1, -0.001, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := airquality.Classify(aqi)
		assert.ErrorIs(t, err, airquality.ErrInvalidMeasurement, "aqi %v", aqi)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := airquality.LevelGood
	for aqi := 0.0; aqi <= 600; aqi += 0.25 {
		level, err := airquality.Classify(aqi)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, int(level), int(prev), "aqi %v", aqi)
		prev = level
	}
}

func TestLevel_TextRoundTrip(t *testing.T) {
	for _, level := range airquality.Levels() {
		data, err := json.Marshal(level)
		require.NoError(t, err)

		var decoded airquality.Level
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, level, decoded)
	}

	assert.Equal(t, `"very_unhealthy"`, mustJSON(t, airquality.LevelVeryUnhealthy))

	var l airquality.Level
	assert.Error(t, json.Unmarshal([]byte(`"purple"`), &l))
}

func TestLevel_Bounds(t *testing.T) {
	assert.Equal(t, 0.0, airquality.LevelGood.LowerBound())
	assert.Equal(t, 100.0, airquality.LevelUnhealthy.LowerBound())
	assert.Equal(t, 300.0, airquality.LevelHazardous.LowerBound())
	assert.True(t, math.IsInf(airquality.LevelHazardous.UpperBound(), 1))
	assert.True(t, math.IsNaN(airquality.Level(9).LowerBound()))
	assert.True(t, math.IsNaN(airquality.Level(9).UpperBound()))
	assert.Equal(t, "Unknown", airquality.Level(-1).Label())
}

func TestLevel_BoundsAgreeWithClassify(t *testing.T) {
	levels := airquality.Levels()
	for i, level := range levels {
		got, err := airquality.Classify(level.LowerBound() + 0.01)
		require.NoError(t, err)
		assert.Equal(t, level, got, "just above the lower bound of %s", level)

		if i > 0 {
			assert.Equal(t, levels[i-1].UpperBound(), level.LowerBound())
			got, err = airquality.Classify(level.LowerBound())
			require.NoError(t, err)
			assert.Equal(t, levels[i-1], got, "the lower bound of %s belongs to the level below", level)
		}
		if upper := level.UpperBound(); !math.IsInf(upper, 1) {
			got, err = airquality.Classify(upper)
			require.NoError(t, err)
			assert.Equal(t, level, got, "upper bound of %s is inclusive", level)
		}
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
