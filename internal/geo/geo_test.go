package geo_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch/airwatch/internal/geo"
)

var (
	paris   = geo.Point{Lat: 48.8566, Lon: 2.3522}
	london  = geo.Point{Lat: 51.5074, Lon: -0.1278}
	newYork = geo.Point{Lat: 40.7128, Lon: -74.0060}
)

func TestNewPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"paris", 48.8566, 2.3522, false},
		{"north pole", 90, 0, false},
		{"antimeridian", 0, -180, false},
		{"latitude too high", 90.0001, 0, true},
		{"longitude too low", 0, -180.5, true},
		{"nan latitude", math.NaN(), 0, true},
		{"infinite longitude", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := geo.NewPoint(tt.lat, tt.lon)
			if tt.wantErr {
				assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, p.Lat)
			assert.Equal(t, tt.lon, p.Lon)
		})
	}
}

func TestDistanceKm(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, geo.DistanceKm(paris, paris))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, geo.DistanceKm(paris, london), geo.DistanceKm(london, paris), 1e-9)
		assert.InDelta(t, geo.DistanceKm(paris, newYork), geo.DistanceKm(newYork, paris), 1e-9)
	})

	t.Run("paris to london", func(t *testing.T) {
		assert.InDelta(t, 343.5, geo.DistanceKm(paris, london), 1.0)
	})

	t.Run("antipodal points stay finite", func(t *testing.T) {
		d := geo.DistanceKm(geo.Point{Lat: 0, Lon: 0}, geo.Point{Lat: 0, Lon: 180})
		assert.InDelta(t, math.Pi*geo.EarthRadiusKm, d, 1e-6)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 65.5, geo.Round2(65.5))
	assert.Equal(t, 1.23, geo.Round2(1.234))
	assert.Equal(t, 1.24, geo.Round2(1.235000001))
	assert.Equal(t, 0.0, geo.Round2(0.004))
}

func TestNearest(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty input", func(t *testing.T) {
		ranked := geo.Nearest[string](nil, paris, 10)
		assert.NotNil(t, ranked)
		assert.Empty(t, ranked)
	})

	t.Run("sorted by distance", func(t *testing.T) {
		candidates := []geo.Candidate[string]{
			{ID: 1, Item: "new york", Location: newYork, ObservedAt: now},
			{ID: 2, Item: "paris", Location: paris, ObservedAt: now},
			{ID: 3, Item: "london", Location: london, ObservedAt: now},
		}

		ranked := geo.Nearest(candidates, paris, 0)
		require.Len(t, ranked, 3)
		assert.Equal(t, "paris", ranked[0].Item)
		assert.Equal(t, "london", ranked[1].Item)
		assert.Equal(t, "new york", ranked[2].Item)

		for i := 1; i < len(ranked); i++ {
			assert.LessOrEqual(t, ranked[i-1].DistanceKm, ranked[i].DistanceKm)
		}
	})

	t.Run("radius filter", func(t *testing.T) {
		candidates := []geo.Candidate[string]{
			{ID: 1, Item: "paris", Location: paris, ObservedAt: now},
			{ID: 2, Item: "london", Location: london, ObservedAt: now},
		}

		ranked := geo.Nearest(candidates, paris, 100)
		require.Len(t, ranked, 1)
		assert.Equal(t, "paris", ranked[0].Item)
	})

	t.Run("ties prefer newer then lower id", func(t *testing.T) {
		candidates := []geo.Candidate[string]{
			{ID: 9, Item: "old", Location: paris, ObservedAt: now.Add(-time.Hour)},
			{ID: 7, Item: "new-b", Location: paris, ObservedAt: now},
			{ID: 3, Item: "new-a", Location: paris, ObservedAt: now},
		}

		ranked := geo.Nearest(candidates, paris, 10)
		require.Len(t, ranked, 3)
		assert.Equal(t, []string{"new-a", "new-b", "old"},
			[]string{ranked[0].Item, ranked[1].Item, ranked[2].Item})
	})
}
