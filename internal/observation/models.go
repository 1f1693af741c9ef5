// Package observation lists the weather and satellite records that external
// producers store next to the air quality measurements.
package observation

import (
	"time"

	"github.com/airwatch/airwatch/internal/geo"
)

// Weather is a local weather observation.
type Weather struct {
	ID          int64
	Timestamp   time.Time
	Location    geo.Point
	Temperature float64
	Humidity    float64
	WindSpeed   float64
	Pressure    float64
}

// Satellite is a satellite pollutant column reading. Pollutants the
// instrument did not resolve are nil.
type Satellite struct {
	ID          int64
	Timestamp   time.Time
	Location    geo.Point
	NO2         *float64
	O3          *float64
	SO2         *float64
	CO          *float64
	SourceURL   string
	DataQuality float64
}

// Filter selects the newest records.
type Filter struct {
	// Since keeps records observed at or after it; zero keeps all.
	Since time.Time
	Limit int
}

func (f Filter) keeps(ts time.Time) bool {
	return f.Since.IsZero() || !ts.Before(f.Since)
}
