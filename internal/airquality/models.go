// Package airquality resolves nearest air-quality measurements, aggregates
// them into a summary and classifies AQI values into severity levels.
package airquality

import (
	"errors"
	"time"

	"github.com/airwatch/airwatch/internal/geo"
)

// Query errors.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoDataInRegion     = errors.New("no air quality data in region")
	ErrNotFound           = errors.New("no measurements available")
	ErrInvalidMeasurement = errors.New("invalid measurement")
	ErrStoreUnavailable   = errors.New("measurement store unavailable")
)

// Pollutant names a trace gas or particulate reported with a measurement.
type Pollutant string

const (
	PollutantPM25 Pollutant = "pm25"
	PollutantNO2  Pollutant = "no2"
	PollutantO3   Pollutant = "o3"
	PollutantSO2  Pollutant = "so2"
	PollutantCO   Pollutant = "co"
)

// Measurement is a single geolocated air-quality observation.
// Any pollutant value may be absent.
type Measurement struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Location  geo.Point `json:"location"`
	AQI       *float64  `json:"aqi,omitempty"`
	PM25      *float64  `json:"pm25,omitempty"`
	NO2       *float64  `json:"no2,omitempty"`
	O3        *float64  `json:"o3,omitempty"`
	SO2       *float64  `json:"so2,omitempty"`
	CO        *float64  `json:"co,omitempty"`

	// StoredLevel is the level persisted by the producer. It is informational
	// only; queries always derive the level from AQI.
	StoredLevel *Level `json:"stored_level,omitempty"`
}

// Pollutants is the subset of pollutant values reported in query results.
type Pollutants struct {
	PM25 *float64 `json:"pm25"`
	NO2  *float64 `json:"no2"`
	O3   *float64 `json:"o3"`
}

// Pollutants returns the reported pollutant subset of m.
func (m Measurement) Pollutants() Pollutants {
	return Pollutants{PM25: m.PM25, NO2: m.NO2, O3: m.O3}
}

// Mode describes how a summary was produced.
type Mode string

const (
	// ModeNearest ranks measurements by distance from a query point.
	ModeNearest Mode = "nearest"
	// ModeRecent uses the newest measurements with no location filter.
	ModeRecent Mode = "recent"
)

// Reading is the closest measurement of a summary with its classification.
type Reading struct {
	Measurement Measurement `json:"measurement"`
	AQI         float64     `json:"aqi"`
	Level       Level       `json:"level"`
	DistanceKm  float64     `json:"distance_km"`
}

// Summary is the aggregated result of a nearest or recent query.
type Summary struct {
	Mode       Mode    `json:"mode"`
	AverageAQI float64 `json:"average_aqi"`
	Count      int     `json:"count"`
	Closest    Reading `json:"closest"`
}

// View selects how much of a measurement is returned in listings.
type View string

const (
	ViewFull    View = "full"
	ViewMinimal View = "minimal"
)

// ParseView maps a view name to a View, defaulting to ViewFull when empty.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewFull:
		return ViewFull, nil
	case ViewMinimal:
		return ViewMinimal, nil
	default:
		return "", ErrInvalidInput
	}
}

// FullView is the complete listing representation of a measurement.
type FullView struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	AQI       *float64  `json:"aqi"`
	Level     *string   `json:"aqi_level"`
	PM25      *float64  `json:"pm25"`
	NO2       *float64  `json:"no2"`
	O3        *float64  `json:"o3"`
	SO2       *float64  `json:"so2"`
	CO        *float64  `json:"co"`
}

// MinimalView carries only identity, time and AQI.
type MinimalView struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	AQI       *float64  `json:"aqi"`
}

// Listing holds a page of measurements in exactly one of the two views.
type Listing struct {
	View    View          `json:"view"`
	Full    []FullView    `json:"-"`
	Minimal []MinimalView `json:"-"`
}

// Items returns the populated view slice for encoding.
func (l Listing) Items() any {
	if l.View == ViewMinimal {
		return l.Minimal
	}
	return l.Full
}

// NewListing renders measurements in the requested view. The level in a full
// view is derived from AQI; records whose AQI cannot be classified report none.
func NewListing(view View, measurements []Measurement) Listing {
	l := Listing{View: view}
	if view == ViewMinimal {
		l.Minimal = make([]MinimalView, 0, len(measurements))
		for _, m := range measurements {
			l.Minimal = append(l.Minimal, MinimalView{ID: m.ID, Timestamp: m.Timestamp, AQI: m.AQI})
		}
		return l
	}

	l.Full = make([]FullView, 0, len(measurements))
	for _, m := range measurements {
		fv := FullView{
			ID:        m.ID,
			Timestamp: m.Timestamp,
			Latitude:  m.Location.Lat,
			Longitude: m.Location.Lon,
			AQI:       m.AQI,
			PM25:      m.PM25,
			NO2:       m.NO2,
			O3:        m.O3,
			SO2:       m.SO2,
			CO:        m.CO,
		}
		if m.AQI != nil {
			if level, err := Classify(*m.AQI); err == nil {
				label := level.Label()
				fv.Level = &label
			}
		}
		l.Full = append(l.Full, fv)
	}
	return l
}
