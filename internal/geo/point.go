// Package geo provides WGS84 point handling and great-circle distance ranking.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// SRID is the spatial reference identifier of every Point (WGS84).
const SRID = 4326

// ErrInvalidCoordinate is returned when a latitude or longitude is out of range or not finite.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point is an immutable WGS84 latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewPoint creates a Point after validating its coordinates.
func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate checks that latitude is within [-90,90] and longitude within [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidCoordinate, p.Lat)
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

// String formats the point as "lat,lon" with six decimals.
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}
