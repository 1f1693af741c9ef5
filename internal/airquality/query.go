package airquality

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/airwatch/airwatch/internal/geo"
)

// DefaultRadiusKm is the search radius used when a query omits one.
const DefaultRadiusKm = 10.0

// Query is a validated nearest-measurement request. A nil Point selects
// global recent mode.
type Query struct {
	Point    *geo.Point
	RadiusKm float64
}

// ParseQuery builds a Query from raw request parameters. Latitude and
// longitude must be given together; an empty radius uses defaultRadiusKm.
// All failures wrap ErrInvalidInput.
func ParseQuery(lat, lon, radius string, defaultRadiusKm float64) (Query, error) {
	lat = strings.TrimSpace(lat)
	lon = strings.TrimSpace(lon)
	radius = strings.TrimSpace(radius)

	q := Query{RadiusKm: defaultRadiusKm}
	if radius != "" {
		r, err := parseFinite(radius)
		if err != nil {
			return Query{}, fmt.Errorf("%w: radius must be a number", ErrInvalidInput)
		}
		q.RadiusKm = r
	}

	switch {
	case lat == "" && lon == "":
		return q, nil
	case lat == "" || lon == "":
		return Query{}, fmt.Errorf("%w: lat and lon must be provided together", ErrInvalidInput)
	}

	p, err := ParsePoint(lat, lon)
	if err != nil {
		return Query{}, err
	}
	q.Point = &p
	return q, nil
}

// ParsePoint parses and range-checks a latitude/longitude pair.
func ParsePoint(lat, lon string) (geo.Point, error) {
	latV, err := parseFinite(strings.TrimSpace(lat))
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: lat must be a number", ErrInvalidInput)
	}
	lonV, err := parseFinite(strings.TrimSpace(lon))
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: lon must be a number", ErrInvalidInput)
	}

	p, err := geo.NewPoint(latV, lonV)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return p, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// validate checks q against the service radius bound.
func (q Query) validate(maxRadiusKm float64) error {
	if math.IsNaN(q.RadiusKm) || q.RadiusKm <= 0 {
		return fmt.Errorf("%w: radius must be greater than zero", ErrInvalidInput)
	}
	if maxRadiusKm > 0 && q.RadiusKm > maxRadiusKm {
		return fmt.Errorf("%w: radius must not exceed %g km", ErrInvalidInput, maxRadiusKm)
	}
	if q.Point != nil {
		if err := q.Point.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return nil
}
