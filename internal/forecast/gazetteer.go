// Package forecast produces short-horizon AQI predictions for named cities
// from the measurements already held in the store.
package forecast

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/airwatch/airwatch/internal/geo"
)

// ErrUnknownCity is returned when a city is not in the gazetteer.
var ErrUnknownCity = errors.New("unknown city")

// City is a named forecast location.
type City struct {
	Name  string
	Point geo.Point
}

// DefaultCities returns the cities monitored out of the box.
func DefaultCities() []City {
	return []City{
		{Name: "Paris", Point: geo.Point{Lat: 48.8566, Lon: 2.3522}},
		{Name: "New York", Point: geo.Point{Lat: 40.7128, Lon: -74.0060}},
		{Name: "London", Point: geo.Point{Lat: 51.5074, Lon: -0.1278}},
		{Name: "Tokyo", Point: geo.Point{Lat: 35.6762, Lon: 139.6503}},
		{Name: "San Francisco", Point: geo.Point{Lat: 37.7749, Lon: -122.4194}},
	}
}

// Gazetteer resolves city names case-insensitively.
type Gazetteer struct {
	cities map[string]City
}

// NewGazetteer creates a gazetteer. Later entries replace earlier ones with
// the same name.
func NewGazetteer(cities ...City) *Gazetteer {
	g := &Gazetteer{cities: make(map[string]City, len(cities))}
	for _, c := range cities {
		g.cities[normalize(c.Name)] = c
	}
	return g
}

// Lookup returns the city registered under name.
func (g *Gazetteer) Lookup(name string) (City, error) {
	c, ok := g.cities[normalize(name)]
	if !ok {
		return City{}, fmt.Errorf("%w: %q", ErrUnknownCity, strings.TrimSpace(name))
	}
	return c, nil
}

// Names returns the display names of all cities, sorted.
func (g *Gazetteer) Names() []string {
	names := make([]string, 0, len(g.cities))
	for _, c := range g.cities {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// ParseCity parses a "name,lat,lon" entry.
func ParseCity(s string) (City, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return City{}, fmt.Errorf("invalid city format %q: want name,lat,lon", s)
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return City{}, fmt.Errorf("invalid city format %q: empty name", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return City{}, fmt.Errorf("invalid city latitude %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return City{}, fmt.Errorf("invalid city longitude %q: %w", s, err)
	}

	p, err := geo.NewPoint(lat, lon)
	if err != nil {
		return City{}, fmt.Errorf("invalid city %q: %w", name, err)
	}
	return City{Name: name, Point: p}, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
