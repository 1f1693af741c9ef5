package airquality

import (
	"fmt"
	"math"
)

// Level is the five-step AQI severity scale.
type Level int

const (
	LevelGood Level = iota
	LevelModerate
	LevelUnhealthy
	LevelVeryUnhealthy
	LevelHazardous
)

type levelInfo struct {
	code       string
	label      string
	lowerBound float64
	upperBound float64
}

// A level covers (lowerBound, upperBound]; Good also includes 0.
// 50 is Good, 50.01 is Moderate.
var levels = [...]levelInfo{
	LevelGood:          {code: "good", label: "Good", lowerBound: 0, upperBound: 50},
	LevelModerate:      {code: "moderate", label: "Moderate", lowerBound: 50, upperBound: 100},
	LevelUnhealthy:     {code: "unhealthy", label: "Unhealthy", lowerBound: 100, upperBound: 200},
	LevelVeryUnhealthy: {code: "very_unhealthy", label: "Very Unhealthy", lowerBound: 200, upperBound: 300},
	LevelHazardous:     {code: "hazardous", label: "Hazardous", lowerBound: 300, upperBound: math.Inf(1)},
}

// Classify maps an AQI value to its Level.
// Negative, NaN and infinite values are rejected with ErrInvalidMeasurement.
func Classify(aqi float64) (Level, error) {
	if math.IsNaN(aqi) || math.IsInf(aqi, 0) || aqi < 0 {
		return 0, fmt.Errorf("%w: aqi %v", ErrInvalidMeasurement, aqi)
	}
	for level := LevelGood; level < LevelHazardous; level++ {
		if aqi <= levels[level].upperBound {
			return level, nil
		}
	}
	return LevelHazardous, nil
}

// Levels returns all levels in ascending severity.
func Levels() []Level {
	return []Level{LevelGood, LevelModerate, LevelUnhealthy, LevelVeryUnhealthy, LevelHazardous}
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= LevelGood && l <= LevelHazardous
}

// Label returns the display label, e.g. "Very Unhealthy".
func (l Level) Label() string {
	if !l.Valid() {
		return "Unknown"
	}
	return levels[l].label
}

// LowerBound returns the exclusive lower bound of the level, which is the
// upper bound of the level below. Good starts at 0 inclusive.
func (l Level) LowerBound() float64 {
	if !l.Valid() {
		return math.NaN()
	}
	return levels[l].lowerBound
}

// UpperBound returns the inclusive upper bound of the level; +Inf for Hazardous.
func (l Level) UpperBound() float64 {
	if !l.Valid() {
		return math.NaN()
	}
	return levels[l].upperBound
}

// String returns the machine code, e.g. "very_unhealthy".
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levels[l].code
}

// MarshalText encodes the level as its machine code.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid aqi level %d", int(l))
	}
	return []byte(levels[l].code), nil
}

// UnmarshalText decodes a machine code produced by MarshalText.
func (l *Level) UnmarshalText(text []byte) error {
	for i, info := range levels {
		if info.code == string(text) {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("unknown aqi level %q", string(text))
}

// LevelFromIndex converts a stored integer level to a Level.
func LevelFromIndex(i int) (Level, bool) {
	l := Level(i)
	return l, l.Valid()
}
