package alert

import (
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/airwatch/airwatch/internal/airquality"
)

// Default thresholds.
const (
	DefaultThreshold      = 100.0
	DefaultHazardousAbove = 150.0
)

// EmitterConfig holds configuration for the Emitter.
type EmitterConfig struct {
	// Threshold is the AQI an alert must exceed (default: 100).
	Threshold float64

	// HazardousAbove is the AQI above which alerts are hazardous (default: 150).
	HazardousAbove float64

	// Clock stamps created alerts. Defaults to the real clock.
	Clock clockwork.Clock
}

// Emitter turns classified measurements into alerts. It has no side effects.
type Emitter struct {
	threshold      float64
	hazardousAbove float64
	clock          clockwork.Clock
}

// NewEmitter creates a new alert emitter.
func NewEmitter(cfg EmitterConfig) *Emitter {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	hazardous := cfg.HazardousAbove
	if hazardous == 0 {
		hazardous = DefaultHazardousAbove
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Emitter{threshold: threshold, hazardousAbove: hazardous, clock: clock}
}

// Evaluate returns an alert for m when its AQI exceeds the threshold, and nil
// otherwise. Measurements without an AQI never alert.
func (e *Emitter) Evaluate(m airquality.Measurement, level airquality.Level) *Alert {
	if m.AQI == nil || *m.AQI <= e.threshold {
		return nil
	}
	aqi := *m.AQI

	severity := SeverityUnhealthy
	if aqi > e.hazardousAbove {
		severity = SeverityHazardous
	}

	return &Alert{
		ID:          uuid.New().String(),
		Measurement: m,
		AQI:         aqi,
		Severity:    severity,
		AQILevel:    level,
		Message:     "Air quality alert: " + level.Label(),
		CreatedAt:   e.clock.Now().UTC(),
	}
}
