package models

import (
	"math"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/alert"
	"github.com/airwatch/airwatch/internal/jobs"
)

// AQILevelInfo describes one AQI level. A level covers AQI above LowerBound
// up to and including UpperBound; Good also includes 0. UpperBound is omitted
// for the open-ended top level.
type AQILevelInfo struct {
	Code       airquality.Level `json:"code"`
	Label      string           `json:"label"`
	LowerBound float64          `json:"lower_bound"`
	UpperBound *float64         `json:"upper_bound,omitempty"`
}

// NewAQILevelInfo describes l.
func NewAQILevelInfo(l airquality.Level) AQILevelInfo {
	info := AQILevelInfo{Code: l, Label: l.Label(), LowerBound: l.LowerBound()}
	if upper := l.UpperBound(); !math.IsInf(upper, 1) {
		info.UpperBound = &upper
	}
	return info
}

// Enums lists the closed value sets used by the API.
type Enums struct {
	AQILevels       []AQILevelInfo         `json:"aqi_levels"`
	AlertSeverities []alert.Severity       `json:"alert_severities"`
	JobStatuses     []jobs.Status          `json:"job_statuses"`
	JobNames        []string               `json:"job_names"`
	Views           []airquality.View      `json:"views"`
	Pollutants      []airquality.Pollutant `json:"pollutants"`
}
