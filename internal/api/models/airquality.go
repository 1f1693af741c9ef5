package models

import (
	"time"

	"github.com/airwatch/airwatch/internal/airquality"
)

// ClosestReading is the measurement nearest to the query point.
type ClosestReading struct {
	ID         int64                 `json:"id"`
	Timestamp  time.Time             `json:"timestamp"`
	Latitude   float64               `json:"latitude"`
	Longitude  float64               `json:"longitude"`
	AQI        float64               `json:"aqi"`
	Level      airquality.Level      `json:"level"`
	Label      string                `json:"label"`
	DistanceKm float64               `json:"distance_km"`
	Pollutants airquality.Pollutants `json:"pollutants"`
}

// AirQualityResponse is the body of GET /v1/air-quality/current.
type AirQualityResponse struct {
	Status     ResultCode      `json:"status"`
	Mode       airquality.Mode `json:"mode"`
	AverageAQI float64         `json:"average_aqi"`
	Count      int             `json:"count"`
	Closest    ClosestReading  `json:"closest"`
}

// NewAirQualityResponse renders a summary.
func NewAirQualityResponse(s *airquality.Summary) AirQualityResponse {
	m := s.Closest.Measurement
	return AirQualityResponse{
		Status:     CodeOK,
		Mode:       s.Mode,
		AverageAQI: s.AverageAQI,
		Count:      s.Count,
		Closest: ClosestReading{
			ID:         m.ID,
			Timestamp:  m.Timestamp,
			Latitude:   m.Location.Lat,
			Longitude:  m.Location.Lon,
			AQI:        s.Closest.AQI,
			Level:      s.Closest.Level,
			Label:      s.Closest.Level.Label(),
			DistanceKm: s.Closest.DistanceKm,
			Pollutants: m.Pollutants(),
		},
	}
}

// CheckRequest is the body of POST /v1/air-quality/check.
type CheckRequest struct {
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// CheckResponse is the body returned by a point check.
type CheckResponse struct {
	AirQualityResponse
	// Alert is set when the closest reading crossed the alert threshold.
	Alert *AlertView `json:"alert"`
}

// MeasurementsResponse is the body of GET /v1/air-quality/measurements.
type MeasurementsResponse struct {
	Status ResultCode      `json:"status"`
	View   airquality.View `json:"view"`
	Count  int             `json:"count"`
	Items  any             `json:"items"`
}

// NewMeasurementsResponse renders a listing in its selected view.
func NewMeasurementsResponse(l airquality.Listing) MeasurementsResponse {
	count := len(l.Full)
	if l.View == airquality.ViewMinimal {
		count = len(l.Minimal)
	}
	return MeasurementsResponse{
		Status: CodeOK,
		View:   l.View,
		Count:  count,
		Items:  l.Items(),
	}
}
