package models

import (
	"time"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/alert"
)

// AlertView is the API representation of an emitted alert.
type AlertView struct {
	ID            string           `json:"id"`
	MeasurementID int64            `json:"measurement_id"`
	Latitude      float64          `json:"latitude"`
	Longitude     float64          `json:"longitude"`
	AQIValue      float64          `json:"aqi_value"`
	Level         alert.Severity   `json:"level"`
	AQILevel      airquality.Level `json:"aqi_level"`
	Message       string           `json:"message"`
	CreatedAt     time.Time        `json:"created_at"`
	IsRead        bool             `json:"is_read"`
	Username      string           `json:"username"`
}

// NewAlertView renders a. It returns nil for a nil alert.
func NewAlertView(a *alert.Alert) *AlertView {
	if a == nil {
		return nil
	}
	return &AlertView{
		ID:            a.ID,
		MeasurementID: a.Measurement.ID,
		Latitude:      a.Measurement.Location.Lat,
		Longitude:     a.Measurement.Location.Lon,
		AQIValue:      a.AQI,
		Level:         a.Severity,
		AQILevel:      a.AQILevel,
		Message:       a.Message,
		CreatedAt:     a.CreatedAt,
		IsRead:        a.Read,
		Username:      a.Username(),
	}
}

// AlertsResponse is the body of GET /v1/alerts.
type AlertsResponse struct {
	Status ResultCode  `json:"status"`
	Count  int         `json:"count"`
	Items  []AlertView `json:"items"`
}

// NewAlertsResponse renders a list of alerts, newest first as given.
func NewAlertsResponse(alerts []*alert.Alert) AlertsResponse {
	items := make([]AlertView, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, *NewAlertView(a))
	}
	return AlertsResponse{Status: CodeOK, Count: len(items), Items: items}
}
