package models

import (
	"time"

	"github.com/airwatch/airwatch/internal/observation"
)

// WeatherView is the API representation of a weather record.
type WeatherView struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Pressure    float64   `json:"pressure"`
}

// SatelliteView is the API representation of a satellite record.
type SatelliteView struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	NO2         *float64  `json:"no2"`
	O3          *float64  `json:"o3"`
	SO2         *float64  `json:"so2"`
	CO          *float64  `json:"co"`
	SourceURL   string    `json:"source_url"`
	DataQuality float64   `json:"data_quality"`
}

// WeatherResponse is the body of GET /v1/observations/weather.
type WeatherResponse struct {
	Status ResultCode    `json:"status"`
	Count  int           `json:"count"`
	Items  []WeatherView `json:"items"`
}

// NewWeatherResponse renders weather records in the order given.
func NewWeatherResponse(records []observation.Weather) WeatherResponse {
	items := make([]WeatherView, 0, len(records))
	for _, w := range records {
		items = append(items, WeatherView{
			ID:          w.ID,
			Timestamp:   w.Timestamp,
			Latitude:    w.Location.Lat,
			Longitude:   w.Location.Lon,
			Temperature: w.Temperature,
			Humidity:    w.Humidity,
			WindSpeed:   w.WindSpeed,
			Pressure:    w.Pressure,
		})
	}
	return WeatherResponse{Status: CodeOK, Count: len(items), Items: items}
}

// SatelliteResponse is the body of GET /v1/observations/satellite.
type SatelliteResponse struct {
	Status ResultCode      `json:"status"`
	Count  int             `json:"count"`
	Items  []SatelliteView `json:"items"`
}

// NewSatelliteResponse renders satellite records in the order given.
func NewSatelliteResponse(records []observation.Satellite) SatelliteResponse {
	items := make([]SatelliteView, 0, len(records))
	for _, s := range records {
		items = append(items, SatelliteView{
			ID:          s.ID,
			Timestamp:   s.Timestamp,
			Latitude:    s.Location.Lat,
			Longitude:   s.Location.Lon,
			NO2:         s.NO2,
			O3:          s.O3,
			SO2:         s.SO2,
			CO:          s.CO,
			SourceURL:   s.SourceURL,
			DataQuality: s.DataQuality,
		})
	}
	return SatelliteResponse{Status: CodeOK, Count: len(items), Items: items}
}
