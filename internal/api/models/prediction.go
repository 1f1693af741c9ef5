package models

import "github.com/airwatch/airwatch/internal/forecast"

// PredictionsResponse is the body of GET /v1/predictions.
type PredictionsResponse struct {
	Status ResultCode            `json:"status"`
	Count  int                   `json:"count"`
	Items  []forecast.Prediction `json:"items"`
}

// NewPredictionsResponse renders recorded predictions, newest first as given.
func NewPredictionsResponse(predictions []*forecast.Prediction) PredictionsResponse {
	items := make([]forecast.Prediction, 0, len(predictions))
	for _, p := range predictions {
		items = append(items, *p)
	}
	return PredictionsResponse{Status: CodeOK, Count: len(items), Items: items}
}
