package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/api/models"
	"github.com/airwatch/airwatch/internal/api/response"
	"github.com/airwatch/airwatch/internal/forecast"
)

// PredictionHandler lists recorded forecasts.
type PredictionHandler struct {
	forecaster *forecast.Forecaster
	log        zerolog.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(forecaster *forecast.Forecaster, log zerolog.Logger) *PredictionHandler {
	return &PredictionHandler{forecaster: forecaster, log: log}
}

// History handles GET /v1/predictions?city=&model_version=&limit=.
func (h *PredictionHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	predictions, err := h.forecaster.History(r.Context(), forecast.HistoryQuery{
		City:         q.Get("city"),
		ModelVersion: q.Get("model_version"),
		Limit:        limit,
	})
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewPredictionsResponse(predictions))
}
