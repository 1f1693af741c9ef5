package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/api/models"
	"github.com/airwatch/airwatch/internal/api/response"
	"github.com/airwatch/airwatch/internal/observation"
)

// ObservationHandler lists weather and satellite observations.
type ObservationHandler struct {
	service *observation.Service
	log     zerolog.Logger
}

// NewObservationHandler creates a new ObservationHandler.
func NewObservationHandler(service *observation.Service, log zerolog.Logger) *ObservationHandler {
	return &ObservationHandler{service: service, log: log}
}

// Weather handles GET /v1/observations/weather?since=&limit=.
func (h *ObservationHandler) Weather(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	records, err := h.service.Weather(r.Context(), f)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewWeatherResponse(records))
}

// Satellite handles GET /v1/observations/satellite?since=&limit=.
func (h *ObservationHandler) Satellite(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	records, err := h.service.Satellite(r.Context(), f)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewSatelliteResponse(records))
}

// parseFilter reads the optional RFC 3339 since and limit parameters.
func parseFilter(r *http.Request) (observation.Filter, error) {
	var f observation.Filter
	q := r.URL.Query()

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		return f, err
	}
	f.Limit = limit

	if s := strings.TrimSpace(q.Get("since")); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return f, fmt.Errorf("%w: since must be an RFC 3339 timestamp", airquality.ErrInvalidInput)
		}
		f.Since = since
	}
	return f, nil
}
