package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/alert"
	"github.com/airwatch/airwatch/internal/api/models"
	"github.com/airwatch/airwatch/internal/api/response"
)

// AlertHandler lists stored alerts.
type AlertHandler struct {
	service *alert.Service
	log     zerolog.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(service *alert.Service, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{service: service, log: log}
}

// List handles GET /v1/alerts?limit=.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	alerts, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAlertsResponse(alerts))
}
