package handler

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/alert"
	"github.com/airwatch/airwatch/internal/api/models"
	"github.com/airwatch/airwatch/internal/api/response"
)

// AirQualityHandler handles air quality queries and point checks.
type AirQualityHandler struct {
	service         *airquality.Service
	alerts          *alert.Service
	defaultRadiusKm float64
	log             zerolog.Logger
}

// NewAirQualityHandler creates a new AirQualityHandler. A non-positive
// defaultRadiusKm uses airquality.DefaultRadiusKm.
func NewAirQualityHandler(service *airquality.Service, alerts *alert.Service, defaultRadiusKm float64, log zerolog.Logger) *AirQualityHandler {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = airquality.DefaultRadiusKm
	}
	return &AirQualityHandler{
		service:         service,
		alerts:          alerts,
		defaultRadiusKm: defaultRadiusKm,
		log:             log,
	}
}

// Current handles GET /v1/air-quality/current?lat=&lon=&radius=.
// Without coordinates the newest measurements are summarized.
func (h *AirQualityHandler) Current(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := airquality.ParseQuery(q.Get("lat"), q.Get("lon"), q.Get("radius"), h.defaultRadiusKm)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	summary, err := h.service.QueryNearest(r.Context(), query)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAirQualityResponse(summary))
}

// Check handles POST /v1/air-quality/check.
func (h *AirQualityHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req models.CheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	point, err := airquality.ParsePoint(req.Latitude.String(), req.Longitude.String())
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	result, err := h.alerts.Check(r.Context(), point)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.CheckResponse{
		AirQualityResponse: models.NewAirQualityResponse(result.Summary),
		Alert:              models.NewAlertView(result.Alert),
	})
}

// Measurements handles GET /v1/air-quality/measurements?view=&limit=.
func (h *AirQualityHandler) Measurements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := airquality.ParseView(q.Get("view"))
	if err != nil {
		response.Error(w, r, h.log, fmt.Errorf("%w: view must be full or minimal", err))
		return
	}
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	listing, err := h.service.RecentMeasurements(r.Context(), view, limit)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewMeasurementsResponse(listing))
}
