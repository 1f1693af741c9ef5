package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/api/models"
	"github.com/airwatch/airwatch/internal/api/response"
	"github.com/airwatch/airwatch/internal/forecast"
	"github.com/airwatch/airwatch/internal/jobs"
)

// JobHandler submits jobs and reports their status.
type JobHandler struct {
	gateway *jobs.Gateway
	log     zerolog.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(gateway *jobs.Gateway, log zerolog.Logger) *JobHandler {
	return &JobHandler{gateway: gateway, log: log}
}

// Submit handles POST /v1/jobs.
func (h *JobHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.log, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		response.InvalidInput(w, r, "name is required", models.FieldError{Field: "name", Message: "required"})
		return
	}

	h.submit(w, r, name, req.Params)
}

// SubmitPrediction handles POST /v1/predictions, a shortcut for the
// forecast job.
func (h *JobHandler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	params, err := json.Marshal(forecast.Params{City: req.City})
	if err != nil {
		response.Error(w, r, h.log, fmt.Errorf("%w: %v", airquality.ErrInvalidInput, err))
		return
	}
	h.submit(w, r, forecast.JobName, params)
}

func (h *JobHandler) submit(w http.ResponseWriter, r *http.Request, name string, params json.RawMessage) {
	job, err := h.gateway.Submit(r.Context(), name, params)
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	location := "/v1/jobs/" + job.ID
	response.Accepted(w, r, location, models.JobAccepted{
		JobID:    job.ID,
		Name:     job.Name,
		Status:   job.Status,
		Location: location,
	})
}

// Get handles GET /v1/jobs/{jobId}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.gateway.Status(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		response.Error(w, r, h.log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.JobResponse(*job))
}
