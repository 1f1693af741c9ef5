// Package response writes JSON bodies and maps domain errors to problems.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/api/middleware"
	"github.com/airwatch/airwatch/internal/api/models"
	"github.com/airwatch/airwatch/internal/forecast"
	"github.com/airwatch/airwatch/internal/jobs"
)

// JSON writes data with the given status code and the request ID header.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Accepted writes a 202 response with a Location header.
func Accepted(w http.ResponseWriter, r *http.Request, location string, data any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, r, http.StatusAccepted, data)
}

// Problem writes p for the current request.
func Problem(w http.ResponseWriter, r *http.Request, p *models.Problem) {
	p.Instance = r.URL.Path
	p.Write(w)
}

// InvalidInput writes a 400 problem.
func InvalidInput(w http.ResponseWriter, r *http.Request, detail string, errs ...models.FieldError) {
	Problem(w, r, models.NewInvalidInput(middleware.GetRequestID(r.Context()), detail, errs...))
}

// Error maps err to a problem. Unrecognized errors are logged and reported
// as 500 without exposing their text.
func Error(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	traceID := middleware.GetRequestID(r.Context())

	var p *models.Problem
	switch {
	case errors.Is(err, airquality.ErrInvalidInput),
		errors.Is(err, jobs.ErrUnknownJob),
		errors.Is(err, jobs.ErrInvalidParams):
		p = models.NewInvalidInput(traceID, err.Error())
	case errors.Is(err, airquality.ErrNoDataInRegion),
		errors.Is(err, forecast.ErrNoRecentData):
		p = models.NewNoData(traceID, err.Error())
	case errors.Is(err, jobs.ErrJobNotFound):
		p = models.NewNotFound(traceID, err.Error())
	case errors.Is(err, airquality.ErrStoreUnavailable):
		log.Error().Err(err).Str("request_id", traceID).Msg("store unavailable")
		p = models.NewStoreUnavailable(traceID, airquality.ErrStoreUnavailable.Error())
	case errors.Is(err, jobs.ErrQueueFull):
		log.Error().Err(err).Str("request_id", traceID).Msg("job queue unavailable")
		p = models.NewStoreUnavailable(traceID, jobs.ErrQueueFull.Error())
	default:
		log.Error().Err(err).Str("request_id", traceID).Msg("unhandled error")
		p = models.NewInternalError(traceID, "an unexpected error occurred")
	}
	Problem(w, r, p)
}
