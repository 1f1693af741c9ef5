package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/api/middleware"
	"github.com/airwatch/airwatch/internal/api/models"
	"github.com/airwatch/airwatch/internal/api/response"
	"github.com/airwatch/airwatch/internal/jobs"
)

// serve runs fn behind the RequestID middleware.
func serve(t *testing.T, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/test", http.NoBody)
	middleware.RequestID(fn).ServeHTTP(rec, req)
	return rec
}

func TestJSON(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAccepted(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
		response.Accepted(w, r, "/v1/jobs/abc", map[string]string{"job_id": "abc"})
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "/v1/jobs/abc", rec.Header().Get("Location"))
}

func TestError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   models.ResultCode
	}{
		{"invalid input", fmt.Errorf("%w: lat must be a number", airquality.ErrInvalidInput), http.StatusBadRequest, models.CodeInvalidInput},
		{"unknown job", fmt.Errorf("%w: nope", jobs.ErrUnknownJob), http.StatusBadRequest, models.CodeInvalidInput},
		{"no data", airquality.ErrNoDataInRegion, http.StatusNotFound, models.CodeNoData},
		{"job not found", jobs.ErrJobNotFound, http.StatusNotFound, models.CodeNotFound},
		{"store", fmt.Errorf("%w: %w", airquality.ErrStoreUnavailable, errors.New("conn refused")), http.StatusServiceUnavailable, models.CodeStoreUnavailable},
		{"queue", jobs.ErrQueueFull, http.StatusServiceUnavailable, models.CodeStoreUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError, models.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
				response.Error(w, r, zerolog.New(io.Discard), tt.err)
			})

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			var p models.Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.code, p.Code)
			assert.Equal(t, "/v1/test", p.Instance)
			assert.Equal(t, rec.Header().Get("X-Request-Id"), p.TraceID)
		})
	}
}

func TestError_HidesInternalDetail(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, zerolog.New(io.Discard), errors.New("password=hunter2"))
	})

	assert.NotContains(t, rec.Body.String(), "hunter2")
}
