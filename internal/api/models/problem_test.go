package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch/airwatch/internal/api/models"
)

func TestProblem_Write(t *testing.T) {
	rec := httptest.NewRecorder()

	models.NewInvalidInput("req_123", "lat must be a number",
		models.FieldError{Field: "lat", Message: "must be a number"},
	).WithInstance("/v1/air-quality/current").Write(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req_123", rec.Header().Get("X-Request-Id"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(400), body["status"])
	assert.Equal(t, "invalid_input", body["code"])
	assert.Equal(t, "/v1/air-quality/current", body["instance"])
	assert.Len(t, body["errors"], 1)
}

func TestProblem_Constructors(t *testing.T) {
	tests := []struct {
		name    string
		problem *models.Problem
		status  int
		code    models.ResultCode
	}{
		{"no data", models.NewNoData("t", "d"), http.StatusNotFound, models.CodeNoData},
		{"not found", models.NewNotFound("t", "d"), http.StatusNotFound, models.CodeNotFound},
		{"rate limited", models.NewTooManyRequests("t", "d"), http.StatusTooManyRequests, models.CodeRateLimited},
		{"internal", models.NewInternalError("t", "d"), http.StatusInternalServerError, models.CodeInternal},
		{"store", models.NewStoreUnavailable("t", "d"), http.StatusServiceUnavailable, models.CodeStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.problem.Status)
			assert.Equal(t, tt.code, tt.problem.Code)
			assert.Equal(t, "d", tt.problem.Detail)
		})
	}
}

func TestCoordinate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"number", `{"latitude": 48.8566}`, "48.8566", false},
		{"numeric string", `{"latitude": " 48.8566 "}`, "48.8566", false},
		{"non numeric string", `{"latitude": "invalid"}`, "invalid", false},
		{"null", `{"latitude": null}`, "", false},
		{"missing", `{}`, "", false},
		{"object", `{"latitude": {}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req models.CheckRequest
			err := json.Unmarshal([]byte(tt.input), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Latitude.String())
		})
	}
}
