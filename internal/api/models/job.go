package models

import (
	"encoding/json"

	"github.com/airwatch/airwatch/internal/jobs"
)

// SubmitJobRequest is the body of POST /v1/jobs.
type SubmitJobRequest struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params,omitempty"`
}

// PredictionRequest is the body of POST /v1/predictions.
type PredictionRequest struct {
	City string `json:"city"`
}

// JobAccepted is returned with 202 when a job is queued.
type JobAccepted struct {
	JobID    string      `json:"job_id"`
	Name     string      `json:"name"`
	Status   jobs.Status `json:"status"`
	Location string      `json:"location"`
}

// JobResponse is the body of GET /v1/jobs/{jobId}. Status is the job's
// lifecycle state.
type JobResponse = jobs.Job
