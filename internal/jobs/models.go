// Package jobs submits named jobs for asynchronous execution and reports
// their status by opaque identifier.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Job errors.
var (
	ErrJobNotFound   = errors.New("job not found")
	ErrUnknownJob    = errors.New("unknown job")
	ErrInvalidParams = errors.New("invalid job parameters")
	ErrQueueFull     = errors.New("job queue is full")
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Statuses returns all job statuses in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusRunning, StatusSuccess, StatusFailure}
}

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Job is the status record of a submitted job.
type Job struct {
	ID          string          `json:"job_id"`
	Name        string          `json:"name"`
	Status      Status          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Message is the wire form of a job handed to a dispatcher.
type Message struct {
	JobID       string          `json:"job_id"`
	Name        string          `json:"name"`
	Params      json.RawMessage `json:"params,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// Handler executes a job and returns a JSON-encodable result.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Definition describes a runnable job.
type Definition struct {
	// Validate checks params at submission time. Optional.
	Validate func(params json.RawMessage) error

	// Handle runs the job.
	Handle Handler
}
