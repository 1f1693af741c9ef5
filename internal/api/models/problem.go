package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error document, extended with the same result code
// that successful air quality responses carry.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Code is the machine-readable result code.
	Code ResultCode `json:"code"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is the request path.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request identifier for debugging.
	TraceID string `json:"traceId"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problem type URIs.
const (
	ProblemTypeValidation      = "https://api.airwatch.dev/problems/invalid-input"
	ProblemTypeNoData          = "https://api.airwatch.dev/problems/no-data"
	ProblemTypeNotFound        = "https://api.airwatch.dev/problems/not-found"
	ProblemTypeTooManyRequests = "https://api.airwatch.dev/problems/too-many-requests"
	ProblemTypeInternal        = "https://api.airwatch.dev/problems/internal-error"
	ProblemTypeUnavailable     = "https://api.airwatch.dev/problems/service-unavailable"
	ProblemTypeTLSRequired     = "https://api.airwatch.dev/problems/tls-required"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, code ResultCode, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		Code:    code,
		TraceID: traceID,
	}
}

// WithDetail adds a detail message to the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance adds the request path to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as application/problem+json.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewInvalidInput creates a 400 problem.
func NewInvalidInput(traceID, detail string, errors ...FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, "Invalid input", http.StatusBadRequest, CodeInvalidInput, traceID)
	p.Detail = detail
	if len(errors) > 0 {
		p.Errors = errors
	}
	return p
}

// NewNoData creates a 404 problem for a region without measurements.
func NewNoData(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNoData, "No data", http.StatusNotFound, CodeNoData, traceID).WithDetail(detail)
}

// NewNotFound creates a 404 problem.
func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, CodeNotFound, traceID).WithDetail(detail)
}

// NewTooManyRequests creates a 429 problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, CodeRateLimited, traceID).
		WithDetail(detail)
}

// NewInternalError creates a 500 problem.
func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, CodeInternal, traceID).
		WithDetail(detail)
}

// NewStoreUnavailable creates a 503 problem for a failing backing store or
// job queue.
func NewStoreUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, CodeStoreUnavailable, traceID).
		WithDetail(detail)
}
