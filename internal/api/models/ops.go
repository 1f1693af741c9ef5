package models

import "time"

// Health is the body of the liveness and readiness checks.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    time.Time      `json:"time"`
	Version string         `json:"version,omitempty"`
	Checks  []CheckResult  `json:"checks,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// CheckResult is the outcome of probing one dependency.
type CheckResult struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Latency string       `json:"latency"`
	Error   string       `json:"error,omitempty"`
}

// SystemStatus reports check results together with circuit breaker state.
type SystemStatus struct {
	Status       HealthStatus       `json:"status"`
	Time         time.Time          `json:"time"`
	Subsystems   []CheckResult      `json:"subsystems"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// DependencyStatus is the circuit breaker view of a guarded dependency.
type DependencyStatus struct {
	Name                string       `json:"name"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuit_state"`
	ConsecutiveFailures uint32       `json:"consecutive_failures"`
	LastSuccessAt       *time.Time   `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time   `json:"last_failure_at,omitempty"`
	LastError           string       `json:"last_error,omitempty"`
}
