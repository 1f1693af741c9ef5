package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/airwatch/airwatch/internal/api/models"
	"github.com/airwatch/airwatch/internal/api/response"
	"github.com/airwatch/airwatch/internal/health"
	"github.com/airwatch/airwatch/internal/resilience"
)

// OpsConfig holds configuration for the OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	Checks    []health.Check
	// Registry reports circuit breaker state. Optional.
	Registry *resilience.Registry
	Clock    clockwork.Clock
	// CheckTimeout bounds each check (default: 2 seconds).
	CheckTimeout time.Duration
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version      string
	buildTime    string
	checks       []health.Check
	registry     *resilience.Registry
	clock        clockwork.Clock
	checkTimeout time.Duration
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &OpsHandler{
		version:      cfg.Version,
		buildTime:    cfg.BuildTime,
		checks:       cfg.Checks,
		registry:     cfg.Registry,
		clock:        clock,
		checkTimeout: cfg.CheckTimeout,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness only.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:  models.HealthStatusOK,
		Time:    h.clock.Now().UTC(),
		Version: h.version,
		Details: map[string]any{"buildTime": h.buildTime},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It answers 503 when any check
// fails.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	results, ok := h.runChecks(r.Context())

	status, code := models.HealthStatusOK, http.StatusOK
	if !ok {
		status, code = models.HealthStatusFail, http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, models.Health{
		Status:  status,
		Time:    h.clock.Now().UTC(),
		Version: h.version,
		Checks:  results,
	})
}

// SystemStatus handles GET /v1/ops/status. The body always comes with 200;
// the overall status is FAIL when a check fails and DEGRADED when a circuit
// breaker is not closed.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	results, ok := h.runChecks(r.Context())

	deps := []models.DependencyStatus{}
	degraded := false
	if h.registry != nil {
		for _, dh := range h.registry.AllHealth() {
			ds := models.DependencyStatus{
				Name:                dh.Name,
				Status:              models.HealthStatusOK,
				CircuitState:        dh.CircuitState.String(),
				ConsecutiveFailures: dh.Counts.ConsecutiveFailures,
				LastSuccessAt:       dh.LastSuccessAt,
				LastFailureAt:       dh.LastFailureAt,
				LastError:           dh.LastError,
			}
			switch {
			case dh.IsUnhealthy():
				ds.Status = models.HealthStatusFail
				degraded = true
			case dh.IsDegraded():
				ds.Status = models.HealthStatusDegraded
				degraded = true
			}
			deps = append(deps, ds)
		}
	}

	status := models.HealthStatusOK
	switch {
	case !ok:
		status = models.HealthStatusFail
	case degraded:
		status = models.HealthStatusDegraded
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:       status,
		Time:         h.clock.Now().UTC(),
		Subsystems:   results,
		Dependencies: deps,
	})
}

// runChecks pings every dependency and reports whether all passed.
func (h *OpsHandler) runChecks(ctx context.Context) ([]models.CheckResult, bool) {
	results, ok := health.Run(ctx, h.checks, h.checkTimeout)

	out := make([]models.CheckResult, 0, len(results))
	for _, res := range results {
		cr := models.CheckResult{
			Name:    res.Name,
			Status:  models.HealthStatusOK,
			Latency: res.Latency.Round(time.Microsecond).String(),
		}
		if !res.OK() {
			cr.Status = models.HealthStatusFail
			cr.Error = res.Err.Error()
		}
		out = append(out, cr)
	}
	return out, ok
}
