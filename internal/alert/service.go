package alert

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/geo"
)

// Listing limits.
const (
	DefaultListLimit = 30
	MaxListLimit     = 100
)

// PointChecker resolves the air quality at a point.
type PointChecker interface {
	CheckPoint(ctx context.Context, p geo.Point) (*airquality.Summary, error)
}

// ServiceConfig holds configuration for the alert service.
type ServiceConfig struct {
	AirQuality PointChecker
	Emitter    *Emitter
	Repository Repository
	// Publisher is optional; alerts are only stored when nil.
	Publisher Publisher
	Logger    zerolog.Logger
}

// Service checks points for alert conditions and lists stored alerts.
type Service struct {
	airQuality PointChecker
	emitter    *Emitter
	repo       Repository
	publisher  Publisher
	logger     zerolog.Logger
}

// NewService creates a new alert service.
func NewService(cfg ServiceConfig) *Service {
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = NewEmitter(EmitterConfig{})
	}
	return &Service{
		airQuality: cfg.AirQuality,
		emitter:    emitter,
		repo:       cfg.Repository,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger,
	}
}

// CheckResult is the outcome of a point check.
type CheckResult struct {
	Summary *airquality.Summary
	// Alert is nil when the closest reading is below the threshold.
	Alert *Alert
}

// Check resolves the closest reading to p and emits an alert when its AQI
// exceeds the threshold. Emitted alerts are stored and then published;
// publish failures are logged and do not fail the check.
func (s *Service) Check(ctx context.Context, p geo.Point) (*CheckResult, error) {
	summary, err := s.airQuality.CheckPoint(ctx, p)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Summary: summary}
	a := s.emitter.Evaluate(summary.Closest.Measurement, summary.Closest.Level)
	if a == nil {
		return result, nil
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save alert: %w", err)
	}
	result.Alert = a

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, a); err != nil {
			s.logger.Error().Err(err).Str("alert_id", a.ID).Msg("failed to publish alert")
		}
	}

	s.logger.Info().
		Str("alert_id", a.ID).
		Str("severity", string(a.Severity)).
		Float64("aqi", a.AQI).
		Msg("alert emitted")

	return result, nil
}

// Recent lists stored alerts newest first. A limit of zero uses DefaultListLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Alert, error) {
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 0 || limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", airquality.ErrInvalidInput, MaxListLimit)
	}

	alerts, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, airquality.StoreError(err)
	}
	return alerts, nil
}
