package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// GatewayConfig holds configuration for the Gateway.
type GatewayConfig struct {
	Registry   *Registry
	Dispatcher Dispatcher
	Store      StatusStore
	Clock      clockwork.Clock
	Logger     zerolog.Logger
}

// Gateway accepts job submissions and answers status queries. It shares no
// memory with the executor; the dispatcher and status store are the only
// channels between them.
type Gateway struct {
	registry   *Registry
	dispatcher Dispatcher
	store      StatusStore
	clock      clockwork.Clock
	logger     zerolog.Logger
}

// NewGateway creates a new job gateway.
func NewGateway(cfg GatewayConfig) *Gateway {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Gateway{
		registry:   cfg.Registry,
		dispatcher: cfg.Dispatcher,
		store:      cfg.Store,
		clock:      clock,
		logger:     cfg.Logger,
	}
}

// Submit validates and enqueues a job, returning its pending record.
//
// Errors: ErrUnknownJob, ErrInvalidParams, ErrQueueFull when the dispatcher
// cannot accept more work.
func (g *Gateway) Submit(ctx context.Context, name string, params json.RawMessage) (*Job, error) {
	if err := g.registry.Validate(name, params); err != nil {
		return nil, err
	}

	now := g.clock.Now().UTC()
	job := Job{
		ID:          uuid.New().String(),
		Name:        name,
		Status:      StatusPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	// The record must exist before a fast executor can update it.
	if err := g.store.Put(ctx, job); err != nil {
		return nil, fmt.Errorf("record job: %w", err)
	}

	err := g.dispatcher.Dispatch(ctx, Message{
		JobID:       job.ID,
		Name:        name,
		Params:      params,
		SubmittedAt: now,
	})
	if err != nil {
		g.logger.Error().Err(err).Str("job_id", job.ID).Str("job_name", name).Msg("failed to dispatch job")

		job.Status = StatusFailure
		job.Error = "dispatch failed"
		job.UpdatedAt = g.clock.Now().UTC()
		if putErr := g.store.Put(ctx, job); putErr != nil {
			g.logger.Error().Err(putErr).Str("job_id", job.ID).Msg("failed to record dispatch failure")
		}

		if errors.Is(err, ErrQueueFull) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrQueueFull, err)
	}

	g.logger.Info().Str("job_id", job.ID).Str("job_name", name).Msg("job submitted")
	return &job, nil
}

// Status returns the current record of a job. It has no side effects.
func (g *Gateway) Status(ctx context.Context, id string) (*Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrJobNotFound
	}
	return g.store.Get(ctx, id)
}
