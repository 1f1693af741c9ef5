package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Observer is notified when a job finishes. Optional.
type Observer interface {
	JobFinished(name string, status Status, duration time.Duration)
}

// RunnerConfig holds configuration for the Runner.
type RunnerConfig struct {
	Registry *Registry
	Store    StatusStore
	Clock    clockwork.Clock
	Logger   zerolog.Logger
	Observer Observer

	// Timeout bounds a single job execution (default: 5 minutes).
	Timeout time.Duration
}

// Runner executes job messages and records their status transitions.
type Runner struct {
	registry *Registry
	store    StatusStore
	clock    clockwork.Clock
	logger   zerolog.Logger
	observer Observer
	timeout  time.Duration
}

// NewRunner creates a new job runner.
func NewRunner(cfg RunnerConfig) *Runner {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &Runner{
		registry: cfg.Registry,
		store:    cfg.Store,
		clock:    clock,
		logger:   cfg.Logger,
		observer: cfg.Observer,
		timeout:  timeout,
	}
}

// Process runs a single message to completion. Handler failures are recorded
// as StatusFailure and are not returned; only status store errors are, so a
// broker can redeliver.
func (r *Runner) Process(ctx context.Context, msg Message) error {
	start := r.clock.Now()
	logger := r.logger.With().Str("job_id", msg.JobID).Str("job_name", msg.Name).Logger()

	job := Job{
		ID:          msg.JobID,
		Name:        msg.Name,
		Status:      StatusRunning,
		SubmittedAt: msg.SubmittedAt,
		UpdatedAt:   start.UTC(),
	}
	if err := r.store.Put(ctx, job); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}

	result, err := r.execute(ctx, msg)
	job.UpdatedAt = r.clock.Now().UTC()
	if err != nil {
		job.Status = StatusFailure
		job.Error = err.Error()
		logger.Warn().Err(err).Msg("job failed")
	} else {
		job.Status = StatusSuccess
		job.Result = result
		logger.Info().Dur("duration", job.UpdatedAt.Sub(start)).Msg("job completed")
	}

	if r.observer != nil {
		r.observer.JobFinished(msg.Name, job.Status, r.clock.Since(start))
	}

	if err := r.store.Put(ctx, job); err != nil {
		return fmt.Errorf("record job result: %w", err)
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, msg Message) (result json.RawMessage, err error) {
	def, ok := r.registry.Lookup(msg.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, msg.Name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := def.Handle(ctx, msg.Params)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode job result: %w", err)
	}
	return data, nil
}

// Consume processes messages from q with the given number of workers until
// the queue is closed or ctx is cancelled.
func (r *Runner) Consume(ctx context.Context, q *InMemoryQueue, concurrency int) {
	if concurrency <= 0 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-q.Messages():
					if !ok {
						return
					}
					if err := r.Process(ctx, msg); err != nil {
						r.logger.Error().Err(err).Int("worker", workerID).Str("job_id", msg.JobID).Msg("job status update failed")
					}
				}
			}
		}(i)
	}
	wg.Wait()
}
