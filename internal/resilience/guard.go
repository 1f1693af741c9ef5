package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// GuardConfig holds configuration for a Guard.
type GuardConfig struct {
	// Name identifies the guarded dependency.
	Name string

	// Timeout bounds each individual attempt.
	// Default: 2 seconds
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Default: 2
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 50ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 1 second
	MaxInterval time.Duration

	// Permanent reports errors that must not be retried.
	// Context cancellation is always permanent.
	Permanent func(err error) bool

	// CircuitBreaker is the circuit breaker configuration.
	// If nil, uses DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	// Registry receives outcome reports. If nil, the guard is not registered.
	Registry *Registry
}

// DefaultGuardConfig returns defaults suited to database reads.
func DefaultGuardConfig(name string) GuardConfig {
	cb := DefaultCircuitBreakerConfig(name)
	return GuardConfig{
		Name:            name,
		Timeout:         2 * time.Second,
		MaxRetries:      2,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		CircuitBreaker:  &cb,
	}
}

// Guard wraps calls to one dependency with a breaker and retries.
type Guard struct {
	name     string
	breaker  *gobreaker.CircuitBreaker[any]
	config   GuardConfig
	registry *Registry
}

// NewGuard creates a Guard and registers it when cfg.Registry is set.
func NewGuard(cfg GuardConfig) *Guard {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 50 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}
	if cbConfig.IsSuccessful == nil && cfg.Permanent != nil {
		// Caller-side failures leave the breaker untouched.
		permanent := cfg.Permanent
		cbConfig.IsSuccessful = func(err error) bool {
			return err == nil || permanent(err)
		}
	}

	g := &Guard{
		name:     cfg.Name,
		breaker:  NewCircuitBreaker[any](cbConfig),
		config:   cfg,
		registry: cfg.Registry,
	}

	if g.registry != nil {
		g.registry.Register(cfg.Name, g)
	}

	return g
}

// Name returns the guarded dependency name.
func (g *Guard) Name() string {
	return g.name
}

// State returns the current circuit breaker state.
func (g *Guard) State() gobreaker.State {
	return g.breaker.State()
}

// Counts returns the current circuit breaker counts.
func (g *Guard) Counts() gobreaker.Counts {
	return g.breaker.Counts()
}

// Execute runs op through g. Each attempt gets its own timeout derived from
// ctx. Transient failures are retried with exponential backoff; an open
// breaker returns ErrCircuitOpen without calling op.
func Execute[T any](ctx context.Context, g *Guard, op func(ctx context.Context) (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.config.InitialInterval
	bo.MaxInterval = g.config.MaxInterval
	bo.MaxElapsedTime = 0 // bounded by MaxRetries

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, g.config.MaxRetries), ctx)

	var result T
	operation := func() error {
		v, err := g.breaker.Execute(func() (any, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
			defer cancel()
			return op(attemptCtx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if ctx.Err() != nil || (g.config.Permanent != nil && g.config.Permanent(err)) {
				return backoff.Permanent(err)
			}
			return err
		}
		if v != nil {
			result = v.(T)
		}
		return nil
	}

	err := backoff.Retry(operation, policy)
	if g.registry != nil {
		if err != nil {
			g.registry.RecordFailure(g.name, err)
		} else {
			g.registry.RecordSuccess(g.name)
		}
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
