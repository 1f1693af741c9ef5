package resilience_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch/airwatch/internal/resilience"
)

var errTransient = errors.New("connection reset")

func fastConfig(name string) resilience.GuardConfig {
	cfg := resilience.DefaultGuardConfig(name)
	cfg.InitialInterval = time.Millisecond
	cfg.MaxInterval = 5 * time.Millisecond
	return cfg
}

func TestExecute_Success(t *testing.T) {
	guard := resilience.NewGuard(fastConfig("store"))

	got, err := resilience.Execute(context.Background(), guard, func(_ context.Context) ([]int, error) {
		return []int{1, 2, 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestExecute_RetriesTransientErrors(t *testing.T) {
	var attempts atomic.Int32
	cfg := fastConfig("store-retry")
	cfg.MaxRetries = 3
	guard := resilience.NewGuard(cfg)

	got, err := resilience.Execute(context.Background(), guard, func(_ context.Context) (string, error) {
		if attempts.Add(1) < 3 {
			return "", errTransient
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestExecute_PermanentErrorsAreNotRetried(t *testing.T) {
	errBadQuery := errors.New("bad query")
	var attempts atomic.Int32

	cfg := fastConfig("store-permanent")
	cfg.Permanent = func(err error) bool { return errors.Is(err, errBadQuery) }
	guard := resilience.NewGuard(cfg)

	_, err := resilience.Execute(context.Background(), guard, func(_ context.Context) (int, error) {
		attempts.Add(1)
		return 0, errBadQuery
	})
	require.ErrorIs(t, err, errBadQuery)
	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, gobreaker.StateClosed, guard.State())
}

func TestExecute_OpenCircuit(t *testing.T) {
	cb := resilience.DefaultCircuitBreakerConfig("store-open")
	cb.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 1 }

	cfg := fastConfig("store-open")
	cfg.MaxRetries = 0
	cfg.CircuitBreaker = &cb
	guard := resilience.NewGuard(cfg)

	_, err := resilience.Execute(context.Background(), guard, func(_ context.Context) (int, error) {
		return 0, errTransient
	})
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, gobreaker.StateOpen, guard.State())

	var called bool
	_, err = resilience.Execute(context.Background(), guard, func(_ context.Context) (int, error) {
		called = true
		return 1, nil
	})
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.False(t, called)
}

func TestExecute_AttemptTimeout(t *testing.T) {
	cfg := fastConfig("store-timeout")
	cfg.Timeout = 10 * time.Millisecond
	cfg.MaxRetries = 0
	guard := resilience.NewGuard(cfg)

	_, err := resilience.Execute(context.Background(), guard, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegistry_RecordsOutcomes(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	registry := resilience.NewRegistry(clock)

	cfg := fastConfig("measurements")
	cfg.MaxRetries = 0
	cfg.Registry = registry
	guard := resilience.NewGuard(cfg)

	health := registry.Health("measurements")
	require.NotNil(t, health)
	assert.True(t, health.IsHealthy())
	assert.Nil(t, health.LastSuccessAt)

	_, err := resilience.Execute(context.Background(), guard, func(_ context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = resilience.Execute(context.Background(), guard, func(_ context.Context) (int, error) {
		return 0, errTransient
	})
	require.Error(t, err)

	health = registry.Health("measurements")
	require.NotNil(t, health)
	require.NotNil(t, health.LastSuccessAt)
	require.NotNil(t, health.LastFailureAt)
	assert.Equal(t, time.Minute, health.LastFailureAt.Sub(*health.LastSuccessAt))
	assert.Equal(t, errTransient.Error(), health.LastError)

	assert.Nil(t, registry.Health("unknown"))
	assert.Len(t, registry.AllHealth(), 1)
}
