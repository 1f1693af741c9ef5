package observation

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/resilience"
	"github.com/airwatch/airwatch/internal/telemetry"
)

// GuardedStore wraps a Store with a circuit breaker and retries. Failures
// are reported as airquality.ErrStoreUnavailable.
type GuardedStore struct {
	inner Store
	guard *resilience.Guard
}

// NewGuardedStore creates a GuardedStore around inner.
func NewGuardedStore(inner Store, guard *resilience.Guard) *GuardedStore {
	return &GuardedStore{inner: inner, guard: guard}
}

// Weather calls the wrapped store through the guard.
func (s *GuardedStore) Weather(ctx context.Context, f Filter) (_ []Weather, err error) {
	ctx, span := telemetry.StartSpan(ctx, "observation.store.weather", attribute.Int("limit", f.Limit))
	defer func() { telemetry.EndSpan(span, err) }()

	out, err := resilience.Execute(ctx, s.guard, func(ctx context.Context) ([]Weather, error) {
		return s.inner.Weather(ctx, f)
	})
	if err != nil {
		return nil, airquality.StoreError(err)
	}
	return out, nil
}

// Satellite calls the wrapped store through the guard.
func (s *GuardedStore) Satellite(ctx context.Context, f Filter) (_ []Satellite, err error) {
	ctx, span := telemetry.StartSpan(ctx, "observation.store.satellite", attribute.Int("limit", f.Limit))
	defer func() { telemetry.EndSpan(span, err) }()

	out, err := resilience.Execute(ctx, s.guard, func(ctx context.Context) ([]Satellite, error) {
		return s.inner.Satellite(ctx, f)
	})
	if err != nil {
		return nil, airquality.StoreError(err)
	}
	return out, nil
}

var _ Store = (*GuardedStore)(nil)
