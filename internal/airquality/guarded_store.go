package airquality

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/airwatch/airwatch/internal/resilience"
	"github.com/airwatch/airwatch/internal/telemetry"
)

// GuardedStore wraps a Store with a circuit breaker and retries. Failures,
// including an open breaker, are reported as ErrStoreUnavailable.
type GuardedStore struct {
	inner Store
	guard *resilience.Guard
}

// NewGuardedStore creates a GuardedStore around inner.
func NewGuardedStore(inner Store, guard *resilience.Guard) *GuardedStore {
	return &GuardedStore{inner: inner, guard: guard}
}

// Nearest calls the wrapped store through the guard.
func (s *GuardedStore) Nearest(ctx context.Context, q NearestQuery) (_ []Measurement, err error) {
	ctx, span := telemetry.StartSpan(ctx, "airquality.store.nearest",
		attribute.Float64("radius_km", q.RadiusKm),
		attribute.Int("limit", q.Limit),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	out, err := resilience.Execute(ctx, s.guard, func(ctx context.Context) ([]Measurement, error) {
		return s.inner.Nearest(ctx, q)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return out, nil
}

// Recent calls the wrapped store through the guard.
func (s *GuardedStore) Recent(ctx context.Context, limit int) (_ []Measurement, err error) {
	ctx, span := telemetry.StartSpan(ctx, "airquality.store.recent", attribute.Int("limit", limit))
	defer func() { telemetry.EndSpan(span, err) }()

	out, err := resilience.Execute(ctx, s.guard, func(ctx context.Context) ([]Measurement, error) {
		return s.inner.Recent(ctx, limit)
	})
	if err != nil {
		return nil, StoreError(err)
	}
	return out, nil
}

var _ Store = (*GuardedStore)(nil)
