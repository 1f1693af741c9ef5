package alert

import (
	"context"
	"sort"
	"sync"
)

// Repository persists alerts.
type Repository interface {
	// Save stores a new alert.
	Save(ctx context.Context, a *Alert) error

	// Recent returns up to limit alerts, newest first.
	Recent(ctx context.Context, limit int) ([]*Alert, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu     sync.RWMutex
	alerts []*Alert
}

// NewInMemoryRepository creates a new in-memory alert repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Save stores a copy of a.
func (r *InMemoryRepository) Save(_ context.Context, a *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *a
	r.alerts = append(r.alerts, &cpy)
	return nil
}

// Recent returns copies of the newest alerts.
func (r *InMemoryRepository) Recent(_ context.Context, limit int) ([]*Alert, error) {
	r.mu.RLock()
	out := make([]*Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		cpy := *a
		out = append(out, &cpy)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)
