package forecast

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// History limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryQuery filters recorded predictions. Empty fields match everything.
type HistoryQuery struct {
	// City matches case-insensitively.
	City         string
	ModelVersion string
	Limit        int
}

// Repository records predictions.
type Repository interface {
	// Save stores a new prediction.
	Save(ctx context.Context, p *Prediction) error

	// List returns predictions matching q, newest first.
	List(ctx context.Context, q HistoryQuery) ([]*Prediction, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu          sync.RWMutex
	predictions []*Prediction
}

// NewInMemoryRepository creates a new in-memory prediction repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Save stores a copy of p.
func (r *InMemoryRepository) Save(_ context.Context, p *Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *p
	r.predictions = append(r.predictions, &cpy)
	return nil
}

// List returns copies of the matching predictions.
func (r *InMemoryRepository) List(_ context.Context, q HistoryQuery) ([]*Prediction, error) {
	r.mu.RLock()
	out := make([]*Prediction, 0, len(r.predictions))
	for _, p := range r.predictions {
		if q.City != "" && !strings.EqualFold(p.City, q.City) {
			continue
		}
		if q.ModelVersion != "" && p.ModelVersion != q.ModelVersion {
			continue
		}
		cpy := *p
		out = append(out, &cpy)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)
