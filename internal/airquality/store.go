package airquality

import (
	"context"
	"sort"
	"sync"

	"github.com/airwatch/airwatch/internal/geo"
)

// NearestQuery selects measurements around a point.
type NearestQuery struct {
	Origin geo.Point
	// RadiusKm bounds the search; zero or less means unbounded.
	RadiusKm float64
	Limit    int
}

// Store is the read side of the measurement database.
type Store interface {
	// Nearest returns up to q.Limit measurements with a non-null AQI within
	// q.RadiusKm of q.Origin, closest first.
	Nearest(ctx context.Context, q NearestQuery) ([]Measurement, error)

	// Recent returns up to limit measurements, newest first.
	Recent(ctx context.Context, limit int) ([]Measurement, error)
}

// InMemoryStore is an in-memory implementation of Store.
// This is intended for testing and local development.
type InMemoryStore struct {
	mu           sync.RWMutex
	measurements []Measurement
	nextID       int64
}

// NewInMemoryStore creates a store seeded with the given measurements.
func NewInMemoryStore(seed ...Measurement) *InMemoryStore {
	s := &InMemoryStore{}
	s.Add(seed...)
	return s
}

// Add appends measurements. Records with a zero ID are assigned one.
func (s *InMemoryStore) Add(measurements ...Measurement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range measurements {
		if m.ID == 0 {
			s.nextID++
			m.ID = s.nextID
		} else if m.ID > s.nextID {
			s.nextID = m.ID
		}
		s.measurements = append(s.measurements, m)
	}
}

// Nearest returns measurements with a non-null AQI ordered by distance.
func (s *InMemoryStore) Nearest(_ context.Context, q NearestQuery) ([]Measurement, error) {
	s.mu.RLock()
	withAQI := make([]Measurement, 0, len(s.measurements))
	for _, m := range s.measurements {
		if m.AQI != nil {
			withAQI = append(withAQI, m)
		}
	}
	s.mu.RUnlock()

	ranked := geo.Nearest(Candidates(withAQI), q.Origin, q.RadiusKm)
	if q.Limit > 0 && len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}

	out := make([]Measurement, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Item)
	}
	return out, nil
}

// Recent returns the newest measurements first.
func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]Measurement, error) {
	s.mu.RLock()
	out := make([]Measurement, len(s.measurements))
	copy(out, s.measurements)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Store = (*InMemoryStore)(nil)
