package observation

import (
	"context"
	"sort"
	"sync"
)

// Store is the read side of the observation tables.
type Store interface {
	// Weather returns up to f.Limit weather records, newest first.
	Weather(ctx context.Context, f Filter) ([]Weather, error)

	// Satellite returns up to f.Limit satellite records, newest first.
	Satellite(ctx context.Context, f Filter) ([]Satellite, error)
}

// InMemoryStore is an in-memory implementation of Store.
// This is intended for testing and local development.
type InMemoryStore struct {
	mu        sync.RWMutex
	weather   []Weather
	satellite []Satellite
	nextID    int64
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddWeather appends weather records. Records with a zero ID are assigned one.
func (s *InMemoryStore) AddWeather(records ...Weather) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range records {
		w.ID = s.assignID(w.ID)
		s.weather = append(s.weather, w)
	}
}

// AddSatellite appends satellite records. Records with a zero ID are assigned one.
func (s *InMemoryStore) AddSatellite(records ...Satellite) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		r.ID = s.assignID(r.ID)
		s.satellite = append(s.satellite, r)
	}
}

func (s *InMemoryStore) assignID(id int64) int64 {
	if id == 0 {
		s.nextID++
		return s.nextID
	}
	if id > s.nextID {
		s.nextID = id
	}
	return id
}

// Weather returns the newest weather records first.
func (s *InMemoryStore) Weather(_ context.Context, f Filter) ([]Weather, error) {
	s.mu.RLock()
	out := make([]Weather, 0, len(s.weather))
	for _, w := range s.weather {
		if f.keeps(w.Timestamp) {
			out = append(out, w)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return truncate(out, f.Limit), nil
}

// Satellite returns the newest satellite records first.
func (s *InMemoryStore) Satellite(_ context.Context, f Filter) ([]Satellite, error) {
	s.mu.RLock()
	out := make([]Satellite, 0, len(s.satellite))
	for _, r := range s.satellite {
		if f.keeps(r.Timestamp) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return truncate(out, f.Limit), nil
}

func truncate[T any](records []T, limit int) []T {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

var _ Store = (*InMemoryStore)(nil)
