package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// StatusStore persists job status records.
type StatusStore interface {
	// Put creates or replaces the record for job.ID.
	Put(ctx context.Context, job Job) error

	// Get returns the record for id, or ErrJobNotFound.
	Get(ctx context.Context, id string) (*Job, error)
}

// MemoryStatusStore is a process-local StatusStore. Records expire ttl after
// their last update; a zero ttl keeps them forever.
type MemoryStatusStore struct {
	mu    sync.RWMutex
	clock clockwork.Clock
	ttl   time.Duration
	jobs  map[string]Job
}

// NewMemoryStatusStore creates a MemoryStatusStore. A nil clock uses the real clock.
func NewMemoryStatusStore(clock clockwork.Clock, ttl time.Duration) *MemoryStatusStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStatusStore{
		clock: clock,
		ttl:   ttl,
		jobs:  make(map[string]Job),
	}
}

// Put stores a copy of job.
func (s *MemoryStatusStore) Put(_ context.Context, job Job) error {
	job.Result = append([]byte(nil), job.Result...)

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the record for id.
func (s *MemoryStatusStore) Get(_ context.Context, id string) (*Job, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrJobNotFound
	}
	if s.expired(job) {
		s.mu.Lock()
		// A Put may have refreshed the record since the read lock was released.
		if current, ok := s.jobs[id]; ok && s.expired(current) {
			delete(s.jobs, id)
		}
		s.mu.Unlock()
		return nil, ErrJobNotFound
	}

	job.Result = append([]byte(nil), job.Result...)
	return &job, nil
}

func (s *MemoryStatusStore) expired(job Job) bool {
	return s.ttl > 0 && !s.clock.Now().Before(job.UpdatedAt.Add(s.ttl))
}

var _ StatusStore = (*MemoryStatusStore)(nil)
