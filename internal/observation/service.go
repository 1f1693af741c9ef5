package observation

import (
	"context"
	"fmt"

	"github.com/airwatch/airwatch/internal/airquality"
)

// Listing limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service lists observations.
type Service struct {
	store Store
}

// NewService creates a new observation service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Weather lists the newest weather records. A limit of zero uses
// DefaultListLimit.
func (s *Service) Weather(ctx context.Context, f Filter) ([]Weather, error) {
	f, err := normalize(f)
	if err != nil {
		return nil, err
	}
	out, err := s.store.Weather(ctx, f)
	if err != nil {
		return nil, airquality.StoreError(err)
	}
	return out, nil
}

// Satellite lists the newest satellite records. A limit of zero uses
// DefaultListLimit.
func (s *Service) Satellite(ctx context.Context, f Filter) ([]Satellite, error) {
	f, err := normalize(f)
	if err != nil {
		return nil, err
	}
	out, err := s.store.Satellite(ctx, f)
	if err != nil {
		return nil, airquality.StoreError(err)
	}
	return out, nil
}

func normalize(f Filter) (Filter, error) {
	if f.Limit == 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit < 0 || f.Limit > MaxListLimit {
		return f, fmt.Errorf("%w: limit must be between 1 and %d", airquality.ErrInvalidInput, MaxListLimit)
	}
	f.Since = f.Since.UTC()
	return f, nil
}
