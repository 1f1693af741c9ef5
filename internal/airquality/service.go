package airquality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/cache"
	"github.com/airwatch/airwatch/internal/geo"
)

// Listing limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Store is the measurement store.
	Store Store

	// Cache holds summaries between identical queries. Optional.
	Cache cache.Cache

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long summaries are cached (default: 3 minutes).
	CacheTTL time.Duration

	// MaxRadiusKm bounds query radii (default: 500 km).
	MaxRadiusKm float64

	// SummaryLimit is the number of measurements averaged (default: 5).
	SummaryLimit int

	// CandidateLimit is the number of store rows fetched per query so that
	// invalid records can be dropped without starving the summary
	// (default: 4 x SummaryLimit).
	CandidateLimit int
}

// Service resolves, aggregates and classifies measurements for queries.
type Service struct {
	store          Store
	cache          cache.Cache
	logger         zerolog.Logger
	cacheTTL       time.Duration
	maxRadiusKm    float64
	summaryLimit   int
	candidateLimit int
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 3 * time.Minute
	}

	maxRadius := cfg.MaxRadiusKm
	if maxRadius == 0 {
		maxRadius = 500
	}

	summaryLimit := cfg.SummaryLimit
	if summaryLimit <= 0 {
		summaryLimit = DefaultSummaryLimit
	}

	candidateLimit := cfg.CandidateLimit
	if candidateLimit < summaryLimit {
		candidateLimit = 4 * summaryLimit
	}

	return &Service{
		store:          cfg.Store,
		cache:          cfg.Cache,
		logger:         cfg.Logger,
		cacheTTL:       cacheTTL,
		maxRadiusKm:    maxRadius,
		summaryLimit:   summaryLimit,
		candidateLimit: candidateLimit,
	}
}

// MaxRadiusKm returns the largest accepted query radius.
func (s *Service) MaxRadiusKm() float64 {
	return s.maxRadiusKm
}

// QueryNearest summarizes the measurements closest to q.Point within
// q.RadiusKm, or the newest measurements when q.Point is nil.
//
// Errors: ErrInvalidInput for a bad query (the store is not consulted),
// ErrNoDataInRegion when nothing valid is found, ErrStoreUnavailable when the
// store fails.
func (s *Service) QueryNearest(ctx context.Context, q Query) (*Summary, error) {
	if err := q.validate(s.maxRadiusKm); err != nil {
		return nil, err
	}

	key := cacheKey(q)
	if summary, ok := s.cached(ctx, key); ok {
		return summary, nil
	}

	var (
		summary *Summary
		err     error
	)
	if q.Point == nil {
		summary, err = s.recentSummary(ctx)
	} else {
		summary, err = s.nearestSummary(ctx, *q.Point, q.RadiusKm)
	}
	if err != nil {
		return nil, err
	}

	s.storeCached(ctx, key, summary)
	return summary, nil
}

// CheckPoint summarizes the measurements closest to p with no radius bound.
func (s *Service) CheckPoint(ctx context.Context, p geo.Point) (*Summary, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.nearestSummary(ctx, p, 0)
}

// RecentMeasurements lists the newest measurements in the requested view.
// A limit of zero uses DefaultListLimit.
func (s *Service) RecentMeasurements(ctx context.Context, view View, limit int) (Listing, error) {
	if view != ViewFull && view != ViewMinimal {
		return Listing{}, fmt.Errorf("%w: unknown view %q", ErrInvalidInput, view)
	}
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit < 0 || limit > MaxListLimit {
		return Listing{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxListLimit)
	}

	measurements, err := s.store.Recent(ctx, limit)
	if err != nil {
		return Listing{}, StoreError(err)
	}
	return NewListing(view, measurements), nil
}

func (s *Service) nearestSummary(ctx context.Context, origin geo.Point, radiusKm float64) (*Summary, error) {
	measurements, err := s.store.Nearest(ctx, NearestQuery{
		Origin:   origin,
		RadiusKm: radiusKm,
		Limit:    s.candidateLimit,
	})
	if err != nil {
		return nil, StoreError(err)
	}

	ranked := geo.Nearest(Candidates(measurements), origin, radiusKm)
	valid, rejected := Partition(ranked)
	s.logRejected(rejected)

	summary, err := Summarize(valid, s.summaryLimit)
	if errors.Is(err, ErrNotFound) {
		s.logger.Debug().
			Str("origin", origin.String()).
			Float64("radius_km", radiusKm).
			Msg("no measurements in region")
		return nil, ErrNoDataInRegion
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Service) recentSummary(ctx context.Context) (*Summary, error) {
	measurements, err := s.store.Recent(ctx, s.candidateLimit)
	if err != nil {
		return nil, StoreError(err)
	}

	valid := make([]Measurement, 0, len(measurements))
	var rejected []Rejected
	for _, m := range measurements {
		if err := validate(m); err != nil {
			if m.AQI != nil {
				rejected = append(rejected, Rejected{Measurement: m, Err: err})
			}
			continue
		}
		valid = append(valid, m)
	}
	s.logRejected(rejected)

	summary, err := SummarizeRecent(valid, s.summaryLimit)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoDataInRegion
	}
	return summary, err
}

func (s *Service) logRejected(rejected []Rejected) {
	for _, r := range rejected {
		event := s.logger.Warn().
			Err(r.Err).
			Int64("measurement_id", r.Measurement.ID)
		if r.Measurement.AQI != nil {
			event = event.Float64("aqi", *r.Measurement.AQI)
		}
		event.Msg("excluding invalid measurement")
	}
}

func (s *Service) cached(ctx context.Context, key string) (*Summary, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return nil, false
	}
	return &summary, true
}

func (s *Service) storeCached(ctx context.Context, key string, summary *Summary) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode summary for cache")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// cacheKey identifies a query by its exact parsed values. A cached summary
// carries distances and a radius filter that only hold for that exact origin.
func cacheKey(q Query) string {
	if q.Point == nil {
		return "aq:recent"
	}
	return "aq:nearest:" + formatKeyFloat(q.Point.Lat) + ":" + formatKeyFloat(q.Point.Lon) + ":" + formatKeyFloat(q.RadiusKm)
}

func formatKeyFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// StoreError marks err as ErrStoreUnavailable unless it already is.
func StoreError(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
