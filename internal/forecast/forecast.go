package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/geo"
	"github.com/airwatch/airwatch/internal/jobs"
)

// JobName is the job registry name of the forecast job.
const JobName = "forecast"

// ErrNoRecentData is returned when no usable measurements surround a city.
var ErrNoRecentData = errors.New("no recent measurements near city")

// Defaults.
const (
	DefaultRadiusKm     = 25.0
	DefaultSamples      = 12
	DefaultModelVersion = "v1.0"
	DefaultHorizon      = time.Hour
)

// Prediction is the forecast for one city.
type Prediction struct {
	ID           string  `json:"id"`
	City         string  `json:"city"`
	PredictedAQI float64 `json:"predicted_aqi"`
	Level        string  `json:"status"`
	Confidence   float64 `json:"confidence"`
	Samples      int     `json:"samples"`

	// MeasurementID is the newest measurement the prediction used.
	MeasurementID int64     `json:"measurement_id,omitempty"`
	ModelVersion  string    `json:"model_version"`
	PredictedFor  time.Time `json:"predicted_for"`
	CreatedAt     time.Time `json:"created_at"`
}

// Params are the forecast job parameters.
type Params struct {
	City string `json:"city"`
}

// Config holds configuration for the Forecaster.
type Config struct {
	Store     airquality.Store
	Gazetteer *Gazetteer

	// RadiusKm is the search radius around the city center (default: 25).
	RadiusKm float64

	// Samples is the number of measurements considered (default: 12).
	Samples int

	// Repository keeps prediction history (default: in memory).
	Repository Repository

	// ModelVersion tags every prediction (default: v1.0).
	ModelVersion string

	// Horizon is how far ahead of its creation a prediction applies
	// (default: 1h).
	Horizon time.Duration

	Clock clockwork.Clock
}

// Forecaster predicts AQI as a recency-weighted mean of nearby measurements.
type Forecaster struct {
	store        airquality.Store
	repo         Repository
	gazetteer    *Gazetteer
	radiusKm     float64
	samples      int
	modelVersion string
	horizon      time.Duration
	clock        clockwork.Clock
}

// NewForecaster creates a new forecaster.
func NewForecaster(cfg Config) *Forecaster {
	radius := cfg.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}
	samples := cfg.Samples
	if samples <= 0 {
		samples = DefaultSamples
	}
	gaz := cfg.Gazetteer
	if gaz == nil {
		gaz = NewGazetteer(DefaultCities()...)
	}
	repo := cfg.Repository
	if repo == nil {
		repo = NewInMemoryRepository()
	}
	version := cfg.ModelVersion
	if version == "" {
		version = DefaultModelVersion
	}
	horizon := cfg.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Forecaster{
		store:        cfg.Store,
		repo:         repo,
		gazetteer:    gaz,
		radiusKm:     radius,
		samples:      samples,
		modelVersion: version,
		horizon:      horizon,
		clock:        clock,
	}
}

// Predict forecasts the AQI for city. The newest measurement carries weight
// n, the next n-1, down to 1 for the oldest. Confidence is the share of the
// sample window that was filled.
func (f *Forecaster) Predict(ctx context.Context, city string) (*Prediction, error) {
	c, err := f.gazetteer.Lookup(city)
	if err != nil {
		return nil, err
	}

	measurements, err := f.store.Nearest(ctx, airquality.NearestQuery{
		Origin:   c.Point,
		RadiusKm: f.radiusKm,
		Limit:    f.samples * 4,
	})
	if err != nil {
		return nil, airquality.StoreError(err)
	}

	valid := make([]airquality.Measurement, 0, len(measurements))
	for _, m := range measurements {
		if m.AQI == nil {
			continue
		}
		if _, err := airquality.Classify(*m.AQI); err != nil {
			continue
		}
		valid = append(valid, m)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecentData, c.Name)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.After(valid[j].Timestamp)
	})
	if len(valid) > f.samples {
		valid = valid[:f.samples]
	}

	var sum, weights float64
	for i, m := range valid {
		w := float64(len(valid) - i)
		sum += w * *m.AQI
		weights += w
	}
	predicted := geo.Round2(sum / weights)

	level, err := airquality.Classify(predicted)
	if err != nil {
		return nil, err
	}

	created := f.clock.Now().UTC()
	return &Prediction{
		ID:            uuid.New().String(),
		City:          c.Name,
		PredictedAQI:  predicted,
		Level:         level.Label(),
		Confidence:    geo.Round2(float64(len(valid)) / float64(f.samples)),
		Samples:       len(valid),
		MeasurementID: valid[0].ID,
		ModelVersion:  f.modelVersion,
		PredictedFor:  created.Add(f.horizon),
		CreatedAt:     created,
	}, nil
}

// Run predicts the AQI for city and records the prediction.
func (f *Forecaster) Run(ctx context.Context, city string) (*Prediction, error) {
	p, err := f.Predict(ctx, city)
	if err != nil {
		return nil, err
	}
	if err := f.repo.Save(ctx, p); err != nil {
		return nil, airquality.StoreError(fmt.Errorf("save prediction: %w", err))
	}
	return p, nil
}

// History lists recorded predictions newest first. A limit of zero uses
// DefaultHistoryLimit.
func (f *Forecaster) History(ctx context.Context, q HistoryQuery) ([]*Prediction, error) {
	if q.Limit == 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit < 0 || q.Limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", airquality.ErrInvalidInput, MaxHistoryLimit)
	}
	q.City = strings.TrimSpace(q.City)
	q.ModelVersion = strings.TrimSpace(q.ModelVersion)

	out, err := f.repo.List(ctx, q)
	if err != nil {
		return nil, airquality.StoreError(err)
	}
	return out, nil
}

// ParseParams decodes and checks forecast job parameters.
func (f *Forecaster) ParseParams(raw json.RawMessage) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, errors.New("city is required")
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode params: %w", err)
	}
	p.City = strings.TrimSpace(p.City)
	if p.City == "" {
		return p, errors.New("city is required")
	}
	if _, err := f.gazetteer.Lookup(p.City); err != nil {
		return p, err
	}
	return p, nil
}

// Definition returns the job definition that runs Run.
func (f *Forecaster) Definition() jobs.Definition {
	return jobs.Definition{
		Validate: func(raw json.RawMessage) error {
			_, err := f.ParseParams(raw)
			return err
		},
		Handle: func(ctx context.Context, raw json.RawMessage) (any, error) {
			p, err := f.ParseParams(raw)
			if err != nil {
				return nil, err
			}
			return f.Run(ctx, p.City)
		},
	}
}
