package app_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/alert"
	"github.com/airwatch/airwatch/internal/app"
	"github.com/airwatch/airwatch/internal/cache"
	"github.com/airwatch/airwatch/internal/config"
	"github.com/airwatch/airwatch/internal/forecast"
	"github.com/airwatch/airwatch/internal/jobs"
	"github.com/airwatch/airwatch/internal/observation"
)

func TestOpen_MemoryBackends(t *testing.T) {
	cfg := config.New()
	clock := clockwork.NewFakeClock()

	b, err := app.Open(context.Background(), cfg, clock, zerolog.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, b.Close()) })

	assert.Nil(t, b.Pool)
	assert.Nil(t, b.Redis)
	assert.Empty(t, b.Checks)
	assert.IsType(t, &airquality.GuardedStore{}, b.Store)
	assert.IsType(t, &cache.MemoryCache{}, b.Cache)
	assert.IsType(t, &jobs.MemoryStatusStore{}, b.StatusStore)
	assert.IsType(t, &alert.InMemoryRepository{}, b.Alerts)
	assert.IsType(t, &observation.GuardedStore{}, b.Observations)
	assert.IsType(t, &forecast.InMemoryRepository{}, b.Predictions)

	require.NotNil(t, b.Dependencies.Health(app.StoreDependency))
	require.NotNil(t, b.Dependencies.Health(app.ObservationDependency))

	_, err = b.Store.Recent(context.Background(), 5)
	require.NoError(t, err)
	_, err = b.Observations.Weather(context.Background(), observation.Filter{Limit: 5})
	require.NoError(t, err)
}

func TestOpen_NoCache(t *testing.T) {
	cfg := config.New()
	cfg.CacheBackend = config.BackendNone

	b, err := app.Open(context.Background(), cfg, nil, zerolog.New(io.Discard))
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Cache)
}

func TestOpen_UnreachableRedis(t *testing.T) {
	cfg := config.New()
	cfg.CacheBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := app.Open(ctx, cfg, nil, zerolog.New(io.Discard))
	assert.Error(t, err)
}

func TestNewJobRegistry(t *testing.T) {
	cfg := config.New()
	cfg.ForecastCities = []string{"Lyon,45.764,4.8357"}
	b := &app.Backends{
		Store:       airquality.NewInMemoryStore(),
		Predictions: forecast.NewInMemoryRepository(),
	}

	forecaster, err := app.NewForecaster(cfg, b, clockwork.NewFakeClock())
	require.NoError(t, err)
	registry := app.NewJobRegistry(forecaster)

	assert.Equal(t, []string{forecast.JobName}, registry.Names())
	assert.NoError(t, registry.Validate(forecast.JobName, []byte(`{"city":"lyon"}`)))
	assert.NoError(t, registry.Validate(forecast.JobName, []byte(`{"city":"Paris"}`)))

	cfg.ForecastCities = []string{"Nowhere"}
	_, err = app.NewForecaster(cfg, b, nil)
	assert.Error(t, err)
}

func TestNewAlertPublisher(t *testing.T) {
	cfg := config.New()

	p, closeFn := app.NewAlertPublisher(cfg, zerolog.New(io.Discard))
	assert.IsType(t, &alert.LogPublisher{}, p)
	assert.NoError(t, closeFn())

	cfg.AlertPublisher = config.BackendKafka
	cfg.KafkaBrokers = []string{"localhost:9092"}
	p, closeFn = app.NewAlertPublisher(cfg, zerolog.New(io.Discard))
	assert.IsType(t, &alert.KafkaPublisher{}, p)
	assert.NoError(t, closeFn())
}
