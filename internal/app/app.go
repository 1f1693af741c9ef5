// Package app assembles the configured backends shared by the API and worker
// binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/alert"
	"github.com/airwatch/airwatch/internal/cache"
	"github.com/airwatch/airwatch/internal/config"
	"github.com/airwatch/airwatch/internal/database"
	"github.com/airwatch/airwatch/internal/forecast"
	"github.com/airwatch/airwatch/internal/health"
	"github.com/airwatch/airwatch/internal/jobs"
	"github.com/airwatch/airwatch/internal/observation"
	"github.com/airwatch/airwatch/internal/resilience"
)

// Resilience registry names of the guarded stores.
const (
	StoreDependency       = "measurement-store"
	ObservationDependency = "observation-store"
)

// Backends holds the storage collaborators selected by configuration.
type Backends struct {
	Pool         *pgxpool.Pool
	Redis        *redis.Client
	Dependencies *resilience.Registry

	// Store is the guarded measurement store.
	Store        airquality.Store
	// Observations is the guarded weather and satellite store.
	Observations observation.Store
	Predictions  forecast.Repository
	Cache        cache.Cache
	StatusStore  jobs.StatusStore
	Alerts       alert.Repository
	Checks       []health.Check

	closers []func() error
}

// Open connects every backend named by cfg. On error, anything already
// opened is closed.
func Open(ctx context.Context, cfg *config.Config, clock clockwork.Clock, log zerolog.Logger) (_ *Backends, err error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	b := &Backends{Dependencies: resilience.NewRegistry(clock)}
	defer func() {
		if err != nil {
			_ = b.Close()
		}
	}()

	var (
		store        airquality.Store
		observations observation.Store
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		dbCfg := cfg.Database()
		b.Pool, err = database.Connect(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() error { b.Pool.Close(); return nil })
		log.Info().Str("host", dbCfg.Host).Int("port", dbCfg.Port).Str("database", dbCfg.Database).Msg("database connected")

		pg := airquality.NewPostgresStore(b.Pool)
		store = pg
		observations = observation.NewPostgresStore(b.Pool)
		b.Predictions = forecast.NewPostgresRepository(b.Pool)
		b.Alerts = alert.NewPostgresRepository(b.Pool)
		b.Checks = append(b.Checks, health.Check{Name: "database", Ping: pg.Ping})
	default:
		store = airquality.NewInMemoryStore()
		observations = observation.NewInMemoryStore()
		b.Predictions = forecast.NewInMemoryRepository()
		b.Alerts = alert.NewInMemoryRepository()
		log.Warn().Msg("using in-memory measurement store")
	}

	if cfg.NeedsRedis() {
		b.Redis, err = database.ConnectRedis(ctx, cfg.Redis())
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, b.Redis.Close)
		b.Checks = append(b.Checks, health.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return b.Redis.Ping(ctx).Err() },
		})
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
	}

	b.Store = airquality.NewGuardedStore(store, b.guard(StoreDependency, cfg.StoreTimeout))
	b.Observations = observation.NewGuardedStore(observations, b.guard(ObservationDependency, cfg.StoreTimeout))

	switch cfg.CacheBackend {
	case config.BackendRedis:
		b.Cache = cache.NewRedisCache(b.Redis, "airwatch")
	case config.BackendMemory:
		mem := cache.NewMemoryCache(clock)
		b.Cache = mem
		stop := sweep(mem, cfg.CacheTTL)
		b.closers = append(b.closers, func() error { stop(); return nil })
	}

	switch cfg.JobStatusBackend {
	case config.BackendRedis:
		b.StatusStore = jobs.NewRedisStatusStore(b.Redis, cfg.JobStatusTTL)
	default:
		b.StatusStore = jobs.NewMemoryStatusStore(clock, cfg.JobStatusTTL)
	}

	return b, nil
}

// guard creates a store guard registered under name.
func (b *Backends) guard(name string, timeout time.Duration) *resilience.Guard {
	guardCfg := resilience.DefaultGuardConfig(name)
	guardCfg.Timeout = timeout
	guardCfg.Registry = b.Dependencies
	guardCfg.Permanent = func(err error) bool {
		return errors.Is(err, context.Canceled) || errors.Is(err, airquality.ErrInvalidInput)
	}
	return resilience.NewGuard(guardCfg)
}

// Close releases every opened backend in reverse order.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// NewForecaster builds the forecaster over b's measurement store and
// prediction history. Cities from cfg.ForecastCities extend the built-in
// gazetteer.
func NewForecaster(cfg *config.Config, b *Backends, clock clockwork.Clock) (*forecast.Forecaster, error) {
	cities := forecast.DefaultCities()
	for _, entry := range cfg.ForecastCities {
		c, err := forecast.ParseCity(entry)
		if err != nil {
			return nil, fmt.Errorf("forecast_cities: %w", err)
		}
		cities = append(cities, c)
	}

	return forecast.NewForecaster(forecast.Config{
		Store:        b.Store,
		Repository:   b.Predictions,
		Gazetteer:    forecast.NewGazetteer(cities...),
		ModelVersion: cfg.ForecastModelVersion,
		Horizon:      cfg.ForecastHorizon,
		Clock:        clock,
	}), nil
}

// NewJobRegistry registers every job this service can run.
func NewJobRegistry(forecaster *forecast.Forecaster) *jobs.Registry {
	registry := jobs.NewRegistry()
	registry.Register(forecast.JobName, forecaster.Definition())
	return registry
}

// NewAlertPublisher returns the configured alert publisher and a function
// that flushes it.
func NewAlertPublisher(cfg *config.Config, log zerolog.Logger) (alert.Publisher, func() error) {
	if cfg.AlertPublisher == config.BackendKafka {
		p := alert.NewKafkaPublisher(alert.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaAlertTopic,
		})
		return p, p.Close
	}
	return alert.NewLogPublisher(log), func() error { return nil }
}

// sweep evicts expired cache entries until the returned stop is called.
func sweep(c *cache.MemoryCache, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
