// Package main provides the entrypoint for the AirWatch API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/alert"
	"github.com/airwatch/airwatch/internal/api"
	"github.com/airwatch/airwatch/internal/api/handler"
	"github.com/airwatch/airwatch/internal/api/middleware"
	"github.com/airwatch/airwatch/internal/app"
	"github.com/airwatch/airwatch/internal/config"
	"github.com/airwatch/airwatch/internal/jobs"
	"github.com/airwatch/airwatch/internal/observation"
	"github.com/airwatch/airwatch/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "airwatch-api"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("api exited")
	}
}

func run(log zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}
	log.Info().Str("build_time", BuildTime).Str("env", cfg.Env).Msg("starting AirWatch API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTelEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics(tp.Meter)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	backends, err := app.Open(ctx, cfg, clock, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close backends")
		}
	}()

	airQuality := airquality.NewService(airquality.ServiceConfig{
		Store:        backends.Store,
		Cache:        backends.Cache,
		Logger:       log.With().Str("component", "airquality").Logger(),
		CacheTTL:     cfg.CacheTTL,
		MaxRadiusKm:  cfg.MaxRadiusKm,
		SummaryLimit: cfg.SummaryLimit,
	})

	publisher, closePublisher := app.NewAlertPublisher(cfg, log)
	defer func() {
		if err := closePublisher(); err != nil {
			log.Error().Err(err).Msg("failed to close alert publisher")
		}
	}()

	alerts := alert.NewService(alert.ServiceConfig{
		AirQuality: airQuality,
		Emitter:    alert.NewEmitter(alert.EmitterConfig{Threshold: cfg.AlertThreshold, Clock: clock}),
		Repository: backends.Alerts,
		Publisher:  publisher,
		Logger:     log.With().Str("component", "alert").Logger(),
	})

	forecaster, err := app.NewForecaster(cfg, backends, clock)
	if err != nil {
		return err
	}
	registry := app.NewJobRegistry(forecaster)

	dispatcher, err := newDispatcher(ctx, cfg, registry, backends, clock, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := dispatcher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close job dispatcher")
		}
	}()

	gateway := jobs.NewGateway(jobs.GatewayConfig{
		Registry:   registry,
		Dispatcher: dispatcher,
		Store:      backends.StatusStore,
		Clock:      clock,
		Logger:     log.With().Str("component", "jobs").Logger(),
	})

	router := api.NewRouter(api.RouterConfig{
		ServiceName:     serviceName,
		Logger:          log,
		Metrics:         metrics,
		RequireTLS:      cfg.RequireTLS,
		AirQuality:      airQuality,
		Alerts:          alerts,
		Observations:    observation.NewService(backends.Observations),
		Forecasts:       forecaster,
		Jobs:            gateway,
		JobRegistry:     registry,
		DefaultRadiusKm: cfg.DefaultRadiusKm,
		Ops: handler.OpsConfig{
			Version:   Version,
			BuildTime: BuildTime,
			Checks:    backends.Checks,
			Registry:  backends.Dependencies,
			Clock:     clock,
		},
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}

// closingDispatcher is a jobs.Dispatcher that must be closed on shutdown.
type closingDispatcher interface {
	jobs.Dispatcher
	Close() error
}

// newDispatcher returns the configured job dispatcher. With the memory
// backend the jobs run in this process on an embedded runner.
func newDispatcher(
	ctx context.Context,
	cfg *config.Config,
	registry *jobs.Registry,
	backends *app.Backends,
	clock clockwork.Clock,
	log zerolog.Logger,
) (closingDispatcher, error) {
	if cfg.JobBackend == config.BackendPubSub {
		d, err := jobs.NewPubSubDispatcher(ctx, jobs.PubSubDispatcherConfig{
			ProjectID: cfg.PubSubProject,
			Topic:     cfg.PubSubTopic,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("topic", cfg.PubSubTopic).Msg("dispatching jobs to pubsub")
		return d, nil
	}

	queue := jobs.NewInMemoryQueue(jobs.WithCapacity(cfg.QueueSize))
	runner := jobs.NewRunner(jobs.RunnerConfig{
		Registry: registry,
		Store:    backends.StatusStore,
		Clock:    clock,
		Logger:   log.With().Str("component", "runner").Logger(),
		Timeout:  cfg.JobTimeout,
	})
	go runner.Consume(ctx, queue, cfg.WorkerConcurrency)
	log.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("running jobs in process")
	return queue, nil
}
