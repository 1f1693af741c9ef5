// Package main provides the entrypoint for the AirWatch job worker.
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/app"
	"github.com/airwatch/airwatch/internal/config"
	"github.com/airwatch/airwatch/internal/jobs"
	"github.com/airwatch/airwatch/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "airwatch-worker").
		Str("version", Version).
		Logger()

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("worker exited")
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
	log.Info().Str("build_time", BuildTime).Str("env", cfg.Env).Msg("starting AirWatch worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := worker.NewMetrics(reg)

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

	forecaster, err := app.NewForecaster(cfg, backends, clock)
	if err != nil {
		return err
	}
	registry := app.NewJobRegistry(forecaster)

	runner := jobs.NewRunner(jobs.RunnerConfig{
		Registry: registry,
		Store:    backends.StatusStore,
		Clock:    clock,
		Logger:   log.With().Str("component", "runner").Logger(),
		Observer: metrics,
		Timeout:  cfg.JobTimeout,
	})

	server := worker.NewHealthServer(cfg.WorkerAddr, Version, reg)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
			stop()
		}
	}()

	if cfg.JobBackend == config.BackendPubSub {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProject,
			SubscriptionName: cfg.PubSubSubscription,
			Processor:        runner,
			Metrics:          metrics,
			Logger:           log.With().Str("component", "pubsub").Logger(),
			MaxOutstanding:   cfg.WorkerConcurrency,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := handler.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub receive failed")
				stop()
			}
		}()
	} else {
		log.Warn().
			Str("job_backend", cfg.JobBackend).
			Msg("memory job backend runs inside the API process; worker is idle")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("worker stopped")
	return nil
}
