// Package api provides the HTTP API for AirWatch.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airwatch/airwatch/internal/airquality"
	"github.com/airwatch/airwatch/internal/alert"
	"github.com/airwatch/airwatch/internal/api/handler"
	"github.com/airwatch/airwatch/internal/api/middleware"
	"github.com/airwatch/airwatch/internal/forecast"
	"github.com/airwatch/airwatch/internal/jobs"
	"github.com/airwatch/airwatch/internal/observation"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	ServiceName string
	Logger      zerolog.Logger
	// Metrics records HTTP server metrics. Optional.
	Metrics    *middleware.Metrics
	RequireTLS bool

	AirQuality      *airquality.Service
	Alerts          *alert.Service
	Observations    *observation.Service
	Forecasts       *forecast.Forecaster
	Jobs            *jobs.Gateway
	JobRegistry     *jobs.Registry
	DefaultRadiusKm float64
	Ops             handler.OpsConfig
}

// NewRouter creates a chi router with every API route mounted under /v1.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airwatch-api"
	}

	// Order matters: the request ID must exist before tracing and logging.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))

	opsHandler := handler.NewOpsHandler(cfg.Ops)
	metadataHandler := handler.NewMetadataHandler(cfg.JobRegistry)
	airQualityHandler := handler.NewAirQualityHandler(cfg.AirQuality, cfg.Alerts, cfg.DefaultRadiusKm, cfg.Logger)
	alertHandler := handler.NewAlertHandler(cfg.Alerts, cfg.Logger)
	observationHandler := handler.NewObservationHandler(cfg.Observations, cfg.Logger)
	predictionHandler := handler.NewPredictionHandler(cfg.Forecasts, cfg.Logger)
	jobHandler := handler.NewJobHandler(cfg.Jobs, cfg.Logger)

	queryRateLimit := middleware.RateLimitByIP(middleware.QueryRateLimit)
	checkRateLimit := middleware.RateLimitByIP(middleware.CheckRateLimit)
	jobRateLimit := middleware.RateLimitByIP(middleware.JobRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Get("/metadata/enums", metadataHandler.GetEnums)

		r.Route("/air-quality", func(r chi.Router) {
			r.With(queryRateLimit).Get("/current", airQualityHandler.Current)
			r.With(queryRateLimit).Get("/measurements", airQualityHandler.Measurements)
			r.With(checkRateLimit, middleware.RequireJSON).Post("/check", airQualityHandler.Check)
		})

		r.With(queryRateLimit).Get("/alerts", alertHandler.List)

		r.Route("/observations", func(r chi.Router) {
			r.With(queryRateLimit).Get("/weather", observationHandler.Weather)
			r.With(queryRateLimit).Get("/satellite", observationHandler.Satellite)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.With(jobRateLimit, middleware.RequireJSON).Post("/", jobHandler.Submit)
			r.With(queryRateLimit).Get("/{jobId}", jobHandler.Get)
		})
		r.Route("/predictions", func(r chi.Router) {
			r.With(jobRateLimit, middleware.RequireJSON).Post("/", jobHandler.SubmitPrediction)
			r.With(queryRateLimit).Get("/", predictionHandler.History)
		})
	})

	return r
}
