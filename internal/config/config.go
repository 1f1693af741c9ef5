// Package config loads service configuration from defaults, an optional YAML
// file and AIRWATCH_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/airwatch/airwatch/internal/database"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Backend names.
const (
	BackendMemory   = "memory"
	BackendNone     = "none"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendPubSub   = "pubsub"
	BackendLog      = "log"
	BackendKafka    = "kafka"
)

// Config is the complete service configuration. Keys are flat so that
// AIRWATCH_DB_HOST maps to db_host.
type Config struct {
	Env      string `koanf:"env"`
	HTTPAddr string `koanf:"http_addr"`
	// WorkerAddr is the worker's health and metrics listener.
	WorkerAddr string `koanf:"worker_addr"`
	LogLevel   string `koanf:"log_level"`

	OTelEnabled     bool    `koanf:"otel_enabled"`
	OTelEndpoint    string  `koanf:"otel_endpoint"`
	OTelSampleRatio float64 `koanf:"otel_sample_ratio"`

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool `koanf:"require_tls"`

	StoreBackend      string        `koanf:"store_backend"`
	StoreTimeout      time.Duration `koanf:"store_timeout"`
	DBHost            string        `koanf:"db_host"`
	DBPort            int           `koanf:"db_port"`
	DBUser            string        `koanf:"db_user"`
	DBPassword        string        `koanf:"db_password"`
	DBName            string        `koanf:"db_name"`
	DBSSLMode         string        `koanf:"db_ssl_mode"`
	DBMaxConns        int           `koanf:"db_max_conns"`
	DBMinConns        int           `koanf:"db_min_conns"`
	DBConnMaxLifetime time.Duration `koanf:"db_conn_max_lifetime"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	CacheBackend string        `koanf:"cache_backend"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`

	DefaultRadiusKm float64 `koanf:"default_radius_km"`
	MaxRadiusKm     float64 `koanf:"max_radius_km"`
	SummaryLimit    int     `koanf:"summary_limit"`

	AlertThreshold  float64  `koanf:"alert_threshold"`
	AlertPublisher  string   `koanf:"alert_publisher"`
	KafkaBrokers    []string `koanf:"kafka_brokers"`
	KafkaAlertTopic string   `koanf:"kafka_alert_topic"`

	JobBackend         string        `koanf:"job_backend"`
	JobStatusBackend   string        `koanf:"job_status_backend"`
	JobStatusTTL       time.Duration `koanf:"job_status_ttl"`
	JobTimeout         time.Duration `koanf:"job_timeout"`
	PubSubProject      string        `koanf:"pubsub_project"`
	PubSubTopic        string        `koanf:"pubsub_topic"`
	PubSubSubscription string        `koanf:"pubsub_subscription"`
	QueueSize          int           `koanf:"queue_size"`
	WorkerConcurrency  int           `koanf:"worker_concurrency"`

	// ForecastCities adds "name,lat,lon" entries to the built-in gazetteer.
	// AIRWATCH_FORECAST_CITIES separates entries with semicolons.
	ForecastCities       []string      `koanf:"forecast_cities"`
	ForecastModelVersion string        `koanf:"forecast_model_version"`
	ForecastHorizon      time.Duration `koanf:"forecast_horizon"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Env:        "development",
		HTTPAddr:   ":8080",
		WorkerAddr: ":8081",
		LogLevel:   "info",

		OTelEndpoint:    "localhost:4317",
		OTelSampleRatio: 1,

		StoreBackend:      BackendMemory,
		StoreTimeout:      2 * time.Second,
		DBHost:            "localhost",
		DBPort:            5432,
		DBUser:            "airwatch",
		DBPassword:        "localdev",
		DBName:            "airwatch",
		DBSSLMode:         "disable",
		DBMaxConns:        10,
		DBMinConns:        2,
		DBConnMaxLifetime: 5 * time.Minute,

		RedisAddr: "localhost:6379",

		CacheBackend: BackendMemory,
		CacheTTL:     3 * time.Minute,

		DefaultRadiusKm: 10,
		MaxRadiusKm:     500,
		SummaryLimit:    5,

		AlertThreshold:  100,
		AlertPublisher:  BackendLog,
		KafkaAlertTopic: "airwatch.alerts",

		JobBackend:         BackendMemory,
		JobStatusBackend:   BackendMemory,
		JobStatusTTL:       24 * time.Hour,
		JobTimeout:         5 * time.Minute,
		PubSubTopic:        "airwatch-jobs",
		PubSubSubscription: "airwatch-jobs-worker",
		QueueSize:          1024,
		WorkerConcurrency:  4,

		ForecastModelVersion: "v1.0",
		ForecastHorizon:      time.Hour,
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.HTTPAddr != "", "http_addr must not be empty")
	check(oneOf(c.StoreBackend, BackendMemory, BackendPostgres), "store_backend %q must be memory or postgres", c.StoreBackend)
	check(oneOf(c.CacheBackend, BackendNone, BackendMemory, BackendRedis), "cache_backend %q must be none, memory or redis", c.CacheBackend)
	check(oneOf(c.AlertPublisher, BackendLog, BackendKafka), "alert_publisher %q must be log or kafka", c.AlertPublisher)
	check(oneOf(c.JobBackend, BackendMemory, BackendPubSub), "job_backend %q must be memory or pubsub", c.JobBackend)
	check(oneOf(c.JobStatusBackend, BackendMemory, BackendRedis), "job_status_backend %q must be memory or redis", c.JobStatusBackend)
	check(c.DefaultRadiusKm > 0, "default_radius_km must be positive")
	check(c.MaxRadiusKm >= c.DefaultRadiusKm, "max_radius_km must be at least default_radius_km")
	check(c.SummaryLimit > 0, "summary_limit must be positive")
	check(c.AlertThreshold >= 0, "alert_threshold must not be negative")
	check(c.OTelSampleRatio >= 0 && c.OTelSampleRatio <= 1, "otel_sample_ratio must be between 0 and 1")
	check(c.QueueSize > 0, "queue_size must be positive")
	check(c.WorkerConcurrency > 0, "worker_concurrency must be positive")
	check(c.ForecastModelVersion != "", "forecast_model_version must not be empty")
	check(c.ForecastHorizon > 0, "forecast_horizon must be positive")

	if c.AlertPublisher == BackendKafka {
		check(len(c.KafkaBrokers) > 0, "kafka_brokers is required when alert_publisher is kafka")
	}
	if c.JobBackend == BackendPubSub {
		check(c.PubSubProject != "", "pubsub_project is required when job_backend is pubsub")
		// Status written by a separate worker process must be shared.
		check(c.JobStatusBackend == BackendRedis, "job_status_backend must be redis when job_backend is pubsub")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Database returns the PostgreSQL connection settings.
func (c *Config) Database() database.Config {
	return database.Config{
		Host:            c.DBHost,
		Port:            c.DBPort,
		User:            c.DBUser,
		Password:        c.DBPassword,
		Database:        c.DBName,
		SSLMode:         c.DBSSLMode,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}

// Redis returns the Redis connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c *Config) NeedsRedis() bool {
	return c.CacheBackend == BackendRedis || c.JobStatusBackend == BackendRedis
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
