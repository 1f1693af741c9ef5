package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airwatch/airwatch/internal/config"
)

// isolate points the loader at an empty directory so no stray .env is read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AIRWATCH_ENV_FILE", filepath.Join(dir, "missing.env"))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, config.BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 3*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10.0, cfg.DefaultRadiusKm)
	assert.Equal(t, 5, cfg.SummaryLimit)
	assert.Equal(t, 100.0, cfg.AlertThreshold)
	assert.False(t, cfg.NeedsRedis())
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("AIRWATCH_HTTP_ADDR", ":9090")
	t.Setenv("AIRWATCH_DB_PORT", "6543")
	t.Setenv("AIRWATCH_CACHE_BACKEND", "redis")
	t.Setenv("AIRWATCH_CACHE_TTL", "90s")
	t.Setenv("AIRWATCH_MAX_RADIUS_KM", "250.5")
	t.Setenv("AIRWATCH_ALERT_PUBLISHER", "kafka")
	t.Setenv("AIRWATCH_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("AIRWATCH_FORECAST_CITIES", "Lyon,45.764,4.8357;Oslo,59.9139,10.7522")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 6543, cfg.Database().Port)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 250.5, cfg.MaxRadiusKm)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"Lyon,45.764,4.8357", "Oslo,59.9139,10.7522"}, cfg.ForecastCities)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "airwatch.yaml")
	yamlContent := `
http_addr: ":7070"
summary_limit: 8
job_status_ttl: 2h
forecast_cities:
  - "Lyon,45.764,4.8357"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))
	t.Setenv("AIRWATCH_CONFIG", path)
	t.Setenv("AIRWATCH_SUMMARY_LIMIT", "3")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.SummaryLimit)
	assert.Equal(t, 2*time.Hour, cfg.JobStatusTTL)
	assert.Equal(t, []string{"Lyon,45.764,4.8357"}, cfg.ForecastCities)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("AIRWATCH_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("AIRWATCH_ENV_FILE", envFile)
	t.Cleanup(func() { _ = os.Unsetenv("AIRWATCH_LOG_LEVEL") })

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)
	t.Setenv("AIRWATCH_CONFIG", "/nonexistent/airwatch.yaml")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown store", func(c *config.Config) { c.StoreBackend = "mysql" }},
		{"kafka without brokers", func(c *config.Config) { c.AlertPublisher = config.BackendKafka }},
		{"pubsub without project", func(c *config.Config) {
			c.JobBackend = config.BackendPubSub
			c.JobStatusBackend = config.BackendRedis
		}},
		{"pubsub with memory status", func(c *config.Config) {
			c.JobBackend = config.BackendPubSub
			c.PubSubProject = "p"
		}},
		{"max below default radius", func(c *config.Config) { c.MaxRadiusKm = 1 }},
		{"zero summary limit", func(c *config.Config) { c.SummaryLimit = 0 }},
		{"empty model version", func(c *config.Config) { c.ForecastModelVersion = "" }},
		{"zero forecast horizon", func(c *config.Config) { c.ForecastHorizon = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}

	assert.NoError(t, config.New().Validate())
}
