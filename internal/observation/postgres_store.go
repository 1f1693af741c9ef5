package observation

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airwatch/airwatch/internal/geo"
)

// PostgresStore reads observations from PostGIS tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostGIS observation store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const weatherSQL = `
	SELECT id, observed_at,
		ST_Y(location::geometry), ST_X(location::geometry),
		temperature, humidity, wind_speed, pressure
	FROM weather_data
	WHERE $1::timestamptz IS NULL OR observed_at >= $1::timestamptz
	ORDER BY observed_at DESC, id DESC
	LIMIT $2
`

const satelliteSQL = `
	SELECT id, observed_at,
		ST_Y(location::geometry), ST_X(location::geometry),
		no2, o3, so2, co, COALESCE(source_url, ''), data_quality
	FROM tempo_satellite_data
	WHERE $1::timestamptz IS NULL OR observed_at >= $1::timestamptz
	ORDER BY observed_at DESC, id DESC
	LIMIT $2
`

// Weather returns weather records newest first.
func (s *PostgresStore) Weather(ctx context.Context, f Filter) ([]Weather, error) {
	rows, err := s.pool.Query(ctx, weatherSQL, since(f), limitOrAll(f.Limit))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Weather, error) {
		var (
			w        Weather
			lat, lon float64
		)
		err := row.Scan(&w.ID, &w.Timestamp, &lat, &lon, &w.Temperature, &w.Humidity, &w.WindSpeed, &w.Pressure)
		w.Timestamp = w.Timestamp.UTC()
		w.Location = geo.Point{Lat: lat, Lon: lon}
		return w, err
	})
}

// Satellite returns satellite records newest first.
func (s *PostgresStore) Satellite(ctx context.Context, f Filter) ([]Satellite, error) {
	rows, err := s.pool.Query(ctx, satelliteSQL, since(f), limitOrAll(f.Limit))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Satellite, error) {
		var (
			r        Satellite
			lat, lon float64
		)
		err := row.Scan(&r.ID, &r.Timestamp, &lat, &lon, &r.NO2, &r.O3, &r.SO2, &r.CO, &r.SourceURL, &r.DataQuality)
		r.Timestamp = r.Timestamp.UTC()
		r.Location = geo.Point{Lat: lat, Lon: lon}
		return r, err
	})
}

// since maps a zero Since to NULL.
func since(f Filter) *time.Time {
	if f.Since.IsZero() {
		return nil
	}
	return &f.Since
}

// limitOrAll maps a non-positive limit to NULL, which LIMIT treats as no limit.
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

var _ Store = (*PostgresStore)(nil)
