package airquality

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airwatch/airwatch/internal/geo"
)

// PostgresStore reads measurements from a PostGIS table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostGIS measurement store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const measurementColumns = `
	id, observed_at,
	ST_Y(location::geometry) AS lat, ST_X(location::geometry) AS lon,
	aqi, pm25, no2, o3, so2, co, aqi_level
`

// nearestSQL selects measurements with a non-null AQI around ($1 lat, $2 lon)
// closest first. $3 is the radius in km and must stay float8: an untyped
// parameter compared with 0 is inferred as int4 and truncated.
const nearestSQL = `
	SELECT` + measurementColumns + `
	FROM air_quality_measurements
	WHERE aqi IS NOT NULL
	  AND ($3::float8 <= 0 OR ST_DWithin(
			location::geography,
			ST_SetSRID(ST_MakePoint($2::float8, $1::float8), 4326)::geography,
			$3::float8 * 1000))
	ORDER BY location::geography <-> ST_SetSRID(ST_MakePoint($2::float8, $1::float8), 4326)::geography,
		observed_at DESC, id
	LIMIT $4
`

// Nearest returns measurements with a non-null AQI, closest first.
func (s *PostgresStore) Nearest(ctx context.Context, q NearestQuery) ([]Measurement, error) {
	rows, err := s.pool.Query(ctx, nearestSQL, q.Origin.Lat, q.Origin.Lon, q.RadiusKm, limitOrAll(q.Limit))
	if err != nil {
		return nil, err
	}
	return collectMeasurements(rows)
}

// Recent returns measurements ordered newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Measurement, error) {
	query := `
		SELECT` + measurementColumns + `
		FROM air_quality_measurements
		ORDER BY observed_at DESC, id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limitOrAll(limit))
	if err != nil {
		return nil, err
	}
	return collectMeasurements(rows)
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// limitOrAll maps a non-positive limit to NULL, which LIMIT treats as no limit.
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

func collectMeasurements(rows pgx.Rows) ([]Measurement, error) {
	defer rows.Close()

	measurements := make([]Measurement, 0)
	for rows.Next() {
		var row measurementRow
		err := rows.Scan(
			&row.ID,
			&row.ObservedAt,
			&row.Lat,
			&row.Lon,
			&row.AQI,
			&row.PM25,
			&row.NO2,
			&row.O3,
			&row.SO2,
			&row.CO,
			&row.Level,
		)
		if err != nil {
			return nil, err
		}
		measurements = append(measurements, row.toMeasurement())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return measurements, nil
}

// measurementRow is the scanned shape of a measurement row.
type measurementRow struct {
	ID         int64
	ObservedAt time.Time
	Lat        float64
	Lon        float64
	AQI        *float64
	PM25       *float64
	NO2        *float64
	O3         *float64
	SO2        *float64
	CO         *float64
	Level      *int32
}

func (r measurementRow) toMeasurement() Measurement {
	m := Measurement{
		ID:        r.ID,
		Timestamp: r.ObservedAt.UTC(),
		Location:  geo.Point{Lat: r.Lat, Lon: r.Lon},
		AQI:       r.AQI,
		PM25:      r.PM25,
		NO2:       r.NO2,
		O3:        r.O3,
		SO2:       r.SO2,
		CO:        r.CO,
	}
	if r.Level != nil {
		if level, ok := LevelFromIndex(int(*r.Level)); ok {
			m.StoredLevel = &level
		}
	}
	return m
}

var _ Store = (*PostgresStore)(nil)
