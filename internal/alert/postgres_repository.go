package alert

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airwatch/airwatch/internal/airquality"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alert repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save inserts an alert.
func (r *PostgresRepository) Save(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO air_quality_alerts (
			id, measurement_id, aqi_value, level, aqi_level,
			message, created_at, is_read, profile_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var profileID *string
	if a.Profile != nil {
		profileID = &a.Profile.ID
	}

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Measurement.ID,
		a.AQI,
		string(a.Severity),
		int32(a.AQILevel),
		a.Message,
		a.CreatedAt,
		a.Read,
		profileID,
	)
	return err
}

// Recent returns the newest alerts with their measurement and owner.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT
			a.id, a.aqi_value, a.level, a.aqi_level, a.message, a.created_at, a.is_read,
			m.id, m.observed_at,
			ST_Y(m.location::geometry), ST_X(m.location::geometry),
			m.aqi, m.pm25, m.no2, m.o3,
			p.id, u.id, u.username
		FROM air_quality_alerts a
		JOIN air_quality_measurements m ON m.id = a.measurement_id
		LEFT JOIN user_profiles p ON p.id = a.profile_id
		LEFT JOIN users u ON u.id = p.user_id
		ORDER BY a.created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]*Alert, 0, limit)
	for rows.Next() {
		var (
			a         Alert
			severity  string
			aqiLevel  int32
			profileID *string
			userID    *string
			username  *string
		)
		err := rows.Scan(
			&a.ID,
			&a.AQI,
			&severity,
			&aqiLevel,
			&a.Message,
			&a.CreatedAt,
			&a.Read,
			&a.Measurement.ID,
			&a.Measurement.Timestamp,
			&a.Measurement.Location.Lat,
			&a.Measurement.Location.Lon,
			&a.Measurement.AQI,
			&a.Measurement.PM25,
			&a.Measurement.NO2,
			&a.Measurement.O3,
			&profileID,
			&userID,
			&username,
		)
		if err != nil {
			return nil, err
		}

		a.Severity = Severity(severity)
		a.AQILevel = airquality.Level(aqiLevel)
		a.Profile = buildProfile(profileID, userID, username)
		alerts = append(alerts, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

// buildProfile assembles the optional owner from nullable join columns.
func buildProfile(profileID, userID, username *string) *Profile {
	if profileID == nil {
		return nil
	}
	p := &Profile{ID: *profileID}
	if userID != nil {
		p.User = &User{ID: *userID}
		if username != nil {
			p.User.Username = *username
		}
	}
	return p
}

var _ Repository = (*PostgresRepository)(nil)
