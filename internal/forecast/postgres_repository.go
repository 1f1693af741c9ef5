package forecast

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL prediction repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const insertPredictionSQL = `
	INSERT INTO predictions (
		id, city, predicted_aqi, level, confidence, samples,
		measurement_id, model_version, predicted_for, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

const listPredictionsSQL = `
	SELECT id::text, city, predicted_aqi, level, confidence, samples,
		measurement_id, model_version, predicted_for, created_at
	FROM predictions
	WHERE ($1::text IS NULL OR lower(city) = lower($1::text))
	  AND ($2::text IS NULL OR model_version = $2::text)
	ORDER BY created_at DESC, id
	LIMIT $3
`

// Save inserts a prediction.
func (r *PostgresRepository) Save(ctx context.Context, p *Prediction) error {
	var measurementID *int64
	if p.MeasurementID != 0 {
		measurementID = &p.MeasurementID
	}

	_, err := r.pool.Exec(ctx, insertPredictionSQL,
		p.ID,
		p.City,
		p.PredictedAQI,
		p.Level,
		p.Confidence,
		int32(p.Samples),
		measurementID,
		p.ModelVersion,
		p.PredictedFor,
		p.CreatedAt,
	)
	return err
}

// List returns the newest matching predictions.
func (r *PostgresRepository) List(ctx context.Context, q HistoryQuery) ([]*Prediction, error) {
	var limit *int
	if q.Limit > 0 {
		limit = &q.Limit
	}

	rows, err := r.pool.Query(ctx, listPredictionsSQL, optional(q.City), optional(q.ModelVersion), limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Prediction, error) {
		var (
			p             Prediction
			samples       int32
			measurementID *int64
		)
		err := row.Scan(
			&p.ID,
			&p.City,
			&p.PredictedAQI,
			&p.Level,
			&p.Confidence,
			&samples,
			&measurementID,
			&p.ModelVersion,
			&p.PredictedFor,
			&p.CreatedAt,
		)
		p.Samples = int(samples)
		if measurementID != nil {
			p.MeasurementID = *measurementID
		}
		p.PredictedFor = p.PredictedFor.UTC()
		p.CreatedAt = p.CreatedAt.UTC()
		return &p, err
	})
}

// optional maps an empty filter to NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ Repository = (*PostgresRepository)(nil)
