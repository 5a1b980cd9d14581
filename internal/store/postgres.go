package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/abdul-raz/Safe-Tourism/internal/db"
	"github.com/abdul-raz/Safe-Tourism/internal/predict"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.NewPool(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: connect postgres")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests and callers that
// share one pool across subsystems.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS predictions (
	id           TEXT PRIMARY KEY,
	lat          DOUBLE PRECISION NOT NULL,
	lon          DOUBLE PRECISION NOT NULL,
	risk_label   TEXT NOT NULL,
	risk_score   DOUBLE PRECISION NOT NULL,
	alert_needed BOOLEAN NOT NULL,
	result       JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_predictions_alert ON predictions(alert_needed) WHERE alert_needed;
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "store: postgres migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) RecordPrediction(ctx context.Context, result *predict.Result) (*Record, error) {
	if result == nil {
		return nil, eris.New("store: nil prediction result")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal result")
	}

	rec := &Record{
		ID:          uuid.New().String(),
		Lat:         result.Location.Lat,
		Lon:         result.Location.Lon,
		RiskLabel:   result.RiskLabel,
		RiskScore:   result.RiskScore,
		AlertNeeded: result.AlertNeeded,
		Result:      result,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO predictions (id, lat, lon, risk_label, risk_score, alert_needed, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Lat, rec.Lon, rec.RiskLabel, rec.RiskScore, rec.AlertNeeded, string(resultJSON), rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: insert prediction")
	}
	return rec, nil
}

func (s *PostgresStore) GetPrediction(ctx context.Context, id string) (*Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, lat, lon, risk_label, risk_score, alert_needed, result, created_at
		 FROM predictions WHERE id = $1`,
		id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "id %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: get prediction %s", id)
	}
	return rec, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, lat, lon, risk_label, risk_score, alert_needed, result, created_at
		 FROM predictions ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: list predictions")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan prediction")
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "store: list predictions iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*Record, error) {
	var rec Record
	var resultJSON string

	err := row.Scan(&rec.ID, &rec.Lat, &rec.Lon, &rec.RiskLabel, &rec.RiskScore, &rec.AlertNeeded, &resultJSON, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal result")
	}
	return &rec, nil
}
