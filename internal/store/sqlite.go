package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/abdul-raz/Safe-Tourism/internal/predict"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS predictions (
	id           TEXT PRIMARY KEY,
	lat          REAL NOT NULL,
	lon          REAL NOT NULL,
	risk_label   TEXT NOT NULL,
	risk_score   REAL NOT NULL,
	alert_needed INTEGER NOT NULL,
	result       TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordPrediction(ctx context.Context, result *predict.Result) (*Record, error) {
	if result == nil {
		return nil, eris.New("sqlite: nil prediction result")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal result")
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, lat, lon, risk_label, risk_score, alert_needed, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Lat, rec.Lon, rec.RiskLabel, rec.RiskScore, rec.AlertNeeded, string(resultJSON), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert prediction")
	}
	return rec, nil
}

func (s *SQLiteStore) GetPrediction(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lat, lon, risk_label, risk_score, alert_needed, result, created_at
		 FROM predictions WHERE id = ?`,
		id,
	)
	rec, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "id %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get prediction %s", id)
	}
	return rec, nil
}

func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lat, lon, risk_label, risk_score, alert_needed, result, created_at
		 FROM predictions ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list predictions")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan prediction")
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list predictions iterate")
}

// scanSQLiteRecord reads a row with the timestamp stored as RFC3339 text.
func scanSQLiteRecord(row scannable) (*Record, error) {
	var rec Record
	var resultJSON, createdAt string

	err := row.Scan(&rec.ID, &rec.Lat, &rec.Lon, &rec.RiskLabel, &rec.RiskScore, &rec.AlertNeeded, &resultJSON, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: parse created_at")
	}
	return &rec, nil
}
