// Package store persists prediction history. Two backends are provided:
// Postgres for shared deployments and SQLite for single-node use.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/abdul-raz/Safe-Tourism/internal/config"
	"github.com/abdul-raz/Safe-Tourism/internal/db"
	"github.com/abdul-raz/Safe-Tourism/internal/predict"
)

// ErrNotFound signals a lookup for a prediction that was never recorded.
var ErrNotFound = eris.New("store: prediction not found")

// Record is one persisted prediction.
type Record struct {
	ID          string          `json:"id"`
	Lat         float64         `json:"lat"`
	Lon         float64         `json:"lon"`
	RiskLabel   string          `json:"risk_label"`
	RiskScore   float64         `json:"risk_score"`
	AlertNeeded bool            `json:"alert_needed"`
	Result      *predict.Result `json:"result"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Store persists and retrieves prediction records.
type Store interface {
	Migrate(ctx context.Context) error
	RecordPrediction(ctx context.Context, result *predict.Result) (*Record, error)
	GetPrediction(ctx context.Context, id string) (*Record, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open creates the backend named by the configuration.
func Open(ctx context.Context, cfg config.StoreConfig, poolCfg *db.PoolConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, poolCfg)
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
