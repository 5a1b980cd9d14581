package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/abdul-raz/Safe-Tourism/internal/db"
	"github.com/abdul-raz/Safe-Tourism/internal/facts"
	"github.com/abdul-raz/Safe-Tourism/internal/model"
	"github.com/abdul-raz/Safe-Tourism/internal/predict"
	"github.com/abdul-raz/Safe-Tourism/internal/store"
)

// environment bundles the long-lived dependencies commands share: the spatial
// pool, the predictor, and the optional history store.
type environment struct {
	pool      *pgxpool.Pool
	predictor *predict.Predictor
	history   store.Store
}

// spatialPool connects to the PostGIS facts database.
func spatialPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx, cfg.Spatial.DatabaseURL, &db.PoolConfig{
		MaxConns: cfg.Spatial.MaxConns,
		MinConns: cfg.Spatial.MinConns,
	})
	if err != nil {
		return nil, eris.Wrap(err, "connect spatial database")
	}
	return pool, nil
}

// initEnvironment wires the full prediction stack. withHistory controls
// whether the prediction history store is opened; commands that only read
// skip it.
func initEnvironment(ctx context.Context, withHistory bool) (*environment, error) {
	pool, err := spatialPool(ctx)
	if err != nil {
		return nil, err
	}

	artifact, err := model.Load(cfg.Model.Path)
	if err != nil {
		pool.Close()
		return nil, err
	}

	adapter := facts.NewPostgresAdapter(pool, cfg.Boundary)
	predictor, err := predict.New(adapter, artifact, cfg.Predict)
	if err != nil {
		pool.Close()
		return nil, err
	}

	env := &environment{pool: pool, predictor: predictor}

	if withHistory {
		history, err := store.Open(ctx, cfg.Store, &db.PoolConfig{
			MaxConns: cfg.Spatial.MaxConns,
			MinConns: cfg.Spatial.MinConns,
		})
		if err != nil {
			pool.Close()
			return nil, eris.Wrap(err, "open history store")
		}
		if err := history.Migrate(ctx); err != nil {
			history.Close()
			pool.Close()
			return nil, eris.Wrap(err, "migrate history store")
		}
		env.history = history
	}

	return env, nil
}

func (e *environment) Close() {
	if e.history != nil {
		if err := e.history.Close(); err != nil {
			zap.L().Warn("close history store", zap.Error(err))
		}
	}
	if e.pool != nil {
		e.pool.Close()
	}
}

// record saves a prediction when a history store is open. Persistence is best
// effort; a failed write never fails the prediction itself.
func (e *environment) record(ctx context.Context, result *predict.Result) {
	if e.history == nil || result == nil {
		return
	}
	if _, err := e.history.RecordPrediction(ctx, result); err != nil {
		zap.L().Warn("record prediction", zap.Error(err))
	}
}
