package zones

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/abdul-raz/Safe-Tourism/internal/db"
)

// Importer loads zone shapefiles into the spatial database.
type Importer struct {
	pool db.Pool
}

// NewImporter wraps a database pool.
func NewImporter(pool db.Pool) *Importer {
	return &Importer{pool: pool}
}

// schemaStatements create the spatial tables and indexes. Statements are
// idempotent so EnsureSchema can run on every import.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS hazard_zones (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT,
		zone_type     TEXT,
		danger_weight DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		geometry      geometry(MultiPolygon, 3857) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pois (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT,
		amenity       TEXT,
		safety_weight DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		geometry      geometry(Point, 3857) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_hazard_zones_geometry ON hazard_zones USING GIST (geometry)`,
	`CREATE INDEX IF NOT EXISTS idx_hazard_zones_zone_type ON hazard_zones (zone_type)`,
	`CREATE INDEX IF NOT EXISTS idx_pois_geometry ON pois USING GIST (geometry)`,
	`CREATE INDEX IF NOT EXISTS idx_pois_amenity ON pois (amenity)`,
}

// EnsureSchema creates the spatial tables and indexes if missing.
func (im *Importer) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := im.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrapf(err, "zones: ensure schema")
		}
	}
	return nil
}

// Import parses one shapefile and bulk-loads its rows. Returns the number of
// rows loaded.
func (im *Importer) Import(ctx context.Context, ds Dataset, shpPath string) (int64, error) {
	rows, err := ParseShapefile(shpPath, ds)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		zap.L().Warn("zones: shapefile contained no loadable records",
			zap.String("dataset", ds.Name),
			zap.String("path", shpPath),
		)
		return 0, nil
	}

	n, err := db.CopyFrom(ctx, im.pool, ds.Table, ds.Columns(), rows)
	if err != nil {
		return 0, eris.Wrapf(err, "zones: load %s", ds.Name)
	}

	zap.L().Info("zones: imported shapefile",
		zap.String("dataset", ds.Name),
		zap.String("path", shpPath),
		zap.Int64("rows", n),
	)
	return n, nil
}
