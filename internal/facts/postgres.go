package facts

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/abdul-raz/Safe-Tourism/internal/config"
	"github.com/abdul-raz/Safe-Tourism/internal/db"
)

// Distances are computed in EPSG:3857 meters server-side; the radii below
// match the thresholds the model was trained with.
const (
	hazardRadiusM   = 1000
	waterRadiusM    = 500
	hospitalRadiusM = 2000
	safetyRadiusM   = 1000
)

const nearestHazardSQL = `
	SELECT
		COALESCE(MIN(ST_Distance(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857))), 99999),
		COALESCE((SELECT danger_weight FROM hazard_zones
		          ORDER BY ST_Distance(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857))
		          LIMIT 1), 0)
	FROM hazard_zones`

const hazardCountsSQL = `
	SELECT
		COUNT(CASE WHEN danger_weight > 0.7 AND
		      ST_DWithin(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857), $3) THEN 1 END),
		COUNT(CASE WHEN zone_type = 'industrial' AND
		      ST_DWithin(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857), $3) THEN 1 END),
		COUNT(CASE WHEN zone_type = 'military' AND
		      ST_DWithin(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857), $3) THEN 1 END),
		COUNT(CASE WHEN zone_type = 'water' AND
		      ST_DWithin(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857), $4) THEN 1 END),
		COALESCE(SUM(CASE WHEN ST_DWithin(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857), $3)
		             THEN danger_weight ELSE 0 END), 0)
	FROM hazard_zones`

const nearestHospitalSQL = `
	SELECT
		COALESCE(MIN(ST_Distance(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857))), 99999),
		COALESCE((SELECT safety_weight FROM pois
		          WHERE amenity = 'hospital'
		          ORDER BY ST_Distance(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857))
		          LIMIT 1), 0)
	FROM pois
	WHERE amenity = 'hospital'`

const poiCountsSQL = `
	SELECT
		COUNT(CASE WHEN amenity = 'hospital' AND
		      ST_DWithin(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857), $3) THEN 1 END),
		COALESCE(SUM(CASE WHEN ST_DWithin(geometry, ST_Transform(ST_SetSRID(ST_MakePoint($1, $2), 4326), 3857), $4)
		             THEN safety_weight ELSE 0 END), 0)
	FROM pois`

// PostgresAdapter fetches spatial facts from PostGIS.
type PostgresAdapter struct {
	pool     db.Pool
	boundary *geom.Bounds
}

// NewPostgresAdapter creates an adapter over the given pool with the monitored
// region's bounding box.
func NewPostgresAdapter(pool db.Pool, boundary config.BoundaryConfig) *PostgresAdapter {
	bounds := geom.NewBounds(geom.XY)
	bounds.Set(boundary.MinLon, boundary.MinLat, boundary.MaxLon, boundary.MaxLat)
	return &PostgresAdapter{pool: pool, boundary: bounds}
}

// Fetch implements Adapter. Any query failure is terminal and reported as
// ErrAdapterUnavailable; no partial fact group is ever returned.
func (a *PostgresAdapter) Fetch(ctx context.Context, lat, lon float64) (*HazardFacts, *PoiFacts, error) {
	hazard := &HazardFacts{}
	poi := &PoiFacts{}

	err := a.pool.QueryRow(ctx, nearestHazardSQL, lon, lat).
		Scan(&hazard.DistanceToNearestHazardM, &hazard.NearestHazardWeight)
	if err != nil {
		return nil, nil, adapterErr("nearest hazard", err)
	}

	err = a.pool.QueryRow(ctx, hazardCountsSQL, lon, lat, hazardRadiusM, waterRadiusM).Scan(
		&hazard.HighDangerZoneCount1KM,
		&hazard.IndustrialHazardCount1KM,
		&hazard.MilitaryZoneCount1KM,
		&hazard.WaterHazardCount500M,
		&hazard.WeightedHazardScore1KM,
	)
	if err != nil {
		return nil, nil, adapterErr("hazard counts", err)
	}

	err = a.pool.QueryRow(ctx, nearestHospitalSQL, lon, lat).
		Scan(&poi.DistanceToNearestHospitalM, &poi.NearestHospitalWeight)
	if err != nil {
		return nil, nil, adapterErr("nearest hospital", err)
	}

	err = a.pool.QueryRow(ctx, poiCountsSQL, lon, lat, hospitalRadiusM, safetyRadiusM).
		Scan(&poi.HospitalsWithin2KM, &poi.WeightedSafetyScore1KM)
	if err != nil {
		return nil, nil, adapterErr("poi counts", err)
	}

	// Boundary containment is a bounding-box test against the configured
	// region, computed client-side like the rest of the training data was.
	hazard.InsideBoundary = a.boundary.OverlapsPoint(geom.XY, geom.Coord{lon, lat})

	zap.L().Debug("facts: fetched",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.Float64("dist_hazard_m", hazard.DistanceToNearestHazardM),
		zap.Float64("dist_hospital_m", poi.DistanceToNearestHospitalM),
		zap.Bool("inside_boundary", hazard.InsideBoundary),
	)

	return hazard, poi, nil
}

func adapterErr(op string, cause error) error {
	return eris.Wrapf(ErrAdapterUnavailable, "facts: %s query: %v", op, cause)
}
