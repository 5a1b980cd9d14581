package zones

import (
	"math"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"
)

const webMercatorRadiusM = 6378137.0

// webMercator projects a WGS84 lon/lat pair to EPSG:3857 meters. The spatial
// tables store 3857 so distance queries work in meters without a transform on
// the stored side.
func webMercator(lon, lat float64) (x, y float64) {
	x = webMercatorRadiusM * lon * math.Pi / 180
	y = webMercatorRadiusM * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y
}

// EncodeEWKB converts a go-shp geometry (WGS84 lon/lat) to EWKB bytes
// projected to EPSG:3857. Returns nil, nil for unsupported or empty shapes;
// only points and polygons occur in the supported datasets.
func EncodeEWKB(shape shp.Shape) ([]byte, error) {
	if shape == nil {
		return nil, nil
	}

	var g geom.T

	switch s := shape.(type) {
	case *shp.Point:
		x, y := webMercator(s.X, s.Y)
		g = geom.NewPointFlat(geom.XY, []float64{x, y}).SetSRID(3857)

	case *shp.Polygon:
		g = polygonToMultiPolygon(s)

	default:
		return nil, nil
	}

	if g == nil {
		return nil, nil
	}

	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "zones: encode EWKB")
	}
	return data, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a projected
// geom.MultiPolygon, one polygon per part. Malformed parts are skipped rather
// than failing the whole record.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(3857)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			x, y := webMercator(p.Points[j].X, p.Points[j].Y)
			flat = append(flat, x, y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("zones: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("zones: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
