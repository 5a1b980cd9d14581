package zones

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ParseShapefile reads a shapefile and returns rows suitable for COPY loading
// into the dataset's table. Each row matches Dataset.Columns: text attributes,
// the parsed weight, then the EWKB geometry. Records without usable geometry
// are skipped.
func ParseShapefile(shpPath string, ds Dataset) ([][]any, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "zones: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	var rows [][]any
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		geomBytes, encErr := EncodeEWKB(shape)
		if encErr != nil || geomBytes == nil {
			skipped++
			continue
		}

		row := make([]any, 0, len(ds.TextColumns)+2)
		for _, col := range ds.TextColumns {
			row = append(row, attribute(reader, fieldIdx, col))
		}
		row = append(row, weightAttribute(reader, fieldIdx, ds), geomBytes)
		rows = append(rows, row)
	}

	if skipped > 0 {
		zap.L().Debug("zones: skipped shapefile records",
			zap.String("dataset", ds.Name),
			zap.Int("skipped", skipped),
		)
	}

	return rows, nil
}

// attribute reads one dbf attribute, nil when the field is absent or blank.
// dbf field names are limited to 10 characters, so a truncated match is
// accepted for longer column names.
func attribute(reader *shp.Reader, fieldIdx map[string]int, col string) any {
	name := strings.ToLower(col)
	idx, ok := fieldIdx[name]
	if !ok && len(name) > 10 {
		idx, ok = fieldIdx[name[:10]]
	}
	if !ok {
		return nil
	}
	val := strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
	if val == "" {
		return nil
	}
	return val
}

// weightAttribute parses the dataset's weight field, clamped to [0, 1].
// Absent or malformed values fall back to the dataset default.
func weightAttribute(reader *shp.Reader, fieldIdx map[string]int, ds Dataset) float64 {
	raw := attribute(reader, fieldIdx, ds.WeightColumn)
	s, ok := raw.(string)
	if !ok {
		return ds.DefaultWeight
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ds.DefaultWeight
	}
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
