// Package zones loads hazard-zone and point-of-interest shapefiles into the
// PostGIS tables the spatial facts adapter queries.
package zones

// Dataset describes one importable shapefile product and its target table.
type Dataset struct {
	Name          string   // CLI name, e.g. "hazards"
	Table         string   // target table
	TextColumns   []string // dbf attributes copied as text
	WeightColumn  string   // dbf attribute parsed as float64
	DefaultWeight float64  // used when the weight attribute is absent or malformed
	GeomType      string   // "POINT" or "MULTIPOLYGON"
}

// Datasets lists the two products the risk queries depend on.
var Datasets = []Dataset{
	{
		Name:          "hazards",
		Table:         "hazard_zones",
		TextColumns:   []string{"name", "zone_type"},
		WeightColumn:  "danger_weight",
		DefaultWeight: 0.5,
		GeomType:      "MULTIPOLYGON",
	},
	{
		Name:          "pois",
		Table:         "pois",
		TextColumns:   []string{"name", "amenity"},
		WeightColumn:  "safety_weight",
		DefaultWeight: 0.5,
		GeomType:      "POINT",
	},
}

// DatasetByName looks up a dataset by its CLI name.
func DatasetByName(name string) (Dataset, bool) {
	for _, d := range Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return Dataset{}, false
}

// Columns returns the target column list in COPY order, geometry last.
func (d Dataset) Columns() []string {
	cols := make([]string, 0, len(d.TextColumns)+2)
	cols = append(cols, d.TextColumns...)
	cols = append(cols, d.WeightColumn, "geometry")
	return cols
}
