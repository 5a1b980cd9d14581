// Package facts retrieves spatial measurements for a coordinate: hazard-zone
// proximity and point-of-interest coverage. These fact groups are the raw
// input of the risk feature vector.
package facts

import (
	"context"

	"github.com/rotisserie/eris"
)

// NoneDistanceM is the sentinel distance reported when no hazard or hospital
// exists in the monitored dataset.
const NoneDistanceM = 99999

// ErrAdapterUnavailable signals that spatial facts could not be retrieved
// (connectivity, timeout, or query failure). Terminal for the request; retry
// policy belongs to the caller.
var ErrAdapterUnavailable = eris.New("facts: spatial adapter unavailable")

// HazardFacts holds hazard-zone measurements around one coordinate.
type HazardFacts struct {
	DistanceToNearestHazardM float64 `json:"distance_to_nearest_hazard_m"`
	NearestHazardWeight      float64 `json:"nearest_hazard_weight"`
	HighDangerZoneCount1KM   int     `json:"high_danger_zone_count_1km"`
	IndustrialHazardCount1KM int     `json:"industrial_hazard_count_1km"`
	MilitaryZoneCount1KM     int     `json:"military_zone_count_1km"`
	WaterHazardCount500M     int     `json:"water_hazard_count_500m"`
	WeightedHazardScore1KM   float64 `json:"weighted_hazard_score_1km"`
	InsideBoundary           bool    `json:"inside_boundary"`
}

// PoiFacts holds point-of-interest measurements around one coordinate.
type PoiFacts struct {
	DistanceToNearestHospitalM float64 `json:"distance_to_nearest_hospital_m"`
	NearestHospitalWeight      float64 `json:"nearest_hospital_weight"`
	HospitalsWithin2KM         int     `json:"hospitals_within_2km"`
	WeightedSafetyScore1KM     float64 `json:"weighted_safety_score_1km"`
}

// Adapter fetches both fact groups for a WGS84 coordinate. Implementations
// must return both groups or neither; a partial result is a contract
// violation downstream.
type Adapter interface {
	Fetch(ctx context.Context, lat, lon float64) (*HazardFacts, *PoiFacts, error)
}
