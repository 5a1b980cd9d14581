// Package feature builds the fixed-order numeric vector consumed by the risk
// classifier. The ordering is frozen at training time; changing it silently
// corrupts predictions, so the model artifact re-verifies it at load.
package feature

import (
	"github.com/rotisserie/eris"

	"github.com/abdul-raz/Safe-Tourism/internal/facts"
)

// ErrInvalidFacts signals that a fact group was missing. This is an adapter
// contract violation, terminal for the request.
var ErrInvalidFacts = eris.New("feature: invalid spatial facts")

// Count is the fixed length of the feature vector.
const Count = 19

// Indices into the feature vector. Positions 0-11 are direct facts,
// 12-18 are derived.
const (
	IdxDistanceToNearestHazardM = iota
	IdxNearestHazardWeight
	IdxDistanceToNearestHospitalM
	IdxNearestHospitalWeight
	IdxHighDangerZoneCount1KM
	IdxHospitalsWithin2KM
	IdxIndustrialHazardCount1KM
	IdxMilitaryZoneCount1KM
	IdxWaterHazardCount500M
	IdxWeightedHazardScore1KM
	IdxWeightedSafetyScore1KM
	IdxInsideBoundary
	IdxHazardToSafetyRatio
	IdxHospitalAccessibility
	IdxHazardProximity
	IdxSafetyDensity
	IdxBoundaryPenalty
	IdxCriticalHazardExposure
	IdxEmergencyResponseScore
)

var names = [Count]string{
	"distance_to_nearest_hazard_m",
	"nearest_hazard_weight",
	"distance_to_nearest_hospital_m",
	"nearest_hospital_weight",
	"high_danger_zone_count_1km",
	"hospitals_within_2km",
	"industrial_hazard_count_1km",
	"military_zone_count_1km",
	"water_hazard_count_500m",
	"weighted_hazard_score_1km",
	"weighted_safety_score_1km",
	"inside_boundary",
	"hazard_to_safety_ratio",
	"hospital_accessibility",
	"hazard_proximity",
	"safety_density",
	"boundary_penalty",
	"critical_hazard_exposure",
	"emergency_response_score",
}

// Vector is an ordered sequence of exactly Count features.
type Vector []float64

// Names returns the canonical feature name ordering.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}

// Build turns the two fact groups into the fixed-order feature vector.
// Pure: no I/O, no randomness. The +0.001 and +1 offsets in the derived
// features are deliberate smoothing so zero distances and zero counts
// saturate instead of dividing by zero.
func Build(hazard *facts.HazardFacts, poi *facts.PoiFacts) (Vector, error) {
	if hazard == nil || poi == nil {
		return nil, eris.Wrap(ErrInvalidFacts, "feature: fact group missing")
	}

	inside := 0.0
	if hazard.InsideBoundary {
		inside = 1.0
	}

	v := make(Vector, Count)
	v[IdxDistanceToNearestHazardM] = hazard.DistanceToNearestHazardM
	v[IdxNearestHazardWeight] = hazard.NearestHazardWeight
	v[IdxDistanceToNearestHospitalM] = poi.DistanceToNearestHospitalM
	v[IdxNearestHospitalWeight] = poi.NearestHospitalWeight
	v[IdxHighDangerZoneCount1KM] = float64(hazard.HighDangerZoneCount1KM)
	v[IdxHospitalsWithin2KM] = float64(poi.HospitalsWithin2KM)
	v[IdxIndustrialHazardCount1KM] = float64(hazard.IndustrialHazardCount1KM)
	v[IdxMilitaryZoneCount1KM] = float64(hazard.MilitaryZoneCount1KM)
	v[IdxWaterHazardCount500M] = float64(hazard.WaterHazardCount500M)
	v[IdxWeightedHazardScore1KM] = hazard.WeightedHazardScore1KM
	v[IdxWeightedSafetyScore1KM] = poi.WeightedSafetyScore1KM
	v[IdxInsideBoundary] = inside
	v[IdxHazardToSafetyRatio] = hazard.WeightedHazardScore1KM / (poi.WeightedSafetyScore1KM + 0.001)
	v[IdxHospitalAccessibility] = 1 / (poi.DistanceToNearestHospitalM + 1)
	v[IdxHazardProximity] = 1 / (hazard.DistanceToNearestHazardM + 1)
	v[IdxSafetyDensity] = float64(poi.HospitalsWithin2KM) / (float64(hazard.HighDangerZoneCount1KM) + 1)
	v[IdxBoundaryPenalty] = 1 - inside
	v[IdxCriticalHazardExposure] = float64(hazard.MilitaryZoneCount1KM)*0.8 + float64(hazard.IndustrialHazardCount1KM)*0.6
	v[IdxEmergencyResponseScore] = (float64(poi.HospitalsWithin2KM) * poi.NearestHospitalWeight) / (poi.DistanceToNearestHospitalM + 1)

	return v, nil
}
