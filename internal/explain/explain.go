// Package explain turns per-feature attribution magnitudes into a short
// ranked list of human-readable reasons for a risk verdict.
package explain

import (
	"fmt"
	"sort"
)

// DefaultLimit is the maximum number of explanations returned.
const DefaultLimit = 5

// rule pairs a feature name with an optional gate and a renderer. Rules are
// evaluated in declaration order; the first match for a feature wins, and
// a feature with no matching rule falls through to the generic template.
type rule struct {
	feature string
	gate    func(value float64) bool
	render  func(value float64) string
}

// The rule order is part of the output contract: reordering changes which
// sentence a feature gets when several rules could apply.
var rules = []rule{
	{
		feature: "military_zone_count_1km",
		gate:    func(v float64) bool { return v > 0 },
		render:  func(v float64) string { return fmt.Sprintf("Military zones within 1km: %d (Security risk)", int(v)) },
	},
	{
		feature: "hospitals_within_2km",
		render:  func(v float64) string { return fmt.Sprintf("Hospitals within 2km: %d (Medical access)", int(v)) },
	},
	{
		feature: "inside_boundary",
		render: func(v float64) string {
			if v == 1 {
				return "Location: Inside monitored region"
			}
			return "Location: Outside monitored region"
		},
	},
	{
		feature: "distance_to_nearest_hazard_m",
		render:  func(v float64) string { return fmt.Sprintf("Nearest hazard: %dm away", int(v)) },
	},
	{
		feature: "distance_to_nearest_hospital_m",
		render:  func(v float64) string { return fmt.Sprintf("Nearest hospital: %dm away", int(v)) },
	},
	{
		feature: "weighted_hazard_score_1km",
		render:  func(v float64) string { return fmt.Sprintf("Hazard density: %.2f", v) },
	},
	{
		feature: "water_hazard_count_500m",
		gate:    func(v float64) bool { return v > 0 },
		render:  func(v float64) string { return fmt.Sprintf("Water hazards nearby: %d (Flood risk)", int(v)) },
	},
}

// Rank selects the top contributing features and renders one sentence each.
// Selection is by contribution magnitude descending, ties broken by original
// feature index ascending. At most limit entries are returned; limit <= 0
// falls back to DefaultLimit.
func Rank(features, contributions []float64, names []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	n := len(contributions)
	if n > len(features) {
		n = len(features)
	}
	if n > len(names) {
		n = len(names)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return contributions[indices[a]] > contributions[indices[b]]
	})

	if len(indices) > limit {
		indices = indices[:limit]
	}

	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		out = append(out, describe(names[idx], features[idx]))
	}
	return out
}

// describe renders one feature through the first matching rule, falling back
// to the generic template.
func describe(name string, value float64) string {
	for _, r := range rules {
		if r.feature != name {
			continue
		}
		if r.gate != nil && !r.gate(value) {
			continue
		}
		return r.render(value)
	}
	return fmt.Sprintf("%s: %.2f", name, value)
}
