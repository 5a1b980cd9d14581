package model

import (
	"math"

	"github.com/rotisserie/eris"
)

// Attribute returns one non-negative contribution magnitude per feature for a
// scaled vector, by decision-path attribution over the explainer tree set.
// Deterministic: same model and input always yield the same output.
func (a *Artifact) Attribute(scaled []float64) ([]float64, error) {
	if a.Explainer == nil || len(a.Explainer.Trees) == 0 {
		return nil, eris.Wrap(ErrModelNotLoaded, "model: explainer absent")
	}
	if len(scaled) != len(a.FeatureNames) {
		return nil, eris.Wrapf(ErrFeatureDimension,
			"model: got %d features, explainer expects %d", len(scaled), len(a.FeatureNames))
	}

	nClasses := len(a.Classes)
	nFeatures := len(a.FeatureNames)

	perClass := make([][]float64, nClasses)
	for k := range perClass {
		perClass[k] = make([]float64, nFeatures)
	}
	for i := range a.Explainer.Trees {
		a.Explainer.Trees[i].PathContributions(scaled, perClass[i%nClasses])
	}

	return Collapse(perClass), nil
}

// Collapse reduces raw attributions to a single magnitude per feature.
// A multi-row (per-class) matrix collapses to the mean of absolute values
// across classes; a single row is taken as absolute values directly.
func Collapse(contributions [][]float64) []float64 {
	if len(contributions) == 0 {
		return nil
	}

	nFeatures := len(contributions[0])
	out := make([]float64, nFeatures)
	for _, row := range contributions {
		for j, c := range row {
			out[j] += math.Abs(c)
		}
	}

	inv := 1 / float64(len(contributions))
	for j := range out {
		out[j] *= inv
	}
	return out
}
