package model

import (
	"math"

	"github.com/rotisserie/eris"
)

// HighRiskClass is the label whose probability mass becomes the risk score.
const HighRiskClass = "HIGH"

// Transform standardizes a raw feature vector with the training-time
// statistics: (x - mean) / scale per feature. A zero scale (constant feature
// at training time) passes the centered value through unscaled, matching the
// scaler's training-side behavior.
func (a *Artifact) Transform(x []float64) ([]float64, error) {
	if len(a.Scaler.Mean) == 0 {
		return nil, eris.Wrap(ErrModelNotLoaded, "model: scaler absent")
	}
	if len(x) != len(a.Scaler.Mean) {
		return nil, eris.Wrapf(ErrFeatureDimension,
			"model: got %d features, scaler expects %d", len(x), len(a.Scaler.Mean))
	}

	scaled := make([]float64, len(x))
	for i, v := range x {
		s := a.Scaler.Scale[i]
		if s == 0 {
			s = 1
		}
		scaled[i] = (v - a.Scaler.Mean[i]) / s
	}
	return scaled, nil
}

// PredictProba returns the per-class probability distribution for a scaled
// vector: each member's class margins go through softmax, and the ensemble
// soft-votes by averaging member probabilities. Output order matches Classes.
func (a *Artifact) PredictProba(scaled []float64) ([]float64, error) {
	if len(a.Members) == 0 || len(a.Classes) == 0 {
		return nil, eris.Wrap(ErrModelNotLoaded, "model: ensemble absent")
	}
	if len(scaled) != len(a.FeatureNames) {
		return nil, eris.Wrapf(ErrFeatureDimension,
			"model: got %d features, ensemble expects %d", len(scaled), len(a.FeatureNames))
	}

	nClasses := len(a.Classes)
	probs := make([]float64, nClasses)
	margins := make([]float64, nClasses)

	for _, m := range a.Members {
		copy(margins, a.BaseMargin)
		for i := range m.Trees {
			margins[i%nClasses] += m.Trees[i].Predict(scaled)
		}
		p := softmax(margins)
		for k := range probs {
			probs[k] += p[k]
		}
	}

	inv := 1 / float64(len(a.Members))
	for k := range probs {
		probs[k] *= inv
	}
	return probs, nil
}

// Predict classifies a scaled vector. The label is the argmax class; ties
// break toward the first class in the artifact's class order. Confidence is
// the probability mass of the selected label.
func (a *Artifact) Predict(scaled []float64) (label string, probs map[string]float64, confidence float64, err error) {
	p, err := a.PredictProba(scaled)
	if err != nil {
		return "", nil, 0, err
	}

	best := 0
	for k := 1; k < len(p); k++ {
		if p[k] > p[best] {
			best = k
		}
	}

	probs = make(map[string]float64, len(p))
	for k, class := range a.Classes {
		probs[class] = p[k]
	}

	return a.Classes[best], probs, p[best], nil
}

func softmax(margins []float64) []float64 {
	max := margins[0]
	for _, m := range margins[1:] {
		if m > max {
			max = m
		}
	}

	out := make([]float64, len(margins))
	var sum float64
	for i, m := range margins {
		out[i] = math.Exp(m - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
