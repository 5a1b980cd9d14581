// Package model wraps the trained risk model artifact: a standard scaler, an
// ordered label set, a soft-voting ensemble of boosted trees, and the
// attribution tree set used for explanations. The artifact is immutable after
// load and safe to share across concurrent callers.
package model

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	// ErrModelNotLoaded signals a missing or incomplete model artifact.
	ErrModelNotLoaded = eris.New("model: artifact not loaded")

	// ErrFeatureDimension signals an input vector whose length does not match
	// the artifact's feature count.
	ErrFeatureDimension = eris.New("model: feature dimension mismatch")

	// ErrSchemaMismatch signals that the artifact was trained on a different
	// feature-name ordering than the running builder emits. Predictions would
	// be silently corrupted, so this is terminal.
	ErrSchemaMismatch = eris.New("model: feature schema mismatch")
)

// Scaler holds per-feature standardization statistics captured at training
// time. They are never recomputed at inference time.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Member is one classifier of the soft-voting ensemble. Trees are laid out
// round-major: tree i produces the margin for class i mod len(classes).
type Member struct {
	Name  string `json:"name"`
	Trees []Tree `json:"trees"`
}

// Explainer is the tree set attribution walks. It is trained on the same
// feature ordering as the ensemble.
type Explainer struct {
	Trees []Tree `json:"trees"`
}

// Artifact is the serialized model bundle exported by training. Read-only at
// inference time.
type Artifact struct {
	SchemaVersion int       `json:"schema_version"`
	FeatureNames  []string  `json:"feature_names"`
	Classes       []string  `json:"classes"`
	Scaler        Scaler    `json:"scaler"`
	BaseMargin    []float64 `json:"base_margin"`
	Members       []Member  `json:"members"`
	Explainer     *Explainer `json:"explainer"`
}

// Load reads and validates a model artifact from disk.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(ErrModelNotLoaded, "model: read %s: %v", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrapf(ErrModelNotLoaded, "model: decode %s: %v", path, err)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	zap.L().Info("model: artifact loaded",
		zap.String("path", path),
		zap.Int("features", len(a.FeatureNames)),
		zap.Strings("classes", a.Classes),
		zap.Int("ensemble_members", len(a.Members)),
	)

	return &a, nil
}

// Validate checks internal consistency of the artifact.
func (a *Artifact) Validate() error {
	n := len(a.FeatureNames)
	if n == 0 {
		return eris.Wrap(ErrModelNotLoaded, "model: no feature names")
	}
	if len(a.Classes) == 0 {
		return eris.Wrap(ErrModelNotLoaded, "model: no classes")
	}
	if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
		return eris.Wrapf(ErrModelNotLoaded,
			"model: scaler statistics cover %d/%d features", len(a.Scaler.Mean), n)
	}
	if len(a.BaseMargin) != len(a.Classes) {
		return eris.Wrapf(ErrModelNotLoaded,
			"model: base margin covers %d/%d classes", len(a.BaseMargin), len(a.Classes))
	}
	if len(a.Members) == 0 {
		return eris.Wrap(ErrModelNotLoaded, "model: empty ensemble")
	}
	for _, m := range a.Members {
		if len(m.Trees) == 0 || len(m.Trees)%len(a.Classes) != 0 {
			return eris.Wrapf(ErrModelNotLoaded,
				"model: member %s has %d trees for %d classes", m.Name, len(m.Trees), len(a.Classes))
		}
		for i := range m.Trees {
			if err := m.Trees[i].validate(n); err != nil {
				return eris.Wrapf(err, "model: member %s tree %d", m.Name, i)
			}
		}
	}
	if a.Explainer != nil {
		if len(a.Explainer.Trees) == 0 || len(a.Explainer.Trees)%len(a.Classes) != 0 {
			return eris.Wrapf(ErrModelNotLoaded,
				"model: explainer has %d trees for %d classes", len(a.Explainer.Trees), len(a.Classes))
		}
		for i := range a.Explainer.Trees {
			if err := a.Explainer.Trees[i].validate(n); err != nil {
				return eris.Wrapf(err, "model: explainer tree %d", i)
			}
		}
	}
	return nil
}

// VerifySchema compares the artifact's embedded feature-name ordering against
// the builder's canonical ordering. Any divergence is a versioning defect.
func (a *Artifact) VerifySchema(names []string) error {
	if len(a.FeatureNames) != len(names) {
		return eris.Wrapf(ErrSchemaMismatch,
			"model: artifact has %d features, builder emits %d", len(a.FeatureNames), len(names))
	}
	for i, name := range names {
		if a.FeatureNames[i] != name {
			return eris.Wrapf(ErrSchemaMismatch,
				"model: feature %d is %q in artifact, %q in builder", i, a.FeatureNames[i], name)
		}
	}
	return nil
}
