// Package predict wires the spatial facts adapter, the feature builder, the
// classifier, and the explanation ranker into one synchronous pipeline.
package predict

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abdul-raz/Safe-Tourism/internal/config"
	"github.com/abdul-raz/Safe-Tourism/internal/explain"
	"github.com/abdul-raz/Safe-Tourism/internal/facts"
	"github.com/abdul-raz/Safe-Tourism/internal/feature"
	"github.com/abdul-raz/Safe-Tourism/internal/model"
)

// Location is the coordinate a prediction was made for.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Result is the full prediction surface, serializable as-is.
type Result struct {
	RiskLabel     string             `json:"risk_label"`
	RiskScore     float64            `json:"risk_score"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	AlertNeeded   bool               `json:"alert_needed"`
	Explanations  []string           `json:"explanations"`
	Location      Location           `json:"location"`
}

// Predictor runs the risk pipeline against a shared, immutable model artifact.
// Safe for concurrent use; each Predict call is independent.
type Predictor struct {
	adapter  facts.Adapter
	artifact *model.Artifact
	cfg      config.PredictConfig
}

// New creates a Predictor and verifies the artifact's feature schema against
// the builder's ordering, so a stale artifact fails fast instead of silently
// mis-predicting.
func New(adapter facts.Adapter, artifact *model.Artifact, cfg config.PredictConfig) (*Predictor, error) {
	if err := artifact.VerifySchema(feature.Names()); err != nil {
		return nil, err
	}
	return &Predictor{adapter: adapter, artifact: artifact, cfg: cfg}, nil
}

// Predict classifies one coordinate. All failures are terminal and typed;
// the pipeline never substitutes a default low-risk result.
func (p *Predictor) Predict(ctx context.Context, lat, lon float64) (*Result, error) {
	hazard, poi, err := p.adapter.Fetch(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	vector, err := feature.Build(hazard, poi)
	if err != nil {
		return nil, err
	}

	scaled, err := p.artifact.Transform(vector)
	if err != nil {
		return nil, err
	}

	// Classification and attribution are independent given the scaled vector.
	var (
		label         string
		probabilities map[string]float64
		confidence    float64
		contributions []float64
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		label, probabilities, confidence, err = p.artifact.Predict(scaled)
		return err
	})
	g.Go(func() error {
		var err error
		contributions, err = p.artifact.Attribute(scaled)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	riskScore := probabilities[model.HighRiskClass]

	result := &Result{
		RiskLabel:     label,
		RiskScore:     riskScore,
		Confidence:    confidence,
		Probabilities: probabilities,
		AlertNeeded:   riskScore > p.cfg.AlertThreshold,
		Explanations:  explain.Rank(vector, contributions, feature.Names(), p.cfg.MaxExplanations),
		Location:      Location{Lat: lat, Lon: lon},
	}

	zap.L().Info("predict: classified coordinate",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.String("risk_label", result.RiskLabel),
		zap.Float64("risk_score", result.RiskScore),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("alert_needed", result.AlertNeeded),
	)

	return result, nil
}
