package predict

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-raz/Safe-Tourism/internal/config"
	"github.com/abdul-raz/Safe-Tourism/internal/facts"
	"github.com/abdul-raz/Safe-Tourism/internal/feature"
	"github.com/abdul-raz/Safe-Tourism/internal/model"
)

type fakeAdapter struct {
	hazard *facts.HazardFacts
	poi    *facts.PoiFacts
	err    error
}

func (f *fakeAdapter) Fetch(_ context.Context, _, _ float64) (*facts.HazardFacts, *facts.PoiFacts, error) {
	return f.hazard, f.poi, f.err
}

func leafTree(value float64) model.Tree {
	return model.Tree{
		Feature:   []int{-1},
		Threshold: []float64{0},
		Left:      []int{-1},
		Right:     []int{-1},
		Value:     []float64{value},
	}
}

func splitTree(f int, threshold, root, left, right float64) model.Tree {
	return model.Tree{
		Feature:   []int{f, -1, -1},
		Threshold: []float64{threshold, 0, 0},
		Left:      []int{1, -1, -1},
		Right:     []int{2, -1, -1},
		Value:     []float64{root, left, right},
	}
}

// testArtifact builds a full-width model whose HIGH margin follows the
// weighted hazard score and whose LOW margin mirrors it.
func testArtifact() *model.Artifact {
	high := splitTree(feature.IdxWeightedHazardScore1KM, 1, 0, -2, 2)
	low := splitTree(feature.IdxWeightedHazardScore1KM, 1, 0, 2, -2)
	trees := []model.Tree{high, low, leafTree(0)}
	return &model.Artifact{
		SchemaVersion: 1,
		FeatureNames:  feature.Names(),
		Classes:       []string{"HIGH", "LOW", "MEDIUM"},
		Scaler: model.Scaler{
			Mean:  make([]float64, feature.Count),
			Scale: ones(feature.Count),
		},
		BaseMargin: []float64{0, 0, 0},
		Members:    []model.Member{{Name: "xgb_0", Trees: trees}},
		Explainer:  &model.Explainer{Trees: trees},
	}
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func dangerousAdapter() *fakeAdapter {
	return &fakeAdapter{
		hazard: &facts.HazardFacts{
			DistanceToNearestHazardM: 150,
			NearestHazardWeight:      0.9,
			HighDangerZoneCount1KM:   2,
			IndustrialHazardCount1KM: 1,
			MilitaryZoneCount1KM:     1,
			WaterHazardCount500M:     1,
			WeightedHazardScore1KM:   2.4,
			InsideBoundary:           true,
		},
		poi: &facts.PoiFacts{
			DistanceToNearestHospitalM: 4000,
			NearestHospitalWeight:      0.6,
			HospitalsWithin2KM:         0,
			WeightedSafetyScore1KM:     0.3,
		},
	}
}

func safeAdapter() *fakeAdapter {
	return &fakeAdapter{
		hazard: &facts.HazardFacts{
			DistanceToNearestHazardM: facts.NoneDistanceM,
			WeightedHazardScore1KM:   0.2,
			InsideBoundary:           true,
		},
		poi: &facts.PoiFacts{
			DistanceToNearestHospitalM: 500,
			NearestHospitalWeight:      0.9,
			HospitalsWithin2KM:         2,
			WeightedSafetyScore1KM:     1.8,
		},
	}
}

func testCfg() config.PredictConfig {
	return config.PredictConfig{AlertThreshold: 0.7, MaxExplanations: 5}
}

func TestPredict_HighRiskLocation(t *testing.T) {
	p, err := New(dangerousAdapter(), testArtifact(), testCfg())
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), 26.1445, 91.7362)
	require.NoError(t, err)

	assert.Equal(t, "HIGH", got.RiskLabel)
	assert.InDelta(t, got.Probabilities["HIGH"], got.RiskScore, 1e-12)
	assert.Greater(t, got.RiskScore, 0.7)
	assert.True(t, got.AlertNeeded)
	assert.InDelta(t, got.RiskScore, got.Confidence, 1e-12)
	assert.Equal(t, Location{Lat: 26.1445, Lon: 91.7362}, got.Location)

	var sum float64
	for _, v := range got.Probabilities {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	require.Len(t, got.Explanations, 5)
	// The hazard score drives the only split, so it ranks first.
	assert.Equal(t, "Hazard density: 2.40", got.Explanations[0])
}

func TestPredict_LowRiskNoAlert(t *testing.T) {
	p, err := New(safeAdapter(), testArtifact(), testCfg())
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), 26.2006, 92.9376)
	require.NoError(t, err)

	assert.Equal(t, "LOW", got.RiskLabel)
	assert.False(t, got.AlertNeeded)
	assert.Less(t, got.RiskScore, 0.1)
	assert.InDelta(t, got.Probabilities["HIGH"], got.RiskScore, 1e-12)
}

func TestPredict_HighAbsentLabelSet(t *testing.T) {
	// A model trained without a HIGH class yields a zero risk score and no
	// alert, not an error.
	a := testArtifact()
	a.Classes = []string{"SAFE", "CAUTION"}
	a.BaseMargin = []float64{0, 0}
	a.Members[0].Trees = []model.Tree{leafTree(1), leafTree(0)}
	a.Explainer.Trees = a.Members[0].Trees

	p, err := New(dangerousAdapter(), a, testCfg())
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), 26.1445, 91.7362)
	require.NoError(t, err)
	assert.Equal(t, "SAFE", got.RiskLabel)
	assert.Zero(t, got.RiskScore)
	assert.False(t, got.AlertNeeded)
}

func TestPredict_AlertThresholdStrict(t *testing.T) {
	p, err := New(dangerousAdapter(), testArtifact(), testCfg())
	require.NoError(t, err)
	got, err := p.Predict(context.Background(), 26.1445, 91.7362)
	require.NoError(t, err)
	require.True(t, got.AlertNeeded)

	// A threshold equal to the score must not alert.
	p, err = New(dangerousAdapter(), testArtifact(), config.PredictConfig{
		AlertThreshold:  got.RiskScore,
		MaxExplanations: 5,
	})
	require.NoError(t, err)
	got, err = p.Predict(context.Background(), 26.1445, 91.7362)
	require.NoError(t, err)
	assert.False(t, got.AlertNeeded)
}

func TestPredict_ExplanationLimit(t *testing.T) {
	cfg := testCfg()
	cfg.MaxExplanations = 3

	p, err := New(dangerousAdapter(), testArtifact(), cfg)
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), 26.1445, 91.7362)
	require.NoError(t, err)
	assert.Len(t, got.Explanations, 3)
}

func TestPredict_AdapterFailure(t *testing.T) {
	adapter := &fakeAdapter{err: eris.Wrap(facts.ErrAdapterUnavailable, "query timeout")}
	p, err := New(adapter, testArtifact(), testCfg())
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), 26.1445, 91.7362)
	require.Error(t, err)
	assert.True(t, eris.Is(err, facts.ErrAdapterUnavailable))
	assert.Nil(t, got)
}

func TestPredict_MissingFactsRejected(t *testing.T) {
	p, err := New(&fakeAdapter{}, testArtifact(), testCfg())
	require.NoError(t, err)

	got, err := p.Predict(context.Background(), 26.1445, 91.7362)
	require.Error(t, err)
	assert.True(t, eris.Is(err, feature.ErrInvalidFacts))
	assert.Nil(t, got)
}

func TestNew_SchemaMismatch(t *testing.T) {
	a := testArtifact()
	a.FeatureNames[0], a.FeatureNames[1] = a.FeatureNames[1], a.FeatureNames[0]

	_, err := New(safeAdapter(), a, testCfg())
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrSchemaMismatch))
}

func TestPredict_Deterministic(t *testing.T) {
	p, err := New(dangerousAdapter(), testArtifact(), testCfg())
	require.NoError(t, err)

	first, err := p.Predict(context.Background(), 26.1445, 91.7362)
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), 26.1445, 91.7362)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
