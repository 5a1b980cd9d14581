package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreePredict(t *testing.T) {
	tree := splitTree(1, 0.5, 0.2, -1, 3)
	assert.InDelta(t, -1, tree.Predict([]float64{0, 0, 0}), 1e-9)
	assert.InDelta(t, 3, tree.Predict([]float64{0, 0.5, 0}), 1e-9)
	assert.InDelta(t, 3, tree.Predict([]float64{0, 2, 0}), 1e-9)
}

func TestPathContributions_AdditiveToLeaf(t *testing.T) {
	// Two-level tree: root splits on feature 0, its right child on feature 2.
	tree := Tree{
		Feature:   []int{0, -1, 2, -1, -1},
		Threshold: []float64{0, 0, 1, 0, 0},
		Left:      []int{1, -1, 3, -1, -1},
		Right:     []int{2, -1, 4, -1, -1},
		Value:     []float64{0.1, -1, 0.8, 0.2, 1.5},
	}

	contrib := make([]float64, 3)
	x := []float64{1, 0, 2} // root→right→right
	tree.PathContributions(x, contrib)

	assert.InDelta(t, 0.8-0.1, contrib[0], 1e-9)
	assert.InDelta(t, 0, contrib[1], 1e-9)
	assert.InDelta(t, 1.5-0.8, contrib[2], 1e-9)

	// Contributions sum to leaf minus root.
	assert.InDelta(t, tree.Predict(x)-tree.Value[0], contrib[0]+contrib[1]+contrib[2], 1e-9)
}

func TestAttribute_PerFeatureMagnitudes(t *testing.T) {
	a := testArtifact()

	contrib, err := a.Attribute([]float64{1, 0, 0})
	require.NoError(t, err)
	require.Len(t, contrib, 3)

	// Only the HIGH tree splits, on feature 0: |2-0| averaged over 3 classes.
	assert.InDelta(t, 2.0/3, contrib[0], 1e-9)
	assert.InDelta(t, 0, contrib[1], 1e-9)
	assert.InDelta(t, 0, contrib[2], 1e-9)

	for _, c := range contrib {
		assert.GreaterOrEqual(t, c, 0.0)
	}
}

func TestAttribute_Deterministic(t *testing.T) {
	a := testArtifact()
	first, err := a.Attribute([]float64{-0.3, 2, 1})
	require.NoError(t, err)
	second, err := a.Attribute([]float64{-0.3, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAttribute_ExplainerAbsent(t *testing.T) {
	a := testArtifact()
	a.Explainer = nil
	_, err := a.Attribute([]float64{0, 0, 0})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrModelNotLoaded))
}

func TestAttribute_DimensionMismatch(t *testing.T) {
	_, err := testArtifact().Attribute([]float64{0})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrFeatureDimension))
}

func TestCollapse(t *testing.T) {
	t.Run("per-class matrix takes mean of absolutes", func(t *testing.T) {
		got := Collapse([][]float64{
			{1, -2},
			{-3, 0},
		})
		assert.InDelta(t, 2, got[0], 1e-9)
		assert.InDelta(t, 1, got[1], 1e-9)
	})

	t.Run("single row takes absolutes directly", func(t *testing.T) {
		got := Collapse([][]float64{{-1, 2, 0}})
		assert.Equal(t, []float64{1, 2, 0}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, Collapse(nil))
	})
}
