package model

import "github.com/rotisserie/eris"

// Tree is a single regression tree in flat-array form. Node i is a leaf when
// Left[i] < 0. Value[i] is the node's expected output (for internal nodes the
// training-time subtree mean), which is what decision-path attribution needs.
type Tree struct {
	Feature   []int     `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Left      []int     `json:"left"`
	Right     []int     `json:"right"`
	Value     []float64 `json:"value"`
}

func (t *Tree) validate(featureCount int) error {
	n := len(t.Value)
	if n == 0 {
		return eris.Wrap(ErrModelNotLoaded, "empty tree")
	}
	if len(t.Feature) != n || len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n {
		return eris.Wrap(ErrModelNotLoaded, "inconsistent node arrays")
	}
	for i := 0; i < n; i++ {
		if t.Left[i] < 0 {
			continue // leaf
		}
		if t.Left[i] >= n || t.Right[i] < 0 || t.Right[i] >= n {
			return eris.Wrapf(ErrModelNotLoaded, "node %d child out of range", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= featureCount {
			return eris.Wrapf(ErrModelNotLoaded, "node %d splits on unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// Predict walks the tree for x and returns the leaf value.
// Split rule: x[feature] < threshold goes left.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for t.Left[i] >= 0 {
		if x[t.Feature[i]] < t.Threshold[i] {
			i = t.Left[i]
		} else {
			i = t.Right[i]
		}
	}
	return t.Value[i]
}

// PathContributions walks the tree for x and accumulates, per feature, the
// change in expected value at each split taken. The sum of contributions
// equals leaf value minus root value, making the attribution additive.
func (t *Tree) PathContributions(x []float64, contrib []float64) {
	i := 0
	for t.Left[i] >= 0 {
		next := t.Right[i]
		if x[t.Feature[i]] < t.Threshold[i] {
			next = t.Left[i]
		}
		contrib[t.Feature[i]] += t.Value[next] - t.Value[i]
		i = next
	}
}
