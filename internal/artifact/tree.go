package artifact

import (
	"errors"
	"fmt"
)

const leaf = -1

// treeParams is the flat array encoding of a fitted regression tree. Node 0
// is the root; a node is a leaf when its children are -1.
type treeParams struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

type ensembleParams struct {
	Kind         string  `json:"kind"`
	NFeatures    int     `json:"n_features"`
	Init         float64 `json:"init,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	// Tree is used by decision_tree_regressor, Trees by the ensembles.
	Tree  *treeParams  `json:"tree,omitempty"`
	Trees []treeParams `json:"trees,omitempty"`
}

type tree treeParams

// EnsembleModel evaluates one or more regression trees and combines their
// outputs: a single tree is returned as is, a forest is averaged and a
// boosted ensemble is init + learning_rate * sum.
type EnsembleModel struct {
	kind         string
	nFeatures    int
	init         float64
	learningRate float64
	trees        []tree
}

func decodeEnsemble(kind string, payload []byte) (*EnsembleModel, error) {
	var p ensembleParams
	if err := strictUnmarshal(payload, &p); err != nil {
		return nil, err
	}
	if p.NFeatures <= 0 {
		return nil, fmt.Errorf("%w: n_features must be positive", ErrDecodeArtifact)
	}

	raw := p.Trees
	if kind == KindDecisionTree {
		if p.Tree == nil {
			return nil, fmt.Errorf("%w: decision tree is missing", ErrDecodeArtifact)
		}
		raw = []treeParams{*p.Tree}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: ensemble has no trees", ErrDecodeArtifact)
	}
	if kind == KindGradientBoosting && p.LearningRate <= 0 {
		return nil, fmt.Errorf("%w: learning_rate must be positive", ErrDecodeArtifact)
	}

	m := &EnsembleModel{
		kind:         kind,
		nFeatures:    p.NFeatures,
		init:         p.Init,
		learningRate: p.LearningRate,
		trees:        make([]tree, len(raw)),
	}
	for i, t := range raw {
		if err := validateTree(t, p.NFeatures); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %w", ErrDecodeArtifact, i, err)
		}
		m.trees[i] = tree(t)
	}
	return m, nil
}

// Predict implements Model.
func (m *EnsembleModel) Predict(x []float64) (float64, error) {
	if err := checkLen(x, m.nFeatures); err != nil {
		return 0, err
	}
	var sum float64
	for i := range m.trees {
		sum += m.trees[i].eval(x)
	}
	switch m.kind {
	case KindRandomForest:
		return sum / float64(len(m.trees)), nil
	case KindGradientBoosting:
		return m.init + m.learningRate*sum, nil
	default:
		return sum, nil
	}
}

func (m *EnsembleModel) NumFeatures() int { return m.nFeatures }
func (m *EnsembleModel) Kind() string     { return m.kind }

// eval walks from the root, going left when x[feature] <= threshold.
// validateTree guarantees the walk terminates.
func (t *tree) eval(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// validateTree checks array shapes, child indices and feature indices, and
// that every child index points forward so traversal cannot cycle.
func validateTree(t treeParams, nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if (l == leaf) != (r == leaf) {
			return fmt.Errorf("node %d has one child", i)
		}
		if l == leaf {
			continue
		}
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has child out of range", i)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, f, nFeatures)
		}
	}
	return nil
}
