package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Model kinds.
const (
	KindLinearRegression = "linear_regression"
	KindDecisionTree     = "decision_tree_regressor"
	KindRandomForest     = "random_forest_regressor"
	KindGradientBoosting = "gradient_boosting_regressor"
)

type linearParams struct {
	Kind      string    `json:"kind"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// LinearModel predicts coef · x + intercept.
type LinearModel struct {
	coef      *mat.VecDense
	intercept float64
}

func decodeLinear(payload []byte) (*LinearModel, error) {
	var p linearParams
	if err := strictUnmarshal(payload, &p); err != nil {
		return nil, err
	}
	if len(p.Coef) == 0 {
		return nil, fmt.Errorf("%w: linear model has no coefficients", ErrDecodeArtifact)
	}
	return &LinearModel{
		coef:      mat.NewVecDense(len(p.Coef), cloneFloats(p.Coef)),
		intercept: p.Intercept,
	}, nil
}

// Predict implements Model.
func (m *LinearModel) Predict(x []float64) (float64, error) {
	if err := checkLen(x, m.coef.Len()); err != nil {
		return 0, err
	}
	return mat.Dot(m.coef, mat.NewVecDense(len(x), cloneFloats(x))) + m.intercept, nil
}

func (m *LinearModel) NumFeatures() int { return m.coef.Len() }
func (m *LinearModel) Kind() string     { return KindLinearRegression }
