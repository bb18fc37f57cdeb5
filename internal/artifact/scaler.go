package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Scaler kinds.
const (
	KindStandardScaler = "standard_scaler"
	KindMinMaxScaler   = "min_max_scaler"
)

type standardScalerParams struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	WithMean     *bool     `json:"with_mean,omitempty"`
	WithStd      *bool     `json:"with_std,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// StandardScaler computes (x - mean) / scale per feature.
type StandardScaler struct {
	names []string
	mean  *mat.VecDense // nil when centering is disabled
	scale *mat.VecDense // nil when scaling is disabled
	n     int
}

func decodeStandardScaler(payload []byte) (*StandardScaler, error) {
	var p standardScalerParams
	if err := strictUnmarshal(payload, &p); err != nil {
		return nil, err
	}
	withMean := p.WithMean == nil || *p.WithMean
	withStd := p.WithStd == nil || *p.WithStd

	s := &StandardScaler{names: p.FeatureNames}
	switch {
	case withMean:
		s.n = len(p.Mean)
	case withStd:
		s.n = len(p.Scale)
	default:
		s.n = len(p.FeatureNames)
	}
	if s.n == 0 {
		return nil, fmt.Errorf("%w: standard scaler has no features", ErrDecodeArtifact)
	}
	if withMean {
		s.mean = mat.NewVecDense(s.n, cloneFloats(p.Mean))
	}
	if withStd {
		if len(p.Scale) != s.n {
			return nil, fmt.Errorf("%w: scale has %d entries, want %d", ErrDecodeArtifact, len(p.Scale), s.n)
		}
		s.scale = mat.NewVecDense(s.n, safeScale(p.Scale))
	}
	if err := checkNames(p.FeatureNames, s.n); err != nil {
		return nil, err
	}
	return s, nil
}

// Transform implements Scaler.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if err := checkLen(x, s.n); err != nil {
		return nil, err
	}
	v := mat.NewVecDense(s.n, cloneFloats(x))
	if s.mean != nil {
		v.SubVec(v, s.mean)
	}
	if s.scale != nil {
		v.DivElemVec(v, s.scale)
	}
	return v.RawVector().Data, nil
}

func (s *StandardScaler) NumFeatures() int       { return s.n }
func (s *StandardScaler) FeatureNames() []string { return cloneStrings(s.names) }
func (s *StandardScaler) Kind() string           { return KindStandardScaler }

type minMaxScalerParams struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Min          []float64 `json:"min"`
	Scale        []float64 `json:"scale"`
}

// MinMaxScaler computes x * scale + min per feature, the fitted form of a
// range scaler.
type MinMaxScaler struct {
	names []string
	min   *mat.VecDense
	scale *mat.VecDense
	n     int
}

func decodeMinMaxScaler(payload []byte) (*MinMaxScaler, error) {
	var p minMaxScalerParams
	if err := strictUnmarshal(payload, &p); err != nil {
		return nil, err
	}
	n := len(p.Scale)
	if n == 0 {
		return nil, fmt.Errorf("%w: min-max scaler has no features", ErrDecodeArtifact)
	}
	if len(p.Min) != n {
		return nil, fmt.Errorf("%w: min has %d entries, want %d", ErrDecodeArtifact, len(p.Min), n)
	}
	if err := checkNames(p.FeatureNames, n); err != nil {
		return nil, err
	}
	return &MinMaxScaler{
		names: p.FeatureNames,
		min:   mat.NewVecDense(n, cloneFloats(p.Min)),
		scale: mat.NewVecDense(n, cloneFloats(p.Scale)),
		n:     n,
	}, nil
}

// Transform implements Scaler.
func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if err := checkLen(x, s.n); err != nil {
		return nil, err
	}
	v := mat.NewVecDense(s.n, cloneFloats(x))
	v.MulElemVec(v, s.scale)
	v.AddVec(v, s.min)
	return v.RawVector().Data, nil
}

func (s *MinMaxScaler) NumFeatures() int       { return s.n }
func (s *MinMaxScaler) FeatureNames() []string { return cloneStrings(s.names) }
func (s *MinMaxScaler) Kind() string           { return KindMinMaxScaler }

// safeScale copies scale, replacing zeros with 1. A zero scale marks a
// constant feature during fitting.
func safeScale(scale []float64) []float64 {
	out := cloneFloats(scale)
	for i, v := range out {
		if v == 0 {
			out[i] = 1
		}
	}
	return out
}

func checkNames(names []string, n int) error {
	if names != nil && len(names) != n {
		return fmt.Errorf("%w: %d feature names for %d features", ErrDecodeArtifact, len(names), n)
	}
	return nil
}

func cloneFloats(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
