package inference

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrNoArtifacts       = errors.New("scaler and model are required")
	ErrFeatureMismatch   = errors.New("scaler feature names do not match the record order")
	ErrDimensionMismatch = errors.New("scaler and model dimensions differ")
	ErrPredict           = errors.New("prediction failed")
)
