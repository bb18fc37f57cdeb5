// Package artifact loads the pre-fitted feature scaler and regression model
// from their serialized JSON form.
//
// Every artifact file is a JSON object with a "kind" discriminator followed by
// kind-specific parameters. Decoded artifacts are immutable and safe for
// concurrent use.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Scaler maps a raw feature vector to its normalized form.
type Scaler interface {
	// Transform returns a new normalized vector; the input is not modified.
	Transform(x []float64) ([]float64, error)
	// NumFeatures is the vector length the scaler was fitted on.
	NumFeatures() int
	// FeatureNames returns the fitting-time column names, or nil when the
	// artifact does not record them.
	FeatureNames() []string
	Kind() string
}

// Model maps a normalized feature vector to a scalar prediction.
type Model interface {
	Predict(x []float64) (float64, error)
	NumFeatures() int
	Kind() string
}

// Bundle is the scaler/model pair loaded at startup.
type Bundle struct {
	Scaler Scaler
	Model  Model
}

// envelope carries the discriminator shared by every artifact file.
type envelope struct {
	Kind string `json:"kind"`
}

// Load reads both artifacts. It fails on the first unreadable or malformed file.
func Load(ctx context.Context, scalerPath, modelPath string) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, err
	}
	return &Bundle{Scaler: scaler, Model: model}, nil
}

// LoadScaler reads and decodes a scaler artifact from path.
func LoadScaler(path string) (Scaler, error) {
	payload, err := readFile(path)
	if err != nil {
		return nil, err
	}
	s, err := DecodeScaler(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadModel reads and decodes a model artifact from path.
func LoadModel(path string) (Model, error) {
	payload, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := DecodeModel(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// DecodeScaler decodes a scaler artifact from its JSON payload.
func DecodeScaler(payload []byte) (Scaler, error) {
	kind, err := decodeKind(payload)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindStandardScaler:
		return decodeStandardScaler(payload)
	case KindMinMaxScaler:
		return decodeMinMaxScaler(payload)
	default:
		return nil, fmt.Errorf("%w: scaler %q", ErrUnsupportedKind, kind)
	}
}

// DecodeModel decodes a model artifact from its JSON payload.
func DecodeModel(payload []byte) (Model, error) {
	kind, err := decodeKind(payload)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindLinearRegression:
		return decodeLinear(payload)
	case KindDecisionTree, KindRandomForest, KindGradientBoosting:
		return decodeEnsemble(kind, payload)
	default:
		return nil, fmt.Errorf("%w: model %q", ErrUnsupportedKind, kind)
	}
}

func readFile(path string) ([]byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadArtifact, err)
	}
	return payload, nil
}

func decodeKind(payload []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecodeArtifact, err)
	}
	if env.Kind == "" {
		return "", fmt.Errorf("%w: missing kind", ErrDecodeArtifact)
	}
	return env.Kind, nil
}

// strictUnmarshal decodes payload into v, rejecting unknown fields.
func strictUnmarshal(payload []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeArtifact, err)
	}
	return nil
}

func checkLen(x []float64, n int) error {
	if len(x) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrInputShape, len(x), n)
	}
	return nil
}
