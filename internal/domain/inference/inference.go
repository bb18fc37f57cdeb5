// Package inference turns an operating-condition record into a predicted
// gas-cooler pressure using the loaded scaler and model.
package inference

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/okian/r744/internal/artifact"
	"github.com/okian/r744/internal/domain/features"
	"github.com/okian/r744/pkg/metrics"
)

// AdvisoryMessage is shown when the wet bulb temperature exceeds the dry bulb.
const AdvisoryMessage = "Dry bulb temperature should not be lower than wet bulb temperature."

// Result is one prediction.
type Result struct {
	// PressureBar is the optimal gas-cooler operating pressure in bar.
	PressureBar float64 `json:"pressure_bar"`
	// Advisory is set when DBT < WBT. It never suppresses the prediction.
	Advisory bool `json:"advisory"`
}

// Formatted renders the pressure with two decimals and its unit.
func (r Result) Formatted() string {
	return FormatPressure(r.PressureBar)
}

// Warning returns the advisory text, or "" when there is none.
func (r Result) Warning() string {
	if r.Advisory {
		return AdvisoryMessage
	}
	return ""
}

// FormatPressure renders a pressure value as "12.34 bar".
func FormatPressure(bar float64) string {
	return fmt.Sprintf("%.2f bar", bar)
}

// Predictor runs one prediction for a record.
type Predictor interface {
	Predict(ctx context.Context, rec features.Record) (Result, error)
}

// Pipeline applies the scaler transform then the model. It holds no mutable
// state and is safe for concurrent use.
type Pipeline struct {
	scaler artifact.Scaler
	model  artifact.Model
}

// New validates that the artifacts fit the record layout and each other.
func New(bundle *artifact.Bundle) (*Pipeline, error) {
	if bundle == nil || bundle.Scaler == nil || bundle.Model == nil {
		return nil, ErrNoArtifacts
	}
	if names := bundle.Scaler.FeatureNames(); names != nil && !slices.Equal(names, features.Names()) {
		return nil, fmt.Errorf("%w: fitted on %q, record order is %q", ErrFeatureMismatch, names, features.Names())
	}
	if n := bundle.Scaler.NumFeatures(); n != features.Count {
		return nil, fmt.Errorf("%w: scaler expects %d features, record has %d", ErrDimensionMismatch, n, features.Count)
	}
	if s, m := bundle.Scaler.NumFeatures(), bundle.Model.NumFeatures(); s != m {
		return nil, fmt.Errorf("%w: scaler emits %d features, model expects %d", ErrDimensionMismatch, s, m)
	}
	return &Pipeline{scaler: bundle.Scaler, model: bundle.Model}, nil
}

// Predict implements Predictor.
func (p *Pipeline) Predict(ctx context.Context, rec features.Record) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	scaled, err := p.scaler.Transform(rec.Vector())
	if err != nil {
		metrics.RecordPredictionError("transform")
		return Result{}, fmt.Errorf("%w: transform: %w", ErrPredict, err)
	}
	bar, err := p.model.Predict(scaled)
	if err != nil {
		metrics.RecordPredictionError("predict")
		return Result{}, fmt.Errorf("%w: predict: %w", ErrPredict, err)
	}

	res := Result{PressureBar: bar, Advisory: rec.WetBulbAboveDryBulb()}
	metrics.RecordPrediction(res.Advisory)
	metrics.RecordPredictionLatency(float64(time.Since(start).Microseconds()) / 1000)
	return res, nil
}
