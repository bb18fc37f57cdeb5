// Package service provides the core business service that implements
// the dependencies required by the HTTP adapters.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/r744/internal/artifact"
	"github.com/okian/r744/internal/domain/features"
	"github.com/okian/r744/internal/domain/inference"
	"github.com/okian/r744/internal/domain/session"
	"github.com/okian/r744/pkg/logger"
	"github.com/okian/r744/pkg/metrics"
)

// Service owns the loaded artifacts, the inference pipeline and the session
// store. Artifacts are loaded once in Start and never change afterwards.
type Service struct {
	mu sync.RWMutex

	// Core components
	bundle    *artifact.Bundle
	predictor inference.Predictor
	sessions  session.Store

	// Configuration
	scalerPath      string
	modelPath       string
	sessionCapacity int
	sessionTTL      time.Duration

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithArtifactPaths sets where the scaler and model artifacts are read from.
func WithArtifactPaths(scalerPath, modelPath string) Option {
	return func(s *Service) {
		if scalerPath != "" {
			s.scalerPath = scalerPath
		}
		if modelPath != "" {
			s.modelPath = modelPath
		}
	}
}

// WithSessionCapacity bounds the number of sessions kept in memory.
func WithSessionCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sessionCapacity = n
		}
	}
}

// WithSessionTTL sets how long idle sessions survive.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scalerPath:      "artifacts/scaler.json",
		modelPath:       "artifacts/model.json",
		sessionCapacity: 10_000,
		sessionTTL:      time.Hour,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the artifacts and builds the pipeline. Any failure leaves the
// service unstarted; callers must not serve predictions in that case.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "loading artifacts",
		logger.String("scaler", s.scalerPath),
		logger.String("model", s.modelPath),
	)

	start := time.Now()
	bundle, err := artifact.Load(ctx, s.scalerPath, s.modelPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	pipeline, err := inference.New(bundle)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	metrics.RecordArtifactLoadDuration(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordArtifactLoaded("scaler", bundle.Scaler.Kind(), bundle.Scaler.NumFeatures())
	metrics.RecordArtifactLoaded("model", bundle.Model.Kind(), bundle.Model.NumFeatures())

	s.bundle = bundle
	s.predictor = pipeline
	s.sessions = session.NewInMemoryStore(
		session.WithCapacity(s.sessionCapacity),
		session.WithTTL(s.sessionTTL),
	)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "pressure advisor ready",
		logger.String("scalerKind", bundle.Scaler.Kind()),
		logger.String("modelKind", bundle.Model.Kind()),
		logger.Int("features", bundle.Model.NumFeatures()),
		logger.Int("sessionCapacity", s.sessionCapacity),
	)

	return nil
}

// Stop marks the service as stopped. Loaded artifacts are released.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.bundle = nil
	s.predictor = nil
	s.sessions = nil
	s.logger.Info(context.Background(), "pressure advisor stopped")
}

// Ready reports whether predictions can be served.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Form returns the current field values for a session.
func (s *Service) Form(ctx context.Context, sessionID string) session.State {
	s.mu.RLock()
	sessions := s.sessions
	s.mu.RUnlock()

	if sessions == nil {
		return session.Fresh()
	}
	st, _ := sessions.Get(ctx, sessionID)
	return st
}

// Predict stores rec as the session's current values and runs the pipeline
// on it. The values are kept even when the prediction fails.
func (s *Service) Predict(ctx context.Context, sessionID string, rec features.Record) (inference.Result, error) {
	s.mu.RLock()
	predictor, sessions := s.predictor, s.sessions
	s.mu.RUnlock()

	if predictor == nil {
		return inference.Result{}, ErrNotStarted
	}

	st, _ := sessions.Get(ctx, sessionID)
	st.Record = rec
	sessions.Save(ctx, sessionID, st)

	res, err := predictor.Predict(ctx, rec)
	if err != nil {
		s.logger.Error(ctx, "prediction failed",
			logger.String("session", sessionID),
			logger.Any("record", rec),
			logger.Error(err),
		)
		return inference.Result{}, err
	}

	st.Predictions++
	sessions.Save(ctx, sessionID, st)

	s.logger.Debug(ctx, "prediction served",
		logger.String("session", sessionID),
		logger.Float64("pressureBar", res.PressureBar),
		logger.Bool("advisory", res.Advisory),
	)
	if res.Advisory {
		s.logger.Warn(ctx, "wet bulb above dry bulb",
			logger.String("session", sessionID),
			logger.Float64("dbt", rec.DryBulbC),
			logger.Float64("wbt", rec.WetBulbC),
		)
	}
	return res, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"scalerPath":      s.scalerPath,
		"modelPath":       s.modelPath,
		"sessionCapacity": s.sessionCapacity,
	}

	if s.started {
		sessions := s.sessions.Len()
		stats["scalerKind"] = s.bundle.Scaler.Kind()
		stats["modelKind"] = s.bundle.Model.Kind()
		stats["features"] = features.Names()
		stats["activeSessions"] = sessions
		stats["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())
		if n, err := metrics.Gather("r744_advisor_predictions_total"); err == nil {
			stats["predictions"] = int(n)
		} else {
			stats["predictions"] = 0
		}

		metrics.UpdateActiveSessions(sessions)
	}

	return stats
}
