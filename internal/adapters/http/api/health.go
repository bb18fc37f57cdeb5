// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/okian/r744/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthHandler serves the Prometheus exposition of the custom registry.
type HealthHandler struct {
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// ReadinessProvider reports whether predictions can be served.
type ReadinessProvider interface {
	Ready() bool
}

// ReadyHandler answers readiness probes.
type ReadyHandler struct {
	provider ReadinessProvider
}

// NewReadyHandler creates a new readiness handler.
func NewReadyHandler(provider ReadinessProvider) *ReadyHandler {
	return &ReadyHandler{provider: provider}
}

// HandleReady handles GET /readyz: 200 once artifacts are loaded, 503 before.
func (h *ReadyHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if !h.provider.Ready() {
		writeError(w, http.StatusServiceUnavailable, "not_ready", ErrNotReady)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}
