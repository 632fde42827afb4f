// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package api

import (
	"net/http"
	"time"
)

// Healthz handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rw.Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// Readyz handles readiness probe requests (Kubernetes-style).
// Returns 200 OK only when the service can take traffic. The model
// runtime is validated once at startup and guarded per call by the
// circuit breaker, so readiness covers the analytics store alone; a
// deployment without analytics is always ready.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	analyticsConnected := h.stats == nil || h.stats.Ping(r.Context()) == nil

	data := map[string]interface{}{
		"analytics_connected": analyticsConnected,
		"active_sessions":     h.manager.Len(),
		"ready_to_serve":      analyticsConnected,
		"uptime":              time.Since(h.startTime).Seconds(),
	}

	if !analyticsConnected {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service not ready", data)
		return
	}

	rw.Success(data)
}
