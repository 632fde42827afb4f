// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package api

import (
	"net/http"
)

// Stats handles GET /api/v1/stats.
// Aggregates are computed from the analytics store, not from live
// sessions, so they cover every conversation since the store was
// created rather than only the ones currently in memory.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.stats == nil {
		rw.ServiceUnavailable("Analytics storage is not configured")
		return
	}

	stats, err := h.stats.Overview(r.Context())
	if err != nil {
		rw.AnalyticsError(err)
		return
	}

	rw.Success(stats)
}
