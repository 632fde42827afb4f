// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package api

import (
	"context"
	"errors"
	"time"

	"github.com/parleyhq/parley/internal/analytics"
	"github.com/parleyhq/parley/internal/events"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/validation"
)

// StatsProvider serves aggregate turn statistics and answers readiness
// probes. *analytics.Store implements it.
type StatsProvider interface {
	Overview(ctx context.Context) (*analytics.Stats, error)
	Ping(ctx context.Context) error
}

// TurnPublisher emits one telemetry event per completed turn.
// *events.Bus implements it.
type TurnPublisher interface {
	PublishTurn(event *events.TurnEvent) error
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, shared helpers (this file)
//   - handlers_conversations.go: conversation lifecycle endpoints
//   - handlers_messages.go: dialogue turn endpoint
//   - handlers_recommendations.go: direct recommendation endpoint
//   - handlers_stats.go: aggregate statistics endpoint
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	manager   *session.Manager
	fighters  map[int]session.Replier
	stats     StatsProvider // nil when analytics is disabled
	publisher TurnPublisher
	startTime time.Time
}

// NewHandler creates a new API handler. The fighters map is keyed by
// fighter slot; stats may be nil when the analytics store is disabled.
func NewHandler(manager *session.Manager, fighters map[int]session.Replier, stats StatsProvider, publisher TurnPublisher) *Handler {
	return &Handler{
		manager:   manager,
		fighters:  fighters,
		stats:     stats,
		publisher: publisher,
		startTime: time.Now(),
	}
}

// validateRequest validates a struct and writes the failure response
// itself. Returns true when the request passed validation.
func validateRequest(rw *ResponseWriter, v interface{}) bool {
	err := validation.ValidateStruct(v)
	if err == nil {
		return true
	}

	var structErr *validation.StructError
	if errors.As(err, &structErr) {
		rw.ValidationError("Request validation failed", structErr.Details())
		return false
	}

	rw.InternalError("Request validation failed")
	return false
}
