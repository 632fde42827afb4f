// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/parleyhq/parley/internal/events"
	"github.com/parleyhq/parley/internal/fighter"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/session"
)

// MessageResponse is the outcome of one dialogue turn.
type MessageResponse struct {
	ConversationID string `json:"conversation_id"`
	TurnIndex      int    `json:"turn_index"`
	Response       string `json:"response"`
	Action         string `json:"action"`
	Recommended    bool   `json:"recommended"`
	GenerateMS     int64  `json:"generate_ms"`
	ArbitrateMS    int64  `json:"arbitrate_ms"`
	TotalMS        int64  `json:"total_ms"`
}

// PostMessage handles POST /api/v1/conversations/{id}/messages.
// Runs one dialogue turn and returns the fighter's reply. A failed turn
// records nothing; the client may retry the same message.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sess, ok := h.lookupSession(rw, r)
	if !ok {
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	ctx := logging.ContextWithConversationID(r.Context(), sess.ID())

	start := time.Now()
	outcome, index, err := sess.Converse(ctx, req.Text)
	if err != nil {
		writeTurnError(rw, ctx, err)
		return
	}
	total := time.Since(start)

	h.publishTurn(ctx, sess, index, outcome, total)

	rw.Success(MessageResponse{
		ConversationID: sess.ID(),
		TurnIndex:      index,
		Response:       outcome.Response,
		Action:         outcome.Action,
		Recommended:    outcome.Recommended,
		GenerateMS:     outcome.GenerateDuration.Milliseconds(),
		ArbitrateMS:    outcome.ArbitrateDuration.Milliseconds(),
		TotalMS:        total.Milliseconds(),
	})
}

// publishTurn emits the turn telemetry event. Publishing is best effort;
// a failure is logged and the turn response still goes out.
func (h *Handler) publishTurn(ctx context.Context, sess *session.Session, index int, outcome fighter.Outcome, total time.Duration) {
	if h.publisher == nil {
		return
	}

	event := events.NewTurnEvent(sess.ID(), sess.Fighter().ID())
	event.FighterName = sess.Fighter().Name()
	event.TurnIndex = index
	event.Action = outcome.Action
	event.Recommended = outcome.Recommended
	event.GenerateMS = outcome.GenerateDuration.Milliseconds()
	event.ArbitrateMS = outcome.ArbitrateDuration.Milliseconds()
	event.TotalMS = total.Milliseconds()

	if err := h.publisher.PublishTurn(event); err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("event_id", event.EventID).
			Msg("Failed to publish turn event")
	}
}

// writeTurnError maps a failed turn to a response: a tripped circuit
// breaker means the runtime is known-down (503), anything else surfaces
// as an upstream failure (502).
func writeTurnError(rw *ResponseWriter, ctx context.Context, err error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Ctx(ctx).Warn().Err(err).Msg("Turn rejected, model runtime circuit open")
		rw.ServiceUnavailable("Model runtime unavailable")
		return
	}

	logging.Ctx(ctx).Error().Err(err).Msg("Turn failed")
	rw.ExternalServiceError("model runtime", err)
}
