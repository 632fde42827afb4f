// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package api

import (
	"net/http"

	"github.com/parleyhq/parley/internal/logging"
)

// RecommendationsResponse lists ranked item titles for a conversation.
type RecommendationsResponse struct {
	ConversationID string   `json:"conversation_id"`
	Items          []string `json:"items"`
}

// GetRecommendations handles GET /api/v1/recommendations/{id}.
// Returns the fighter's ranked recommendations for the conversation so
// far, without adding a turn to the history.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sess, ok := h.lookupSession(rw, r)
	if !ok {
		return
	}

	ctx := logging.ContextWithConversationID(r.Context(), sess.ID())

	items, err := sess.Recommendations(ctx)
	if err != nil {
		writeTurnError(rw, ctx, err)
		return
	}
	if items == nil {
		items = []string{}
	}

	rw.Success(RecommendationsResponse{
		ConversationID: sess.ID(),
		Items:          items,
	})
}
