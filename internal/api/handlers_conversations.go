// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/session"
)

// ConversationResponse describes a conversation to API clients.
type ConversationResponse struct {
	ConversationID string    `json:"conversation_id"`
	FighterID      int       `json:"fighter_id"`
	FighterName    string    `json:"fighter_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// TurnPayload is one utterance in a transcript.
type TurnPayload struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// TranscriptResponse is a conversation with its full turn history.
type TranscriptResponse struct {
	ConversationID string        `json:"conversation_id"`
	FighterID      int           `json:"fighter_id"`
	FighterName    string        `json:"fighter_name"`
	CreatedAt      time.Time     `json:"created_at"`
	LastActive     time.Time     `json:"last_active"`
	Turns          []TurnPayload `json:"turns"`
}

// CreateConversation handles POST /api/v1/conversations.
// Opens a conversation against the requested fighter slot.
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if !validateRequest(rw, &req) {
		return
	}

	f, ok := h.fighters[req.FighterID]
	if !ok {
		rw.BadRequest(fmt.Sprintf("fighter %d is not configured", req.FighterID))
		return
	}

	sess, err := h.manager.Create(f)
	if err != nil {
		if errors.Is(err, session.ErrLimitReached) {
			rw.ServiceUnavailable("Session limit reached, try again later")
			return
		}
		rw.InternalError("Failed to create conversation")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("conversation_id", sess.ID()).
		Int("fighter_id", f.ID()).
		Str("fighter", f.Name()).
		Msg("Conversation opened")

	rw.Created(ConversationResponse{
		ConversationID: sess.ID(),
		FighterID:      f.ID(),
		FighterName:    f.Name(),
		CreatedAt:      sess.CreatedAt(),
	})
}

// GetConversation handles GET /api/v1/conversations/{id}.
// Returns the conversation transcript.
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sess, ok := h.lookupSession(rw, r)
	if !ok {
		return
	}

	turns := sess.Transcript()
	payload := make([]TurnPayload, len(turns))
	for i, turn := range turns {
		payload[i] = TurnPayload{Role: turn.Role.String(), Text: turn.Text}
	}

	rw.Success(TranscriptResponse{
		ConversationID: sess.ID(),
		FighterID:      sess.Fighter().ID(),
		FighterName:    sess.Fighter().Name(),
		CreatedAt:      sess.CreatedAt(),
		LastActive:     sess.LastActive(),
		Turns:          payload,
	})
}

// DeleteConversation handles DELETE /api/v1/conversations/{id}.
// Ends the conversation and discards its state.
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if err := h.manager.Delete(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			rw.NotFound("Conversation not found")
			return
		}
		rw.InternalError("Failed to delete conversation")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("conversation_id", id).
		Msg("Conversation ended")

	rw.NoContent()
}

// lookupSession resolves the {id} path parameter to a live session,
// writing the 404 itself when the conversation is unknown.
func (h *Handler) lookupSession(rw *ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := h.manager.Get(id)
	if err != nil {
		rw.NotFound("Conversation not found")
		return nil, false
	}
	return sess, true
}
