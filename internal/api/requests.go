// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package api

// CreateConversationRequest is the validated request body for
// POST /api/v1/conversations.
//
// Fields:
//   - FighterID: The fighter slot to converse with (1 or 2)
type CreateConversationRequest struct {
	FighterID int `json:"fighter_id" validate:"required,min=1,max=2"`
}

// PostMessageRequest is the validated request body for
// POST /api/v1/conversations/{id}/messages.
//
// Fields:
//   - Text: The user utterance (1-4000 characters; model-side context
//     budgets truncate old history, not the incoming message)
type PostMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}
