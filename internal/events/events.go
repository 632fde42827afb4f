// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package events carries per-turn telemetry from the serving edge to
// in-process consumers over a watermill pub/sub bus.
//
// Events describe what a turn did, never what was said: no utterance
// text, entity mentions, or model output crosses the bus. The analytics
// store and any future consumers see timings and action labels only.
package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current turn event schema version. Increment on
// breaking changes to TurnEvent.
const SchemaVersion = 1

// TopicTurns is the bus topic completed turns are published on. The
// in-process channel transport matches topics exactly, so all turns
// share one topic and consumers filter on fields.
const TopicTurns = "turns"

// TurnEvent records one completed conversation turn.
type TurnEvent struct {
	// Schema version for forward compatibility.
	SchemaVersion int `json:"schema_version,omitempty"`

	// Identification
	EventID        string    `json:"event_id"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`

	// Which fighter served the turn and where in the dialogue it sits.
	FighterID   int    `json:"fighter_id"`
	FighterName string `json:"fighter_name,omitempty"`
	TurnIndex   int    `json:"turn_index"`

	// What the turn did.
	Action      string `json:"action"`
	Recommended bool   `json:"recommended"`

	// Stage timings in milliseconds.
	GenerateMS  int64 `json:"generate_ms"`
	ArbitrateMS int64 `json:"arbitrate_ms"`
	TotalMS     int64 `json:"total_ms"`
}

// NewTurnEvent creates an event with a unique ID, UTC timestamp, and
// current schema version.
func NewTurnEvent(conversationID string, fighterID int) *TurnEvent {
	return &TurnEvent{
		SchemaVersion:  SchemaVersion,
		EventID:        uuid.New().String(),
		ConversationID: conversationID,
		FighterID:      fighterID,
		Timestamp:      time.Now().UTC(),
	}
}

// ValidationError reports a missing or malformed event field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("turn event field %s: %s", e.Field, e.Message)
}

// Validate checks required fields before an event goes on the bus.
func (e *TurnEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.ConversationID == "" {
		return &ValidationError{Field: "conversation_id", Message: "required"}
	}
	if e.FighterID != 1 && e.FighterID != 2 {
		return &ValidationError{Field: "fighter_id", Message: "must be 1 or 2"}
	}
	if e.TurnIndex < 0 {
		return &ValidationError{Field: "turn_index", Message: "must not be negative"}
	}
	if e.Action == "" {
		return &ValidationError{Field: "action", Message: "required"}
	}
	return nil
}

// Topic returns the bus topic for this event.
func (e *TurnEvent) Topic() string {
	return TopicTurns
}

// EnsureSchemaVersion sets the schema version on events built by hand.
func (e *TurnEvent) EnsureSchemaVersion() {
	if e.SchemaVersion == 0 {
		e.SchemaVersion = SchemaVersion
	}
}
