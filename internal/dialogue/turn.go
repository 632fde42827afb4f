// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package dialogue

// Role identifies the speaker of a turn.
type Role int

const (
	// RoleUser is the human side of the conversation.
	RoleUser Role = iota

	// RoleSystem is the recommender side of the conversation.
	RoleSystem
)

// String returns the human-readable role name.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Turn is a single utterance in a conversation. Turns are never mutated
// after creation; a conversation is an append-only ordered sequence.
type Turn struct {
	// Role is the speaker of this turn.
	Role Role `json:"role"`

	// Text is the raw utterance text.
	Text string `json:"text"`
}

// RoleAt returns the speaker implied by a zero-based position in the turn
// sequence. Conversations open with the user, so even positions are user
// turns and odd positions are system turns.
func RoleAt(position int) Role {
	if position%2 == 0 {
		return RoleUser
	}
	return RoleSystem
}

// Texts flattens a turn sequence into its utterance texts, preserving
// order and keeping empty entries so positional parity stays intact.
func Texts(turns []Turn) []string {
	texts := make([]string, len(turns))
	for i, t := range turns {
		texts[i] = t.Text
	}
	return texts
}
