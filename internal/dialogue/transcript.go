// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package dialogue

// Role prefixes prepended to utterances when the dialogue history is
// flattened into a single model context. The trailing space is part of
// the trained format.
const (
	UserPrefix   = "User: "
	SystemPrefix = "System: "
)

// PrefixAt returns the role prefix for a zero-based position in the turn
// sequence. Parity is positional: even positions read as user turns, odd
// positions as system turns, counting dropped empty utterances too.
func PrefixAt(position int) string {
	if position%2 == 0 {
		return UserPrefix
	}
	return SystemPrefix
}

// TagUtterances prefixes each non-empty utterance with its positional role
// marker. Empty utterances are dropped from the result but still occupy
// their position for parity, so callers must pass the original sequence
// including blanks.
func TagUtterances(texts []string) []string {
	tagged := make([]string, 0, len(texts))
	for i, text := range texts {
		if text == "" {
			continue
		}
		tagged = append(tagged, PrefixAt(i)+text)
	}
	return tagged
}
