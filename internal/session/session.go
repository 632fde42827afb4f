// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package session holds live conversation state in memory: one session per
// conversation, carrying the turn history and the arbitration penalty vector
// between requests. The model core is stateless; everything it needs back on
// the next turn lives here.
//
// Sessions are not persisted. A restart forgets every conversation, and the
// TTL sweeper reclaims conversations that go idle.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/parleyhq/parley/internal/dialogue"
	"github.com/parleyhq/parley/internal/fighter"
)

// Replier is the conversational surface a session drives. *fighter.Fighter
// implements it; tests substitute stubs.
type Replier interface {
	// ID is the fighter slot, 1 or 2.
	ID() int

	// Name is the fighter's display name.
	Name() string

	// Reply runs one dialogue turn against the given history and penalty
	// state and returns the finalized outcome.
	Reply(ctx context.Context, input string, history []string, penalty []float64) (fighter.Outcome, error)

	// Recommendations returns ranked item titles for the given history.
	Recommendations(ctx context.Context, history []string) ([]string, error)
}

// Session is one live conversation. All turn processing for a conversation
// goes through its session, and the conversation mutex serializes it: two
// concurrent posts to the same conversation run one after the other, so the
// history and penalty state never interleave.
type Session struct {
	id      string
	fighter Replier

	// convMu serializes turns. It is held across the model call, so a
	// conversation never runs two replies at once.
	convMu  sync.Mutex
	turns   []dialogue.Turn
	penalty []float64

	// metaMu guards the activity timestamps separately, so the sweeper
	// can read them while a turn is in flight.
	metaMu     sync.Mutex
	createdAt  time.Time
	lastActive time.Time
}

func newSession(id string, f Replier) *Session {
	now := time.Now()
	return &Session{
		id:         id,
		fighter:    f,
		createdAt:  now,
		lastActive: now,
	}
}

// ID returns the conversation identifier.
func (s *Session) ID() string {
	return s.id
}

// Fighter returns the fighter serving this conversation.
func (s *Session) Fighter() Replier {
	return s.fighter
}

// Converse runs one turn: the user text joins the stored history, the
// fighter replies, and on success both utterances and the updated penalty
// vector are recorded. The returned index is the zero-based position of
// this exchange in the conversation.
//
// On error nothing is recorded; the caller may retry the same input.
func (s *Session) Converse(ctx context.Context, text string) (fighter.Outcome, int, error) {
	s.touch()

	s.convMu.Lock()
	defer s.convMu.Unlock()

	index := len(s.turns) / 2
	outcome, err := s.fighter.Reply(ctx, text, dialogue.Texts(s.turns), s.penalty)
	if err != nil {
		return fighter.Outcome{}, 0, err
	}

	s.turns = append(s.turns,
		dialogue.Turn{Role: dialogue.RoleUser, Text: text},
		dialogue.Turn{Role: dialogue.RoleSystem, Text: outcome.Response},
	)
	s.penalty = outcome.Penalty
	s.touch()
	return outcome, index, nil
}

// Recommendations returns ranked item titles for the conversation so far.
func (s *Session) Recommendations(ctx context.Context) ([]string, error) {
	s.touch()

	s.convMu.Lock()
	defer s.convMu.Unlock()

	return s.fighter.Recommendations(ctx, dialogue.Texts(s.turns))
}

// Transcript returns a copy of the conversation history.
func (s *Session) Transcript() []dialogue.Turn {
	s.convMu.Lock()
	defer s.convMu.Unlock()

	turns := make([]dialogue.Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// TurnCount returns the number of completed exchanges.
func (s *Session) TurnCount() int {
	s.convMu.Lock()
	defer s.convMu.Unlock()

	return len(s.turns) / 2
}

// CreatedAt returns when the conversation was opened.
func (s *Session) CreatedAt() time.Time {
	s.metaMu.Lock()
	defer s.metaMu.Unlock()

	return s.createdAt
}

// LastActive returns when the conversation last saw a turn or a
// recommendation request.
func (s *Session) LastActive() time.Time {
	s.metaMu.Lock()
	defer s.metaMu.Unlock()

	return s.lastActive
}

func (s *Session) touch() {
	s.metaMu.Lock()
	s.lastActive = time.Now()
	s.metaMu.Unlock()
}

// idleBefore reports whether the session saw no activity since cutoff.
func (s *Session) idleBefore(cutoff time.Time) bool {
	s.metaMu.Lock()
	defer s.metaMu.Unlock()

	return s.lastActive.Before(cutoff)
}
