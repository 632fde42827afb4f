// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/metrics"
)

// Session-related errors
var (
	// ErrNotFound is returned when a conversation id is unknown, either
	// because it never existed or because the sweeper reclaimed it.
	ErrNotFound = errors.New("session not found")

	// ErrLimitReached is returned when creating a session would exceed
	// the configured cap on live conversations.
	ErrLimitReached = errors.New("session limit reached")
)

// Manager owns the live session set. It hands out uuid conversation ids,
// enforces the session cap and reclaims idle conversations on behalf of
// the sweeper. Safe for concurrent use.
type Manager struct {
	cfg config.SessionConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager(cfg config.SessionConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new conversation served by the given fighter and returns
// its session. Returns ErrLimitReached when the cap on live conversations
// is hit; a zero cap means unlimited.
func (m *Manager) Create(f Replier) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, ErrLimitReached
	}

	sess := newSession(uuid.New().String(), f)
	m.sessions[sess.ID()] = sess

	metrics.SessionsCreated.Inc()
	metrics.ActiveSessions.Inc()
	return sess, nil
}

// Get retrieves a session by conversation id.
// Returns ErrNotFound if not found.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete ends a conversation and releases its session.
// Returns ErrNotFound if not found.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)

	metrics.ActiveSessions.Dec()
	return nil
}

// Len returns the number of live conversations.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Sweep reclaims sessions idle for longer than the configured TTL and
// returns the number evicted. Candidates are collected under the read
// lock and re-checked under the write lock, so a turn landing mid-sweep
// keeps its session.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.cfg.TTL)

	m.mu.RLock()
	candidates := make([]string, 0)
	for id, sess := range m.sessions {
		if sess.idleBefore(cutoff) {
			candidates = append(candidates, id)
		}
	}
	m.mu.RUnlock()

	if len(candidates) == 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for _, id := range candidates {
		sess, ok := m.sessions[id]
		if !ok || !sess.idleBefore(cutoff) {
			continue
		}
		delete(m.sessions, id)
		evicted++

		metrics.SessionsExpired.Inc()
		metrics.ActiveSessions.Dec()
	}
	return evicted
}
