// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/config"
)

func testManager(cfg config.SessionConfig) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}
	return NewManager(cfg)
}

func TestManagerCreateGet(t *testing.T) {
	m := testManager(config.SessionConfig{})

	first, err := m.Create(testReplier())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := m.Create(testReplier())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if first.ID() == "" || second.ID() == "" {
		t.Fatal("Create produced an empty conversation id")
	}
	if first.ID() == second.ID() {
		t.Errorf("Create produced duplicate id %q", first.ID())
	}

	got, err := m.Get(first.ID())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != first {
		t.Error("Get returned a different session than Create")
	}
	if got.Fighter().ID() != 1 {
		t.Errorf("Fighter().ID() = %d, want 1", got.Fighter().ID())
	}

	if got := m.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}

func TestManagerGet_NotFound(t *testing.T) {
	m := testManager(config.SessionConfig{})

	if _, err := m.Get("no-such-conversation"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestManagerDelete(t *testing.T) {
	m := testManager(config.SessionConfig{})

	sess, err := m.Create(testReplier())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := m.Delete(sess.ID()); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := m.Get(sess.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
	if err := m.Delete(sess.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if got := m.Len(); got != 0 {
		t.Errorf("Len after Delete = %d, want 0", got)
	}
}

func TestManagerCreate_LimitReached(t *testing.T) {
	m := testManager(config.SessionConfig{MaxSessions: 2})

	first, err := m.Create(testReplier())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := m.Create(testReplier()); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := m.Create(testReplier()); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("Create over cap error = %v, want ErrLimitReached", err)
	}

	// Ending a conversation frees its slot.
	if err := m.Delete(first.ID()); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := m.Create(testReplier()); err != nil {
		t.Errorf("Create after Delete returned error: %v", err)
	}
}

func TestManagerCreate_ZeroCapIsUnlimited(t *testing.T) {
	m := testManager(config.SessionConfig{MaxSessions: 0})

	for i := 0; i < 20; i++ {
		if _, err := m.Create(testReplier()); err != nil {
			t.Fatalf("Create %d returned error: %v", i, err)
		}
	}
	if got := m.Len(); got != 20 {
		t.Errorf("Len = %d, want 20", got)
	}
}

func TestManagerSweep(t *testing.T) {
	m := testManager(config.SessionConfig{TTL: 50 * time.Millisecond})

	idle, err := m.Create(testReplier())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	fresh, err := m.Create(testReplier())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if evicted := m.Sweep(time.Now()); evicted != 1 {
		t.Fatalf("Sweep evicted %d sessions, want 1", evicted)
	}
	if _, err := m.Get(idle.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle session survived the sweep: %v", err)
	}
	if _, err := m.Get(fresh.ID()); err != nil {
		t.Errorf("fresh session was evicted: %v", err)
	}

	if evicted := m.Sweep(time.Now()); evicted != 0 {
		t.Errorf("second Sweep evicted %d sessions, want 0", evicted)
	}
}

func TestManagerSweep_ActivityKeepsAlive(t *testing.T) {
	m := testManager(config.SessionConfig{TTL: 50 * time.Millisecond})

	sess, err := m.Create(testReplier())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if _, _, err := sess.Converse(context.Background(), "hi"); err != nil {
		t.Fatalf("Converse returned error: %v", err)
	}

	if evicted := m.Sweep(time.Now()); evicted != 0 {
		t.Errorf("Sweep evicted %d sessions after a turn, want 0", evicted)
	}
	if _, err := m.Get(sess.ID()); err != nil {
		t.Errorf("active session was evicted: %v", err)
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := testManager(config.SessionConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := m.Create(testReplier())
			if err != nil {
				t.Errorf("Create returned error: %v", err)
				return
			}
			if _, err := m.Get(sess.ID()); err != nil {
				t.Errorf("Get returned error: %v", err)
			}
			if _, _, err := sess.Converse(context.Background(), "hi"); err != nil {
				t.Errorf("Converse returned error: %v", err)
			}
			if err := m.Delete(sess.ID()); err != nil {
				t.Errorf("Delete returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := m.Len(); got != 0 {
		t.Errorf("Len after concurrent churn = %d, want 0", got)
	}
}
