// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package analytics

import (
	"context"
	"testing"

	"github.com/parleyhq/parley/internal/events"
)

func seedEvent(conversationID string, fighterID, turnIndex int, action string, recommended bool, totalMS int64) *events.TurnEvent {
	e := events.NewTurnEvent(conversationID, fighterID)
	e.FighterName = "barcor"
	e.TurnIndex = turnIndex
	e.Action = action
	e.Recommended = recommended
	e.GenerateMS = totalMS / 2
	e.ArbitrateMS = totalMS / 4
	e.TotalMS = totalMS
	return e
}

func TestInsertTurn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.InsertTurn(ctx, seedEvent("conv-1", 1, 0, "a", false, 100)); err != nil {
		t.Fatalf("InsertTurn() error = %v", err)
	}
	if err := s.InsertTurn(ctx, seedEvent("conv-1", 1, 1, "d", true, 200)); err != nil {
		t.Fatalf("InsertTurn() error = %v", err)
	}

	count, err := s.ConversationTurnCount(ctx, "conv-1")
	if err != nil {
		t.Fatalf("ConversationTurnCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("turn count = %d, want 2", count)
	}
}

func TestInsertTurn_DeduplicatesByEventID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := seedEvent("conv-1", 1, 0, "a", false, 100)
	if err := s.InsertTurn(ctx, e); err != nil {
		t.Fatalf("InsertTurn() error = %v", err)
	}
	// Redelivery of the same event must be a no-op, not an error.
	if err := s.InsertTurn(ctx, e); err != nil {
		t.Fatalf("InsertTurn() redelivery error = %v", err)
	}

	count, err := s.ConversationTurnCount(ctx, "conv-1")
	if err != nil {
		t.Fatalf("ConversationTurnCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("turn count = %d, want 1 after dedup", count)
	}
}

func TestInsertTurn_RejectsInvalid(t *testing.T) {
	s := newTestStore(t)

	e := seedEvent("conv-1", 1, 0, "a", false, 100)
	e.Action = ""
	if err := s.InsertTurn(context.Background(), e); err == nil {
		t.Error("InsertTurn() expected error for invalid event")
	}
}

func TestInsertTurns_Batch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []*events.TurnEvent{
		seedEvent("conv-1", 1, 0, "a", false, 100),
		seedEvent("conv-1", 1, 1, "b", false, 150),
		seedEvent("conv-2", 2, 0, "d", true, 300),
	}
	if err := s.InsertTurns(ctx, batch); err != nil {
		t.Fatalf("InsertTurns() error = %v", err)
	}

	count, err := s.ConversationTurnCount(ctx, "conv-1")
	if err != nil {
		t.Fatalf("ConversationTurnCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("conv-1 count = %d, want 2", count)
	}

	if err := s.InsertTurns(ctx, nil); err != nil {
		t.Errorf("InsertTurns(nil) error = %v, want nil", err)
	}
}

func TestInsertTurns_AbortsOnInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := seedEvent("conv-9", 1, 1, "b", false, 150)
	bad.ConversationID = ""

	batch := []*events.TurnEvent{
		seedEvent("conv-9", 1, 0, "a", false, 100),
		bad,
	}
	if err := s.InsertTurns(ctx, batch); err == nil {
		t.Fatal("InsertTurns() expected error for invalid batch")
	}

	// The transaction rolled back; nothing from the batch persists.
	count, err := s.ConversationTurnCount(ctx, "conv-9")
	if err != nil {
		t.Fatalf("ConversationTurnCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("conv-9 count = %d, want 0 after rollback", count)
	}
}

func TestOverview(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []*events.TurnEvent{
		seedEvent("conv-1", 1, 0, "a", false, 100),
		seedEvent("conv-1", 1, 1, "d", true, 300),
		seedEvent("conv-2", 1, 0, "a", false, 200),
		seedEvent("conv-3", 2, 0, "c", false, 400),
	}
	if err := s.InsertTurns(ctx, batch); err != nil {
		t.Fatalf("InsertTurns() error = %v", err)
	}

	stats, err := s.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	if stats.TotalTurns != 4 {
		t.Errorf("TotalTurns = %d, want 4", stats.TotalTurns)
	}
	if stats.TotalConversations != 3 {
		t.Errorf("TotalConversations = %d, want 3", stats.TotalConversations)
	}
	if stats.RecommendTurns != 1 {
		t.Errorf("RecommendTurns = %d, want 1", stats.RecommendTurns)
	}
	if stats.AvgTotalMS != 250 {
		t.Errorf("AvgTotalMS = %v, want 250", stats.AvgTotalMS)
	}

	if len(stats.Fighters) != 2 {
		t.Fatalf("Fighters count = %d, want 2", len(stats.Fighters))
	}

	f1 := stats.Fighters[0]
	if f1.FighterID != 1 || f1.Turns != 3 || f1.Conversations != 2 || f1.RecommendTurns != 1 {
		t.Errorf("fighter 1 stats = %+v", f1)
	}
	if f1.AvgTotalMS != 200 {
		t.Errorf("fighter 1 AvgTotalMS = %v, want 200", f1.AvgTotalMS)
	}
	if f1.Actions["a"] != 2 || f1.Actions["d"] != 1 {
		t.Errorf("fighter 1 actions = %v, want a:2 d:1", f1.Actions)
	}

	f2 := stats.Fighters[1]
	if f2.FighterID != 2 || f2.Turns != 1 || f2.Actions["c"] != 1 {
		t.Errorf("fighter 2 stats = %+v", f2)
	}
}

func TestOverview_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	if stats.TotalTurns != 0 || stats.TotalConversations != 0 {
		t.Errorf("empty store stats = %+v, want zeros", stats)
	}
	if stats.AvgTotalMS != 0 {
		t.Errorf("AvgTotalMS = %v, want 0", stats.AvgTotalMS)
	}
	if stats.Fighters == nil {
		t.Error("Fighters should be an empty slice, not nil")
	}
	if len(stats.Fighters) != 0 {
		t.Errorf("Fighters count = %d, want 0", len(stats.Fighters))
	}
}
