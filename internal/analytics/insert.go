// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package analytics

import (
	"context"
	"fmt"

	"github.com/parleyhq/parley/internal/events"
	"github.com/parleyhq/parley/internal/metrics"
)

const insertTurnSQL = `
	INSERT INTO turns (
		event_id, conversation_id, fighter_id, fighter_name, turn_index,
		action, recommended, generate_ms, arbitrate_ms, total_ms, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (event_id) DO NOTHING`

// InsertTurn writes one turn event. Redelivered events with a known
// event_id are silently skipped.
func (s *Store) InsertTurn(ctx context.Context, event *events.TurnEvent) error {
	if err := event.Validate(); err != nil {
		metrics.RecordAnalyticsInsert(err)
		return fmt.Errorf("validate event: %w", err)
	}

	_, err := s.conn.ExecContext(ctx, insertTurnSQL,
		event.EventID, event.ConversationID, event.FighterID, event.FighterName,
		event.TurnIndex, event.Action, event.Recommended,
		event.GenerateMS, event.ArbitrateMS, event.TotalMS, event.Timestamp,
	)
	metrics.RecordAnalyticsInsert(err)
	if err != nil {
		return fmt.Errorf("insert turn %s: %w", event.EventID, err)
	}
	return nil
}

// InsertTurns writes a batch of events in one transaction. Any invalid
// or failing event aborts the whole batch.
func (s *Store) InsertTurns(ctx context.Context, batch []*events.TurnEvent) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertTurnSQL)
	if err != nil {
		return fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range batch {
		if err := event.Validate(); err != nil {
			return fmt.Errorf("validate event: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			event.EventID, event.ConversationID, event.FighterID, event.FighterName,
			event.TurnIndex, event.Action, event.Recommended,
			event.GenerateMS, event.ArbitrateMS, event.TotalMS, event.Timestamp,
		); err != nil {
			metrics.RecordAnalyticsInsert(err)
			return fmt.Errorf("insert turn %s: %w", event.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordAnalyticsInsert(err)
		return fmt.Errorf("commit batch: %w", err)
	}

	metrics.RecordAnalyticsInsert(nil)
	return nil
}
