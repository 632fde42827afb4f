// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package analytics

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds schema DDL, which can stall on a cold file with
// a large write-ahead log to replay.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (s *Store) initialize() error {
	if err := s.createTables(); err != nil {
		return err
	}
	return s.createIndexes()
}

func (s *Store) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		// One row per completed turn. event_id doubles as the bus
		// message id, so replayed deliveries dedupe on the key.
		`CREATE TABLE IF NOT EXISTS turns (
			event_id UUID PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			fighter_id INTEGER NOT NULL,
			fighter_name TEXT,
			turn_index INTEGER NOT NULL,
			action TEXT NOT NULL,
			recommended BOOLEAN NOT NULL,
			generate_ms BIGINT NOT NULL,
			arbitrate_ms BIGINT NOT NULL,
			total_ms BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func (s *Store) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns (conversation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_fighter ON turns (fighter_id)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_created ON turns (created_at)`,
	}

	for _, index := range indexes {
		if _, err := s.conn.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", index, err)
		}
	}
	return nil
}
