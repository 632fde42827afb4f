// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/parleyhq/parley/internal/metrics"
)

// Stats holds the system-wide aggregates served by the stats endpoint.
type Stats struct {
	TotalTurns         int64          `json:"total_turns"`
	TotalConversations int64          `json:"total_conversations"`
	RecommendTurns     int64          `json:"recommend_turns"`
	AvgGenerateMS      float64        `json:"avg_generate_ms"`
	AvgArbitrateMS     float64        `json:"avg_arbitrate_ms"`
	AvgTotalMS         float64        `json:"avg_total_ms"`
	Fighters           []FighterStats `json:"fighters"`
}

// FighterStats breaks the aggregates down per fighter slot.
type FighterStats struct {
	FighterID      int              `json:"fighter_id"`
	FighterName    string           `json:"fighter_name"`
	Turns          int64            `json:"turns"`
	Conversations  int64            `json:"conversations"`
	RecommendTurns int64            `json:"recommend_turns"`
	AvgTotalMS     float64          `json:"avg_total_ms"`
	Actions        map[string]int64 `json:"actions"`
}

// Overview computes the stats endpoint payload. Three aggregate passes
// over the turns table; fast in DuckDB even at millions of rows.
func (s *Store) Overview(ctx context.Context) (*Stats, error) {
	start := time.Now()
	defer func() { metrics.RecordAnalyticsQuery("overview", time.Since(start)) }()

	stats := &Stats{Fighters: []FighterStats{}}

	totalsQuery := `
		SELECT
			COUNT(*),
			COUNT(DISTINCT conversation_id),
			COUNT(*) FILTER (WHERE recommended),
			COALESCE(AVG(generate_ms), 0),
			COALESCE(AVG(arbitrate_ms), 0),
			COALESCE(AVG(total_ms), 0)
		FROM turns`

	err := s.conn.QueryRowContext(ctx, totalsQuery).Scan(
		&stats.TotalTurns, &stats.TotalConversations, &stats.RecommendTurns,
		&stats.AvgGenerateMS, &stats.AvgArbitrateMS, &stats.AvgTotalMS,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turn totals: %w", err)
	}

	fighters, err := s.fighterBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	stats.Fighters = fighters

	return stats, nil
}

func (s *Store) fighterBreakdown(ctx context.Context) ([]FighterStats, error) {
	query := `
		SELECT
			fighter_id,
			COALESCE(MAX(fighter_name), ''),
			COUNT(*),
			COUNT(DISTINCT conversation_id),
			COUNT(*) FILTER (WHERE recommended),
			COALESCE(AVG(total_ms), 0)
		FROM turns
		GROUP BY fighter_id
		ORDER BY fighter_id`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fighter breakdown: %w", err)
	}
	defer rows.Close()

	fighters := []FighterStats{}
	for rows.Next() {
		f := FighterStats{Actions: map[string]int64{}}
		if err := rows.Scan(
			&f.FighterID, &f.FighterName, &f.Turns, &f.Conversations,
			&f.RecommendTurns, &f.AvgTotalMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fighter breakdown: %w", err)
		}
		fighters = append(fighters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fighter breakdown: %w", err)
	}

	if err := s.fillActionCounts(ctx, fighters); err != nil {
		return nil, err
	}
	return fighters, nil
}

func (s *Store) fillActionCounts(ctx context.Context, fighters []FighterStats) error {
	if len(fighters) == 0 {
		return nil
	}

	query := `
		SELECT fighter_id, action, COUNT(*)
		FROM turns
		GROUP BY fighter_id, action
		ORDER BY fighter_id, action`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query action counts: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*FighterStats, len(fighters))
	for i := range fighters {
		byID[fighters[i].FighterID] = &fighters[i]
	}

	for rows.Next() {
		var fighterID int
		var action string
		var count int64
		if err := rows.Scan(&fighterID, &action, &count); err != nil {
			return fmt.Errorf("failed to scan action counts: %w", err)
		}
		if f, ok := byID[fighterID]; ok {
			f.Actions[action] = count
		}
	}
	return rows.Err()
}

// ConversationTurnCount returns how many turns a conversation has
// recorded. Used by tests and data checks rather than the API surface.
func (s *Store) ConversationTurnCount(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM turns WHERE conversation_id = ?`, conversationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count conversation turns: %w", err)
	}
	return count, nil
}
