// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package barcor

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/parleyhq/parley/internal/backbone"
	"github.com/parleyhq/parley/internal/logging"
)

// Recommend scores the catalog against the conversation and returns the
// ranked item ids, best first. With no evaluation targets it scores one
// example and returns one row; with Recs set it scores one example per
// target the catalog knows and returns the matching label ids.
//
// Mentioned entities are resolved against the catalog with unknown surface
// forms silently dropped. The classification head conditions on the encoded
// context alone, so the resolved ids only gate that no stray mention can
// fail the turn.
func (m *Model) Recommend(ctx context.Context, conv backbone.Conversation) ([][]int, []int, error) {
	contextIDs, err := m.encodeContext(ctx, conv)
	if err != nil {
		return nil, nil, err
	}

	entityIDs := m.knownEntityIDs(conv.Entities)

	var (
		rows   [][]int
		labels []int
	)
	if len(conv.Recs) == 0 {
		rows = [][]int{contextIDs}
	} else {
		for _, rec := range conv.Recs {
			id, ok := m.catalog.EntityID(rec)
			if !ok {
				continue
			}
			rows = append(rows, contextIDs)
			labels = append(labels, id)
		}
		if len(rows) == 0 {
			return nil, nil, ErrNoScoreableExamples
		}
	}

	logging.Ctx(ctx).Debug().
		Int("mentions", len(conv.Entities)).
		Int("known_entities", len(entityIDs)).
		Int("examples", len(rows)).
		Msg("Scoring recommendations")

	batch, err := m.padContext(ctx, rows)
	if err != nil {
		return nil, nil, err
	}

	logits, err := m.runtime.Score(ctx, batch)
	if err != nil {
		return nil, nil, err
	}
	if len(logits) != len(rows) {
		return nil, nil, fmt.Errorf("barcor: scored %d examples, runtime returned %d rows", len(rows), len(logits))
	}

	ranked := make([][]int, len(logits))
	for i, row := range logits {
		top, err := m.topItems(row)
		if err != nil {
			return nil, nil, err
		}
		ranked[i] = top
	}

	return ranked, labels, nil
}

// knownEntityIDs resolves mention surface forms to catalog ids, silently
// dropping anything the catalog does not know.
func (m *Model) knownEntityIDs(names []string) []int {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		if id, ok := m.catalog.EntityID(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// topItems restricts a full-vocabulary score row to the catalog item subset
// and returns the top RecommendTopK item ids, highest score first. Ties
// keep the earlier catalog position, so rankings are deterministic.
func (m *Model) topItems(vocabScores []float64) ([]int, error) {
	itemIDs := m.catalog.ItemIDs()

	neg := make([]float64, len(itemIDs))
	for i, id := range itemIDs {
		if id < 0 || id >= len(vocabScores) {
			return nil, fmt.Errorf("barcor: item id %d outside score row of length %d", id, len(vocabScores))
		}
		neg[i] = vocabScores[id]
	}

	// Stable ascending sort of the negated scores ranks descending with
	// first-position wins on ties.
	floats.Scale(-1, neg)
	idx := make([]int, len(neg))
	floats.Argsort(neg, idx)

	k := m.cfg.RecommendTopK
	if k > len(idx) {
		k = len(idx)
	}
	top := make([]int, k)
	for j := 0; j < k; j++ {
		top[j] = itemIDs[idx[j]]
	}
	return top, nil
}
