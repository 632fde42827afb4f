// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package barcor

import (
	"context"

	"github.com/parleyhq/parley/internal/backbone"
	"github.com/parleyhq/parley/internal/catalog"
	"github.com/parleyhq/parley/internal/dialogue"
)

// Respond runs one full turn against the conversation: decode a candidate
// reply, arbitrate the action, then either replace the candidate with a
// rendered recommendation list (reserved last option) or clean the
// candidate and return it.
//
// The returned penalty vector has the chosen option floored. On error no
// updated vector is returned; the caller keeps its previous state and may
// retry the turn.
func (m *Model) Respond(ctx context.Context, conv backbone.Conversation, options catalog.OptionSet, penalty []float64) (string, []float64, error) {
	genInputs, candidate, err := m.Converse(ctx, conv)
	if err != nil {
		return "", nil, err
	}

	choice, updated, err := m.Choose(ctx, genInputs, options.Labels(), penalty)
	if err != nil {
		return "", nil, err
	}

	if choice != options.Last().Label {
		return dialogue.CleanResponse(candidate), updated, nil
	}

	ranked, _, err := m.Recommend(ctx, conv)
	if err != nil {
		return "", nil, err
	}

	response, err := backbone.RenderRecommendations(m.catalog, ranked[0])
	if err != nil {
		return "", nil, err
	}
	return response, updated, nil
}
