// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package barcor

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/parleyhq/parley/internal/inference"
	"github.com/parleyhq/parley/internal/logging"
)

// Choose arbitrates the next dialogue action. It re-decodes a short fixed
// continuation from the generation inputs, reads the score distribution at
// the configured step from the end (where the prompt places the option
// word), scores each label's single-token rendering, adds the penalty
// vector elementwise, and picks the maximum with first-wins tie breaking.
//
// The returned vector is a copy of penalty with the chosen entry set to
// the floor; the input slice is never modified. Penalty length must equal
// len(labels) or the elementwise add panics; the orchestrator resets
// mismatched vectors before calling.
func (m *Model) Choose(ctx context.Context, genInputs inference.Batch, labels []string, penalty []float64) (string, []float64, error) {
	if len(labels) == 0 {
		return "", nil, ErrNoOptions
	}

	gen, err := m.runtime.Generate(ctx, genInputs, inference.GenerateParams{
		MinNewTokens:     m.cfg.DecisionNewTokens,
		MaxNewTokens:     m.cfg.DecisionNewTokens,
		NumBeams:         1,
		ReturnStepScores: true,
	})
	if err != nil {
		return "", nil, err
	}
	if len(gen.StepScores) < m.cfg.DecisionStepFromEnd {
		return "", nil, fmt.Errorf("barcor: arbitration decode returned %d score steps, need %d",
			len(gen.StepScores), m.cfg.DecisionStepFromEnd)
	}
	row := gen.StepScores[len(gen.StepScores)-m.cfg.DecisionStepFromEnd]

	scores := make([]float64, len(labels))
	for i, label := range labels {
		tok, err := m.optionTokenID(ctx, label)
		if err != nil {
			return "", nil, err
		}
		if tok < 0 || tok >= len(row) {
			return "", nil, fmt.Errorf("barcor: option token id %d outside score row of length %d", tok, len(row))
		}
		scores[i] = row[tok]
	}

	// Additive bias in the model's raw score space, not a probability
	// renormalization.
	floats.Add(scores, penalty)

	chosen := floats.MaxIdx(scores)

	logging.Ctx(ctx).Debug().
		Str("choice", labels[chosen]).
		Floats64("scores", scores).
		Msg("Arbitrated dialogue action")

	updated := append([]float64(nil), penalty...)
	updated[chosen] = penaltyFloor
	return labels[chosen], updated, nil
}

// optionTokenID returns the canonical single-token rendering of an option
// label: the first token of the label preceded by a space, encoded without
// special markers.
func (m *Model) optionTokenID(ctx context.Context, label string) (int, error) {
	ids, err := m.runtime.Encode(ctx, " "+label, inference.EncodeOptions{})
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("barcor: option label %q encoded to no tokens", label)
	}
	return ids[0], nil
}
