// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package barcor

import (
	"context"
	"errors"

	"github.com/parleyhq/parley/internal/backbone"
	"github.com/parleyhq/parley/internal/inference"
)

// Converse decodes a reply continuation and returns the padded generation
// inputs alongside the decoded text. The training pipeline pairs this
// context with a role-prefixed target row; at serving time the target is
// empty and decoding conditions on the context batch alone, so only the
// context row is built. Decoding is greedy and bounded, with 3-gram
// repetition suppressed both within the output and against the input.
func (m *Model) Converse(ctx context.Context, conv backbone.Conversation) (inference.Batch, string, error) {
	contextIDs, err := m.encodeContext(ctx, conv)
	if err != nil {
		return inference.Batch{}, "", err
	}

	batch, err := m.padContext(ctx, [][]int{contextIDs})
	if err != nil {
		return inference.Batch{}, "", err
	}

	gen, err := m.runtime.Generate(ctx, batch, inference.GenerateParams{
		MaxLength:                m.cfg.RespMaxLength,
		NumBeams:                 1,
		NoRepeatNGramSize:        repetitionNGram,
		EncoderNoRepeatNGramSize: repetitionNGram,
	})
	if err != nil {
		return inference.Batch{}, "", err
	}
	if len(gen.Sequences) == 0 {
		return inference.Batch{}, "", errors.New("barcor: reply decode returned no sequences")
	}

	text, err := m.runtime.Decode(ctx, gen.Sequences[0], true)
	if err != nil {
		return inference.Batch{}, "", err
	}

	return batch, text, nil
}
