// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package barcor

import (
	"context"
	"strings"

	"github.com/parleyhq/parley/internal/backbone"
	"github.com/parleyhq/parley/internal/dialogue"
	"github.com/parleyhq/parley/internal/inference"
)

// encodeContext turns the full utterance history into one token sequence.
// Role prefixes come from positional parity over the original sequence,
// utterances join on the tokenizer's separator token, and the encoding
// truncates from the left so the newest turns always survive the budget.
func (m *Model) encodeContext(ctx context.Context, conv backbone.Conversation) ([]int, error) {
	tagged := dialogue.TagUtterances(conv.Context)
	joined := strings.Join(tagged, m.runtime.SepToken())

	return m.runtime.Encode(ctx, joined, inference.EncodeOptions{
		MaxLength:        m.cfg.ContextMaxLength,
		Truncation:       inference.TruncationLeft,
		AddSpecialTokens: true,
	})
}

// padContext aligns context rows into a scoring or generation batch.
func (m *Model) padContext(ctx context.Context, rows [][]int) (inference.Batch, error) {
	return m.runtime.Pad(ctx, rows, inference.PadOptions{
		MaxLength:  m.cfg.ContextMaxLength,
		MultipleOf: m.cfg.PadMultipleOf,
	})
}
