// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package barcor serves the BARCOR backend: a BART encoder with a
// classification head over the entity vocabulary for recommendation and a
// seq2seq head for the reply text. Both heads live behind inference.Runtime;
// this package owns the context assembly, batching, ranking and action
// arbitration around them.
package barcor

import (
	"errors"
	"fmt"

	"github.com/parleyhq/parley/internal/backbone"
	"github.com/parleyhq/parley/internal/catalog"
	"github.com/parleyhq/parley/internal/inference"
)

var (
	// ErrNilRuntime is returned by New when no model runtime is supplied.
	ErrNilRuntime = errors.New("barcor: model runtime required")

	// ErrNilCatalog is returned by New when no entity catalog is supplied.
	ErrNilCatalog = errors.New("barcor: entity catalog required")

	// ErrNoScoreableExamples is returned by Recommend when evaluation
	// targets were supplied but none of them exist in the catalog.
	ErrNoScoreableExamples = errors.New("barcor: no scoreable examples")

	// ErrNoOptions is returned by Choose when the label list is empty.
	ErrNoOptions = errors.New("barcor: option labels required")
)

// penaltyFloor is the additive bias written to a chosen option's penalty
// entry. Repeating a choice keeps the entry at the floor rather than
// stacking, so the bias never weakens and never grows without bound.
const penaltyFloor = -1e5

// repetitionNGram is the n-gram span suppressed during reply decoding,
// applied both within the generated text and against copying the input.
const repetitionNGram = 3

// Config holds the serving parameters of a BARCOR deployment.
type Config struct {
	// Dataset names the catalog domain the checkpoint was trained on,
	// e.g. "redial" or "opendialkg". It selects the default option set.
	Dataset string

	// ContextMaxLength is the token budget for the encoded dialogue
	// context. Older content is dropped first when it overflows.
	ContextMaxLength int

	// RespMaxLength bounds the generated reply, in tokens.
	RespMaxLength int

	// PadMultipleOf rounds padded batches up to a multiple, matching the
	// runtime's tensor alignment.
	PadMultipleOf int

	// RecommendTopK is the length of the ranked item list kept per
	// scored example.
	RecommendTopK int

	// DecisionNewTokens is the length of the short arbitration decode.
	DecisionNewTokens int

	// DecisionStepFromEnd selects which decoding step's score
	// distribution carries the option word, counted from the end of the
	// arbitration decode. The default of 2 (second-to-last step) is
	// tuned against the built-in prompt wording; a new prompt template
	// requires re-deriving it.
	DecisionStepFromEnd int
}

// DefaultConfig returns the serving parameters of the published redial
// checkpoint.
func DefaultConfig() Config {
	return Config{
		Dataset:             "redial",
		ContextMaxLength:    200,
		RespMaxLength:       183,
		PadMultipleOf:       8,
		RecommendTopK:       50,
		DecisionNewTokens:   5,
		DecisionStepFromEnd: 2,
	}
}

// Model is a BARCOR backend bound to one runtime and one catalog. It holds
// no per-conversation state and is safe for concurrent use.
type Model struct {
	cfg     Config
	runtime inference.Runtime
	catalog *catalog.Catalog
}

var _ backbone.Backbone = (*Model)(nil)

// New creates a BARCOR backend. Zero or negative config fields fall back
// to the defaults.
func New(cfg Config, runtime inference.Runtime, cat *catalog.Catalog) (*Model, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	if cat == nil {
		return nil, ErrNilCatalog
	}
	if cat.ItemCount() == 0 {
		return nil, fmt.Errorf("barcor: %w", catalog.ErrNoItems)
	}

	def := DefaultConfig()
	if cfg.Dataset == "" {
		cfg.Dataset = def.Dataset
	}
	if cfg.ContextMaxLength <= 0 {
		cfg.ContextMaxLength = def.ContextMaxLength
	}
	if cfg.RespMaxLength <= 0 {
		cfg.RespMaxLength = def.RespMaxLength
	}
	if cfg.PadMultipleOf <= 0 {
		cfg.PadMultipleOf = def.PadMultipleOf
	}
	if cfg.RecommendTopK <= 0 {
		cfg.RecommendTopK = def.RecommendTopK
	}
	if cfg.DecisionNewTokens <= 0 {
		cfg.DecisionNewTokens = def.DecisionNewTokens
	}
	if cfg.DecisionStepFromEnd <= 0 {
		cfg.DecisionStepFromEnd = def.DecisionStepFromEnd
	}
	if cfg.DecisionStepFromEnd > cfg.DecisionNewTokens {
		return nil, fmt.Errorf("barcor: decision step %d exceeds the %d-token arbitration decode",
			cfg.DecisionStepFromEnd, cfg.DecisionNewTokens)
	}

	return &Model{
		cfg:     cfg,
		runtime: runtime,
		catalog: cat,
	}, nil
}

// Dataset names the catalog domain the checkpoint was trained on.
func (m *Model) Dataset() string {
	return m.cfg.Dataset
}

// Config returns the effective serving parameters.
func (m *Model) Config() Config {
	return m.cfg
}
