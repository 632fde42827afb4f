// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package inference

import "context"

// Truncation selects which side of a sequence is dropped when it exceeds
// the maximum length.
type Truncation int

const (
	// TruncationNone keeps the full sequence regardless of length.
	TruncationNone Truncation = iota

	// TruncationLeft drops tokens from the start (oldest context first).
	TruncationLeft

	// TruncationRight drops tokens from the end.
	TruncationRight
)

// String returns the wire name of the truncation side.
func (t Truncation) String() string {
	switch t {
	case TruncationLeft:
		return "left"
	case TruncationRight:
		return "right"
	default:
		return "none"
	}
}

// EncodeOptions control tokenization of a single text.
type EncodeOptions struct {
	// MaxLength bounds the encoded sequence; 0 means unbounded.
	MaxLength int

	// Truncation selects the side dropped when MaxLength is exceeded.
	Truncation Truncation

	// AddSpecialTokens includes the tokenizer's special markers. Option
	// labels are encoded without them to obtain the bare token id.
	AddSpecialTokens bool
}

// PadOptions control batch padding.
type PadOptions struct {
	// MaxLength is the target padded length.
	MaxLength int

	// MultipleOf rounds the padded length up to a multiple, satisfying
	// the runtime's tensor alignment. 0 disables rounding.
	MultipleOf int
}

// Batch is an aligned batch of token id sequences with its attention mask.
type Batch struct {
	InputIDs      [][]int `json:"input_ids"`
	AttentionMask [][]int `json:"attention_mask"`
}

// Size returns the number of sequences in the batch.
func (b Batch) Size() int {
	return len(b.InputIDs)
}

// GenerateParams bound and shape one decoding run.
type GenerateParams struct {
	// MinLength and MaxLength bound the total output sequence.
	MinLength int `json:"min_length"`
	MaxLength int `json:"max_length,omitempty"`

	// MinNewTokens and MaxNewTokens bound the generated continuation
	// only, independent of the prompt length. 0 leaves them unset.
	MinNewTokens int `json:"min_new_tokens,omitempty"`
	MaxNewTokens int `json:"max_new_tokens,omitempty"`

	// NumBeams is the beam count; 1 decodes greedily.
	NumBeams int `json:"num_beams"`

	// NoRepeatNGramSize suppresses repeating n-grams in the output;
	// EncoderNoRepeatNGramSize suppresses copying n-grams from the input.
	NoRepeatNGramSize        int `json:"no_repeat_ngram_size,omitempty"`
	EncoderNoRepeatNGramSize int `json:"encoder_no_repeat_ngram_size,omitempty"`

	// ReturnStepScores requests the per-step score distributions along
	// with the sequences.
	ReturnStepScores bool `json:"return_step_scores,omitempty"`
}

// Generation is the result of one decoding run.
type Generation struct {
	// Sequences holds the generated token ids, one row per batch element.
	Sequences [][]int `json:"sequences"`

	// StepScores holds one vocabulary-sized score row per generated step
	// for the first batch element. Populated only when ReturnStepScores
	// was set; action arbitration reads a single step out of it.
	StepScores [][]float64 `json:"step_scores,omitempty"`
}

// Runtime is the external model and tokenizer runtime. Implementations
// must be safe for concurrent use; the orchestration layer shares one
// runtime across conversations. Calls are synchronous with no partial
// results and no retries; a failure is fatal for the turn that made it.
type Runtime interface {
	// Encode tokenizes a single text.
	Encode(ctx context.Context, text string, opts EncodeOptions) ([]int, error)

	// Decode renders token ids back to text.
	Decode(ctx context.Context, ids []int, skipSpecialTokens bool) (string, error)

	// Pad aligns raw sequences into a batch.
	Pad(ctx context.Context, sequences [][]int, opts PadOptions) (Batch, error)

	// Score runs the recommendation head over a batch and returns the
	// full-vocabulary logits, one row per batch element.
	Score(ctx context.Context, batch Batch) ([][]float64, error)

	// Generate runs constrained decoding over a batch.
	Generate(ctx context.Context, batch Batch, params GenerateParams) (Generation, error)

	// SepToken returns the tokenizer's separator token text, used to join
	// utterances into one context string.
	SepToken() string

	// Name identifies the runtime for logging.
	Name() string
}
