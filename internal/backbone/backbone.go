// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package backbone defines the capability surface of a conversational
// recommender model backend.
//
// A backbone owns the model-specific mechanics of one CRS family: how the
// dialogue context is encoded, how catalog items are scored, how the reply
// continuation is decoded and how the per-turn action is arbitrated. The
// orchestration layer above holds a Backbone value and never sees token ids.
//
// The set of backends is a closed enum. Adding one means adding a Kind,
// an implementation package, and a case in the fighter's constructor.
package backbone

import (
	"context"
	"errors"
	"fmt"

	"github.com/parleyhq/parley/internal/catalog"
	"github.com/parleyhq/parley/internal/inference"
)

// Kind identifies a model backend family.
type Kind int

const (
	// KindBARCOR is the BART-based recommender with a classification head
	// over the entity vocabulary and a seq2seq conversation head.
	KindBARCOR Kind = iota
	// KindKBRD is the knowledge-graph transformer family.
	KindKBRD
	// KindUniCRS is the prompt-tuned unified CRS family.
	KindUniCRS
	// KindChatGPT is the hosted-LLM family.
	KindChatGPT
)

// String returns the config name of the backend kind.
func (k Kind) String() string {
	switch k {
	case KindBARCOR:
		return "barcor"
	case KindKBRD:
		return "kbrd"
	case KindUniCRS:
		return "unicrs"
	case KindChatGPT:
		return "chatgpt"
	default:
		return "unknown"
	}
}

var (
	// ErrUnknownKind is returned when a backend name is not one of the
	// recognized families.
	ErrUnknownKind = errors.New("backbone: unknown backend kind")

	// ErrUnsupportedKind is returned when a recognized backend family has
	// no serving implementation in this process.
	ErrUnsupportedKind = errors.New("backbone: unsupported backend kind")
)

// ParseKind maps a config name to a backend kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "barcor":
		return KindBARCOR, nil
	case "kbrd":
		return KindKBRD, nil
	case "unicrs":
		return KindUniCRS, nil
	case "chatgpt":
		return KindChatGPT, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Conversation is the model-facing view of one dialogue at one turn.
// Utterances are ordered oldest first and empty texts are retained so that
// positional role parity survives; see dialogue.TagUtterances.
type Conversation struct {
	// Context holds every utterance so far, the newest last.
	Context []string `json:"context"`

	// Entities holds the catalog surface forms mentioned anywhere in the
	// context, in order of first appearance, duplicates kept.
	Entities []string `json:"entity"`

	// Recs holds ground-truth target items. Only scoring evaluation sets
	// it; live serving always leaves it empty.
	Recs []string `json:"rec,omitempty"`

	// Resp is the gold response for the turn, empty in live serving.
	Resp string `json:"resp,omitempty"`
}

// Backbone is the uniform capability interface over model backends.
// Implementations are safe for concurrent use across conversations; the
// per-conversation penalty vector is the caller's to guard.
type Backbone interface {
	// Recommend scores the catalog items against the conversation and
	// returns the ranked item ids, best first, one row per scored
	// example. In live serving there is exactly one row and no labels;
	// with Recs set it returns one row per known target plus the label
	// ids for evaluation.
	Recommend(ctx context.Context, conv Conversation) (ranked [][]int, labels []int, err error)

	// Converse decodes a reply continuation for the conversation and
	// returns the padded generation inputs alongside the decoded text.
	// The inputs feed Choose, which re-decodes from the same batch.
	Converse(ctx context.Context, conv Conversation) (inference.Batch, string, error)

	// Choose arbitrates the next dialogue action. It scores each option
	// label at a fixed decoding step, adds the penalty vector elementwise
	// and picks the maximum. The returned vector is a copy with the
	// chosen entry floored so later turns disfavor repeating it.
	// Penalty length must equal len(labels); the caller validates.
	Choose(ctx context.Context, genInputs inference.Batch, labels []string, penalty []float64) (choice string, updated []float64, err error)

	// Respond runs the full turn: generate a candidate reply, arbitrate
	// the action, and either render the top recommendations or clean and
	// return the candidate.
	Respond(ctx context.Context, conv Conversation, options catalog.OptionSet, penalty []float64) (response string, updated []float64, err error)

	// Dataset names the catalog domain the backend was trained on,
	// e.g. "redial". It selects the default option set.
	Dataset() string
}
