// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package fighter

import (
	"context"
	"fmt"
	"time"

	"github.com/parleyhq/parley/internal/backbone"
	"github.com/parleyhq/parley/internal/dialogue"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/metrics"
)

// Turn stage names used in metrics and error reporting.
const (
	stageGenerate  = "generate"
	stageArbitrate = "arbitrate"
	stageRecommend = "recommend"
)

// Outcome is the result of one dialogue turn.
type Outcome struct {
	// Response is the finalized reply text.
	Response string `json:"response"`

	// Penalty is the updated arbitration state. The caller stores it and
	// supplies it on the next turn.
	Penalty []float64 `json:"penalty"`

	// Action is the arbitrated option label.
	Action string `json:"action"`

	// Recommended reports whether the reserved recommend action fired.
	Recommended bool `json:"recommended"`

	// GenerateDuration and ArbitrateDuration time the two decode stages.
	GenerateDuration  time.Duration `json:"-"`
	ArbitrateDuration time.Duration `json:"-"`
}

// Reply runs one dialogue turn: the input joins the history, mentions are
// accumulated over the whole context, the penalty state is validated, a
// candidate reply is decoded and the arbitrated action decides whether the
// turn answers with the candidate or with a rendered recommendation list.
//
// On error the turn produced nothing: the caller keeps its previous
// penalty state and may retry.
func (f *Fighter) Reply(ctx context.Context, input string, history []string, penalty []float64) (Outcome, error) {
	start := time.Now()

	utterances := make([]string, 0, len(history)+1)
	utterances = append(utterances, history...)
	utterances = append(utterances, input)

	conv := backbone.Conversation{
		Context:  utterances,
		Entities: f.mentionedEntities(utterances),
	}
	penalty = f.normalizePenalty(ctx, penalty)

	genStart := time.Now()
	genInputs, candidate, err := f.backbone.Converse(ctx, conv)
	if err != nil {
		metrics.RecordTurnError(f.name, stageGenerate)
		return Outcome{}, fmt.Errorf("fighter %d: generating candidate: %w", f.id, err)
	}
	generateDur := time.Since(genStart)
	metrics.RecordTurnStage(stageGenerate, generateDur)

	arbStart := time.Now()
	choice, updated, err := f.backbone.Choose(ctx, genInputs, f.options.Labels(), penalty)
	if err != nil {
		metrics.RecordTurnError(f.name, stageArbitrate)
		return Outcome{}, fmt.Errorf("fighter %d: arbitrating action: %w", f.id, err)
	}
	arbitrateDur := time.Since(arbStart)
	metrics.RecordTurnStage(stageArbitrate, arbitrateDur)

	out := Outcome{
		Penalty:           updated,
		Action:            choice,
		GenerateDuration:  generateDur,
		ArbitrateDuration: arbitrateDur,
	}

	if choice == f.options.Last().Label {
		recStart := time.Now()
		ranked, _, err := f.backbone.Recommend(ctx, conv)
		if err != nil {
			metrics.RecordTurnError(f.name, stageRecommend)
			return Outcome{}, fmt.Errorf("fighter %d: scoring recommendations: %w", f.id, err)
		}
		metrics.RecordTurnStage(stageRecommend, time.Since(recStart))

		response, err := backbone.RenderRecommendations(f.catalog, ranked[0])
		if err != nil {
			metrics.RecordTurnError(f.name, stageRecommend)
			return Outcome{}, fmt.Errorf("fighter %d: %w", f.id, err)
		}
		out.Response = response
		out.Recommended = true
	} else {
		out.Response = dialogue.CleanResponse(candidate)
	}

	metrics.RecordTurn(f.name, choice, time.Since(start), out.Recommended)
	logging.Ctx(ctx).Info().
		Str("fighter", f.name).
		Str("action", choice).
		Bool("recommended", out.Recommended).
		Int("context_turns", len(utterances)).
		Dur("duration", time.Since(start)).
		Msg("Turn completed")

	return out, nil
}

// Recommendations scores the catalog against the history alone and returns
// the ranked item names, best first. This backs the direct recommendation
// surface; no arbitration or penalty state is involved.
func (f *Fighter) Recommendations(ctx context.Context, history []string) ([]string, error) {
	conv := backbone.Conversation{
		Context:  history,
		Entities: f.mentionedEntities(history),
	}

	ranked, _, err := f.backbone.Recommend(ctx, conv)
	if err != nil {
		return nil, fmt.Errorf("fighter %d: scoring recommendations: %w", f.id, err)
	}

	names, err := f.catalog.Names(ranked[0])
	if err != nil {
		return nil, fmt.Errorf("fighter %d: %w", f.id, err)
	}
	return names, nil
}

// mentionedEntities accumulates per-utterance extraction over the whole
// context. Duplicates across utterances are kept and order of first
// appearance is preserved; the scorer decides what to do with repeats.
func (f *Fighter) mentionedEntities(utterances []string) []string {
	var entities []string
	for _, utterance := range utterances {
		entities = append(entities, f.extractor.Extract(utterance)...)
	}
	return entities
}

// normalizePenalty returns the caller's vector when its shape matches the
// action menu and a fresh zero vector otherwise. A mismatch is a state
// reset, not an error: the menu changed shape between turns and the old
// bias is meaningless.
func (f *Fighter) normalizePenalty(ctx context.Context, penalty []float64) []float64 {
	if len(penalty) == f.options.Len() {
		return penalty
	}
	if penalty != nil {
		logging.Ctx(ctx).Debug().
			Int("got", len(penalty)).
			Int("want", f.options.Len()).
			Msg("Resetting mismatched penalty state")
	}
	return make([]float64, f.options.Len())
}
