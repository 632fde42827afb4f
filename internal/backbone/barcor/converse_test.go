// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package barcor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/parleyhq/parley/internal/backbone"
	"github.com/parleyhq/parley/internal/inference"
)

func TestConverse_DecodesReply(t *testing.T) {
	var gotParams inference.GenerateParams
	var decodedIDs []int
	var gotSkip bool
	rt := &fakeRuntime{
		encodeFn: func(text string, opts inference.EncodeOptions) ([]int, error) {
			return []int{1, 2, 3}, nil
		},
		generateFn: func(batch inference.Batch, params inference.GenerateParams) (inference.Generation, error) {
			gotParams = params
			return inference.Generation{Sequences: [][]int{{2, 41, 42}}}, nil
		},
		decodeFn: func(ids []int, skipSpecialTokens bool) (string, error) {
			decodedIDs = ids
			gotSkip = skipSpecialTokens
			return "System: Sure, how about a comedy?", nil
		},
	}
	m := newTestModel(t, rt)

	batch, text, err := m.Converse(context.Background(), backbone.Conversation{
		Context: []string{"recommend me something"},
	})
	if err != nil {
		t.Fatalf("Converse failed: %v", err)
	}

	// The raw decode comes back untouched; artifact cleanup is the
	// renderer's job, not the decoder's.
	if want := "System: Sure, how about a comedy?"; text != want {
		t.Errorf("Reply = %q, want %q", text, want)
	}
	if want := [][]int{{1, 2, 3}}; !reflect.DeepEqual(batch.InputIDs, want) {
		t.Errorf("Generation inputs = %v, want %v", batch.InputIDs, want)
	}
	if !reflect.DeepEqual(decodedIDs, []int{2, 41, 42}) {
		t.Errorf("Decoded ids = %v, want the first generated sequence", decodedIDs)
	}
	if !gotSkip {
		t.Error("Decode must skip special tokens")
	}

	want := inference.GenerateParams{
		MaxLength:                m.Config().RespMaxLength,
		NumBeams:                 1,
		NoRepeatNGramSize:        3,
		EncoderNoRepeatNGramSize: 3,
	}
	if gotParams != want {
		t.Errorf("Generate params = %+v, want %+v", gotParams, want)
	}
}

func TestConverse_NoSequences(t *testing.T) {
	rt := &fakeRuntime{
		generateFn: func(batch inference.Batch, params inference.GenerateParams) (inference.Generation, error) {
			return inference.Generation{}, nil
		},
	}
	m := newTestModel(t, rt)

	_, _, err := m.Converse(context.Background(), backbone.Conversation{Context: []string{"hi"}})
	if err == nil {
		t.Error("Expected error when the decode returns no sequences, got nil")
	}
}

func TestConverse_StageErrorsPropagate(t *testing.T) {
	wantErr := errors.New("runtime unavailable")

	tests := []struct {
		name string
		rt   *fakeRuntime
	}{
		{
			name: "encode fails",
			rt: &fakeRuntime{
				encodeFn: func(string, inference.EncodeOptions) ([]int, error) { return nil, wantErr },
			},
		},
		{
			name: "pad fails",
			rt: &fakeRuntime{
				padFn: func([][]int, inference.PadOptions) (inference.Batch, error) {
					return inference.Batch{}, wantErr
				},
			},
		},
		{
			name: "generate fails",
			rt: &fakeRuntime{
				generateFn: func(inference.Batch, inference.GenerateParams) (inference.Generation, error) {
					return inference.Generation{}, wantErr
				},
			},
		},
		{
			name: "decode fails",
			rt: &fakeRuntime{
				decodeFn: func([]int, bool) (string, error) { return "", wantErr },
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, tt.rt)

			_, _, err := m.Converse(context.Background(), backbone.Conversation{Context: []string{"hi"}})
			if !errors.Is(err, wantErr) {
				t.Errorf("Converse error = %v, want %v", err, wantErr)
			}
		})
	}
}
