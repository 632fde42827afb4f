// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package backbone

import (
	"errors"
	"testing"

	"github.com/parleyhq/parley/internal/catalog"
)

func TestRenderRecommendations(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New(map[string]int{
		"MovieA": 5,
		"MovieB": 9,
		"MovieC": 2,
		"MovieD": 7,
	}, []int{5, 9, 2, 7})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	tests := []struct {
		name   string
		ranked []int
		want   string
	}{
		{
			name:   "full list",
			ranked: []int{5, 9, 2},
			want:   "I would recommend the following items:  \n1: MovieA  \n2: MovieB  \n3: MovieC  \n",
		},
		{
			name:   "long ranking truncates to three",
			ranked: []int{7, 2, 9, 5},
			want:   "I would recommend the following items:  \n1: MovieD  \n2: MovieC  \n3: MovieB  \n",
		},
		{
			name:   "single item",
			ranked: []int{9},
			want:   "I would recommend the following items:  \n1: MovieB  \n",
		},
		{
			name:   "empty ranking renders the bare header",
			ranked: nil,
			want:   "I would recommend the following items:  \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := RenderRecommendations(cat, tt.ranked)
			if err != nil {
				t.Fatalf("RenderRecommendations() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderRecommendations() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderRecommendations_MissingName(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New(map[string]int{"MovieA": 0}, []int{0, 5})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	if _, err := RenderRecommendations(cat, []int{5, 0}); !errors.Is(err, catalog.ErrMissingEntityName) {
		t.Errorf("RenderRecommendations() error = %v, want catalog.ErrMissingEntityName", err)
	}

	// A miss beyond the shown prefix never surfaces.
	if _, err := RenderRecommendations(cat, []int{0, 0, 0, 5}); err != nil {
		t.Errorf("RenderRecommendations() error = %v, want nil for an unshown id", err)
	}
}
