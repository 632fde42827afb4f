// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package backbone

import (
	"fmt"
	"strings"

	"github.com/parleyhq/parley/internal/catalog"
)

// recommendHeader opens the rendered recommendation list. The doubled
// trailing spaces are markdown hard line breaks; chat frontends render the
// list one item per line.
const recommendHeader = "I would recommend the following items:  \n"

// recommendLimit is how many ranked items the rendered list shows.
const recommendLimit = 3

// RenderRecommendations builds the numbered markdown list shown when a
// turn resolves to the reserved recommend action. Only the shown prefix of
// the ranking is resolved; an unresolvable id fails the turn.
func RenderRecommendations(cat *catalog.Catalog, ranked []int) (string, error) {
	n := recommendLimit
	if n > len(ranked) {
		n = len(ranked)
	}
	names, err := cat.Names(ranked[:n])
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(recommendHeader)
	for i, name := range names {
		fmt.Fprintf(&b, "%d: %s  \n", i+1, name)
	}
	return b.String(), nil
}
