// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package dialogue

import (
	"strings"
	"unicode"
	"unicode/utf8"

	radix "github.com/armon/go-radix"
)

// Extractor finds catalog entity mentions in a single utterance. The
// matching policy is pluggable; callers accumulate results across the
// growing dialogue context themselves, keeping duplicates across
// utterances and the order of first appearance.
type Extractor interface {
	// Extract returns the canonical entity keys mentioned in the
	// utterance, in order of appearance.
	Extract(utterance string) []string
}

// SurfaceMatcher is a case-insensitive surface-form matcher backed by a
// radix tree over the catalog vocabulary. At each word start it takes the
// longest known surface form that ends on a word boundary. A surface form
// is reported at most once per utterance.
type SurfaceMatcher struct {
	tree *radix.Tree
}

var _ Extractor = (*SurfaceMatcher)(nil)

// NewSurfaceMatcher builds a matcher for the given entity surface forms.
// Matching is case-insensitive; the canonical spelling is returned on a
// hit. Empty names are ignored.
func NewSurfaceMatcher(names []string) *SurfaceMatcher {
	tree := radix.New()
	for _, name := range names {
		key := strings.ToLower(name)
		if key == "" {
			continue
		}
		tree.Insert(key, name)
	}
	return &SurfaceMatcher{tree: tree}
}

// Extract implements Extractor.
func (m *SurfaceMatcher) Extract(utterance string) []string {
	lower := strings.ToLower(utterance)

	var found []string
	seen := make(map[string]struct{})

	for i := 0; i < len(lower); i++ {
		if !wordStart(lower, i) {
			continue
		}

		// Walk every vocabulary key that prefixes the remaining text and
		// keep the longest one that also ends on a word boundary. A plain
		// longest-prefix lookup is not enough: the longest key may run
		// into the middle of a word while a shorter key matches cleanly.
		matchLen := 0
		matchName := ""
		m.tree.WalkPath(lower[i:], func(key string, value interface{}) bool {
			if wordEnd(lower, i+len(key)) {
				matchLen = len(key)
				matchName = value.(string)
			}
			return false
		})

		if matchLen == 0 {
			continue
		}
		if _, dup := seen[matchName]; !dup {
			seen[matchName] = struct{}{}
			found = append(found, matchName)
		}
		i += matchLen - 1
	}

	return found
}

// wordStart reports whether position i begins a word: it is either the
// start of the string or preceded by a non-alphanumeric rune.
func wordStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

// wordEnd reports whether position end closes a word: it is either the end
// of the string or followed by a non-alphanumeric rune.
func wordEnd(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
