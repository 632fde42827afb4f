// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidOptionSet is returned when an option set fails validation.
var ErrInvalidOptionSet = errors.New("catalog: invalid option set")

// Option is a single enumerated dialogue action: a short label the model
// can emit plus the natural-language description of the action.
type Option struct {
	Label       string `koanf:"label" json:"label"`
	Description string `koanf:"description" json:"description"`
}

// OptionSet is the ordered action menu offered to turn arbitration. By
// convention the last option always means "produce a recommendation";
// every other option continues the dialogue along its strategy.
type OptionSet struct {
	// Prompt is the instruction template shown to prompting-style
	// backbones. The arbitration step offset is tuned against this
	// wording; rewording the prompt requires re-deriving the offset.
	Prompt string `koanf:"prompt" json:"prompt"`

	// Options is the ordered action menu. Order is significant: the
	// penalty vector is indexed by position and the final entry is the
	// reserved recommend action.
	Options []Option `koanf:"options" json:"options"`
}

// Len returns the number of options.
func (s OptionSet) Len() int {
	return len(s.Options)
}

// Labels returns the option labels in menu order.
func (s OptionSet) Labels() []string {
	labels := make([]string, len(s.Options))
	for i, opt := range s.Options {
		labels[i] = opt.Label
	}
	return labels
}

// Last returns the reserved final option, the recommend action.
func (s OptionSet) Last() Option {
	return s.Options[len(s.Options)-1]
}

// IndexOf returns the position of a label in the menu.
func (s OptionSet) IndexOf(label string) (int, bool) {
	for i, opt := range s.Options {
		if opt.Label == label {
			return i, true
		}
	}
	return 0, false
}

// Validate checks the option set invariants: at least two options (one
// dialogue strategy plus the reserved recommend entry) with unique,
// non-empty labels.
func (s OptionSet) Validate() error {
	if len(s.Options) < 2 {
		return fmt.Errorf("%w: need at least two options, got %d", ErrInvalidOptionSet, len(s.Options))
	}

	seen := make(map[string]struct{}, len(s.Options))
	for i, opt := range s.Options {
		if opt.Label == "" {
			return fmt.Errorf("%w: option %d has an empty label", ErrInvalidOptionSet, i)
		}
		if _, dup := seen[opt.Label]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidOptionSet, opt.Label)
		}
		seen[opt.Label] = struct{}{}
	}
	return nil
}

// DefaultOptionSet returns the built-in action menu for a dataset. The
// second return is false when the dataset has no built-in menu.
func DefaultOptionSet(dataset string) (OptionSet, bool) {
	switch dataset {
	case "redial":
		return OptionSet{
			Prompt: "To respond to the user's last message, which of the " +
				"following actions is the most appropriate next step?",
			Options: []Option{
				{Label: "a", Description: "Ask about the user's genre preferences."},
				{Label: "b", Description: "Ask which movies the user has enjoyed recently."},
				{Label: "c", Description: "Chat about the movies mentioned so far."},
				{Label: "d", Description: "Recommend movies to the user."},
			},
		}, true
	case "opendialkg":
		return OptionSet{
			Prompt: "To respond to the user's last message, which of the " +
				"following actions is the most appropriate next step?",
			Options: []Option{
				{Label: "a", Description: "Ask what the user is in the mood for."},
				{Label: "b", Description: "Ask about books, movies, or music the user has liked."},
				{Label: "c", Description: "Chat about the items mentioned so far."},
				{Label: "d", Description: "Recommend items to the user."},
			},
		}, true
	default:
		return OptionSet{}, false
	}
}
