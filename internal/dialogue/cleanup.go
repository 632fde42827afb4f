// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package dialogue

import "strings"

// artifactCutset is the set of characters the generator tends to emit as a
// leading role-marker fragment ("System:", "System;", and clipped variants
// of them). Generated replies are trimmed of any leading run of these
// characters before being shown to the user. This is a cutset, not a
// literal prefix: every leading character drawn from the set is removed.
const artifactCutset = "System;:"

// CleanResponse strips the leading role-marker artifact from a generated
// reply and trims surrounding whitespace.
func CleanResponse(text string) string {
	return strings.TrimSpace(strings.TrimLeft(text, artifactCutset))
}
