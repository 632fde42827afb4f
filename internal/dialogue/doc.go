// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package dialogue holds the conversation-side primitives shared by the
// backbones and the turn orchestrator: turn and role types, role-tagged
// transcript assembly, mention extraction against the catalog vocabulary,
// and cleanup of generated replies.
//
// Everything in this package is pure string and slice work. Tokenization,
// scoring, and generation live behind the inference runtime; this package
// never touches token IDs.
package dialogue
