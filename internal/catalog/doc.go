// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package catalog loads and serves the immutable recommendation universe:
// the entity-name-to-id table, its inverse, the recommendable item subset,
// and the per-dataset action option sets used by turn arbitration.
//
// A Catalog is built once at startup and passed by reference into every
// component that needs it. Nothing in this package mutates after
// construction, so a single Catalog is safe to share across conversations.
package catalog
