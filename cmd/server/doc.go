// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Command server runs the parley conversation server.
//
// Startup order: configuration, logging, catalog tables, model runtime
// client (which fails fast if the runtime sidecar is unreachable),
// fighters, event bus, analytics store, then the supervisor tree with
// the session sweeper, analytics consumer and HTTP server under it.
// SIGINT or SIGTERM triggers a graceful drain bounded by the configured
// shutdown timeout.
package main
