// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package metrics exposes the Prometheus instrumentation for Parley:
// per-turn outcomes and stage latencies, model-runtime call health, the
// runtime circuit breaker, session registry occupancy, the turn event
// bus, the analytics sink, and the HTTP API surface.
//
// Collectors are package-level and registered via promauto on the default
// registry; cmd/server mounts them at /metrics through promhttp.
package metrics
