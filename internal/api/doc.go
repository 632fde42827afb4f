// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package api exposes the conversation orchestration layer over HTTP.
//
// Routes are served by a chi router under /api/v1: conversations are
// created against a configured fighter, messages drive dialogue turns,
// and transcripts, recommendations and aggregate turn statistics are
// read back. Liveness, readiness and Prometheus metrics sit outside the
// versioned prefix.
//
// Every response uses the APIResponse envelope. Request bodies are
// validated with go-playground/validator before any state changes.
package api
