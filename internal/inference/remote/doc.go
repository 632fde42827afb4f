// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package remote implements the model runtime port over HTTP.
//
// A model-server sidecar owns the tokenizer and the fine-tuned weights and
// exposes them as small JSON endpoints (/v1/encode, /v1/decode, /v1/pad,
// /v1/score, /v1/generate, /v1/meta). Client speaks that protocol directly;
// BreakerRuntime wraps any runtime with a circuit breaker and is what the
// rest of the process should hold.
//
// Neither layer retries. A failed call fails the turn that made it, and the
// breaker decides whether later turns are allowed to try at all.
package remote
