// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package inference defines the port to the external pretrained-model
// runtime. The orchestration layer depends only on the Runtime interface
// declared here: tokenize, pad, score, and generate. Weight loading,
// tokenizer internals, and tensor execution all live behind it.
//
// The remote subpackage provides the production implementation, an HTTP
// client for a model-server sidecar. Tests substitute in-memory fakes.
package inference
