// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package middleware provides HTTP middleware shared by the API layer:
// request id propagation into the logging context and Prometheus request
// instrumentation. Middleware here is framework-agnostic; the api package
// bridges it into the chi router.
package middleware
