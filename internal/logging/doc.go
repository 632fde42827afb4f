// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package logging provides centralized zerolog-based logging for Parley.
//
// All packages log through the single global logger configured here, so
// that output format, level, and field names stay consistent between the
// serving path and the background services.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("fighter", name).Msg("fighter ready")
//	logging.Ctx(ctx).Error().Err(err).Msg("turn failed")
//
// Always terminate log chains with .Msg() or .Send(); a chain without a
// terminator is never emitted.
//
// The slog adapter in this package bridges libraries that require a
// *slog.Logger (the suture supervisor via sutureslog) onto zerolog.
package logging
