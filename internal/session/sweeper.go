// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically reclaims idle sessions. It runs as a supervised
// service; Serve blocks until the context is cancelled.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   zerolog.Logger
}

// NewSweeper wires a sweeper to the session manager.
func NewSweeper(manager *Manager, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		manager:  manager,
		interval: interval,
		logger:   logger.With().Str("component", "session-sweeper").Logger(),
	}
}

// Serve implements suture.Service.
func (s *Sweeper) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("ttl", s.manager.cfg.TTL).
		Msg("Session sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Session sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if evicted := s.manager.Sweep(time.Now()); evicted > 0 {
				s.logger.Info().
					Int("evicted", evicted).
					Int("active", s.manager.Len()).
					Msg("Reclaimed idle sessions")
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *Sweeper) String() string {
	return "session-sweeper"
}
