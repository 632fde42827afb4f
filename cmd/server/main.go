// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parleyhq/parley/internal/analytics"
	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/backbone/barcor"
	"github.com/parleyhq/parley/internal/catalog"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/events"
	"github.com/parleyhq/parley/internal/fighter"
	"github.com/parleyhq/parley/internal/inference"
	"github.com/parleyhq/parley/internal/inference/remote"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/supervisor"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting parley with supervisor tree")
	logging.Info().
		Str("runtime_url", cfg.Runtime.URL).
		Int("fighters", len(cfg.Fighters)).
		Bool("analytics_enabled", cfg.Analytics.Enabled).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := catalog.Load(cfg.Catalog.EntityPath, cfg.Catalog.ItemPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog")
	}
	logging.Info().
		Int("entities", cat.Size()).
		Int("items", cat.ItemCount()).
		Msg("Catalog loaded")

	// The runtime client fetches tokenizer metadata at construction, so
	// an unreachable sidecar is a startup failure, not a first-turn one.
	runtime, err := remote.New(ctx, remote.Config{
		BaseURL:           cfg.Runtime.URL,
		Timeout:           cfg.Runtime.Timeout,
		RequestsPerSecond: cfg.Runtime.RequestsPerSecond,
		Burst:             cfg.Runtime.Burst,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to model runtime")
	}
	logging.Info().Str("model", runtime.Name()).Msg("Connected to model runtime")

	guarded := remote.NewBreakerRuntime(runtime)

	fighters, err := buildFighters(cfg.Fighters, guarded, cat)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build fighters")
	}

	bus := events.NewBus(events.Config{BufferSize: cfg.Events.BufferSize}, logging.Logger())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	manager := session.NewManager(cfg.Session)
	sweeper := session.NewSweeper(manager, cfg.Session.SweepInterval, logging.Logger())

	var store *analytics.Store
	var stats api.StatsProvider
	if cfg.Analytics.Enabled {
		store, err = analytics.New(cfg.Analytics)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open analytics store")
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing analytics store")
			}
		}()
		stats = store
		logging.Info().Str("path", cfg.Analytics.Path).Msg("Analytics store opened")
	} else {
		logging.Info().Msg("Analytics disabled, turn telemetry will not be persisted")
	}

	handler := api.NewHandler(manager, fighters, stats, bus)
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// The slog bridge feeds supervisor lifecycle events into zerolog.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddWorkerService(sweeper)
	if store != nil {
		tree.AddWorkerService(analytics.NewConsumer(bus, store, logging.Logger()))
		logging.Info().Msg("Analytics consumer added to supervisor tree")
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Parley stopped gracefully")
}

// buildFighters constructs each configured fighter against the shared
// runtime and catalog, keyed by slot. Configuration has already checked
// slot uniqueness and backbone names; errors here are model-parameter
// failures surfaced by the backbone constructor.
func buildFighters(cfgs []config.FighterConfig, runtime inference.Runtime, cat *catalog.Catalog) (map[int]session.Replier, error) {
	fighters := make(map[int]session.Replier, len(cfgs))
	for _, fc := range cfgs {
		kind, err := fc.Kind()
		if err != nil {
			return nil, fmt.Errorf("fighter %d: %w", fc.ID, err)
		}

		model := barcor.DefaultConfig()
		if fc.Dataset != "" {
			model.Dataset = fc.Dataset
		}
		if fc.ContextMaxLength > 0 {
			model.ContextMaxLength = fc.ContextMaxLength
		}
		if fc.ResponseMaxLength > 0 {
			model.RespMaxLength = fc.ResponseMaxLength
		}
		if fc.PadMultipleOf > 0 {
			model.PadMultipleOf = fc.PadMultipleOf
		}
		if fc.RecommendTopK > 0 {
			model.RecommendTopK = fc.RecommendTopK
		}
		if fc.DecisionNewTokens > 0 {
			model.DecisionNewTokens = fc.DecisionNewTokens
		}
		if fc.DecisionStepFromEnd > 0 {
			model.DecisionStepFromEnd = fc.DecisionStepFromEnd
		}

		f, err := fighter.New(fighter.Config{
			ID:      fc.ID,
			Name:    fc.Name,
			Kind:    kind,
			Model:   model,
			Options: fc.OptionSet(),
		}, runtime, cat)
		if err != nil {
			return nil, fmt.Errorf("fighter %d: %w", fc.ID, err)
		}

		fighters[f.ID()] = f
		logging.Info().
			Int("fighter_id", f.ID()).
			Str("fighter", f.Name()).
			Str("dataset", f.Dataset()).
			Msg("Fighter ready")
	}
	return fighters, nil
}
