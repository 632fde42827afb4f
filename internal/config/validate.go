// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package config

import (
	"fmt"

	"github.com/parleyhq/parley/internal/catalog"
	"github.com/parleyhq/parley/internal/validation"
)

// Validate checks that the configuration is complete and consistent.
// Struct tags catch malformed individual fields; the section validators
// below cover cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateRuntime(); err != nil {
		return err
	}

	if err := c.validateFighters(); err != nil {
		return err
	}

	if err := c.validateSession(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateAnalytics()
}

// validateServer validates HTTP listener configuration
func (c *Config) validateServer() error {
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1 unless DISABLE_RATE_LIMIT=true")
	}
	if c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// validateRuntime validates the model runtime connection
func (c *Config) validateRuntime() error {
	if c.Runtime.Timeout <= 0 {
		return fmt.Errorf("RUNTIME_TIMEOUT must be positive")
	}
	if c.Runtime.RequestsPerSecond < 0 {
		return fmt.Errorf("RUNTIME_RPS must not be negative")
	}
	if c.Runtime.RequestsPerSecond > 0 && c.Runtime.Burst < 1 {
		return fmt.Errorf("RUNTIME_BURST must be at least 1 when RUNTIME_RPS is set")
	}
	return nil
}

// validateFighters validates the fighter roster. The arena serves one
// or two fighters in fixed slots 1 and 2.
func (c *Config) validateFighters() error {
	if len(c.Fighters) < 1 || len(c.Fighters) > 2 {
		return fmt.Errorf("fighters: between 1 and 2 fighters must be configured, got %d", len(c.Fighters))
	}

	seen := make(map[int]bool, len(c.Fighters))
	for i, f := range c.Fighters {
		if f.ID != 1 && f.ID != 2 {
			return fmt.Errorf("fighters[%d]: id must be 1 or 2, got %d", i, f.ID)
		}
		if seen[f.ID] {
			return fmt.Errorf("fighters[%d]: duplicate id %d", i, f.ID)
		}
		seen[f.ID] = true

		if _, err := f.Kind(); err != nil {
			return fmt.Errorf("fighters[%d]: %w", i, err)
		}

		if err := validateFighterModel(i, f); err != nil {
			return err
		}

		if err := validateFighterOptions(i, f); err != nil {
			return err
		}
	}
	return nil
}

// validateFighterModel rejects negative hyperparameters. Zero values
// are allowed and take the backbone defaults.
func validateFighterModel(i int, f FighterConfig) error {
	params := []struct {
		name  string
		value int
	}{
		{"context_max_length", f.ContextMaxLength},
		{"response_max_length", f.ResponseMaxLength},
		{"pad_multiple_of", f.PadMultipleOf},
		{"recommend_top_k", f.RecommendTopK},
		{"decision_new_tokens", f.DecisionNewTokens},
		{"decision_step_from_end", f.DecisionStepFromEnd},
	}
	for _, p := range params {
		if p.value < 0 {
			return fmt.Errorf("fighters[%d]: %s must not be negative, got %d", i, p.name, p.value)
		}
	}
	return nil
}

// validateFighterOptions checks the decision option set. A fighter
// either names a dataset with a built-in set or overrides prompt and
// options together.
func validateFighterOptions(i int, f FighterConfig) error {
	hasOptions := len(f.Options) > 0
	hasPrompt := f.Prompt != ""

	if hasOptions != hasPrompt {
		return fmt.Errorf("fighters[%d]: prompt and options must be configured together", i)
	}

	if hasOptions {
		if err := f.OptionSet().Validate(); err != nil {
			return fmt.Errorf("fighters[%d]: %w", i, err)
		}
		return nil
	}

	if f.Dataset == "" {
		return nil // backbone default dataset has a built-in set
	}
	if _, ok := catalog.DefaultOptionSet(f.Dataset); !ok {
		return fmt.Errorf("fighters[%d]: no built-in option set for dataset %q; configure prompt and options", i, f.Dataset)
	}
	return nil
}

// validateSession validates session lifecycle configuration
func (c *Config) validateSession() error {
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Session.MaxSessions < 0 {
		return fmt.Errorf("SESSION_MAX must not be negative")
	}
	return nil
}

// validateEvents validates event bus configuration
func (c *Config) validateEvents() error {
	if c.Events.BufferSize < 1 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must be at least 1")
	}
	return nil
}

// validateAnalytics validates the analytics store configuration
func (c *Config) validateAnalytics() error {
	if !c.Analytics.Enabled {
		return nil
	}
	if c.Analytics.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required when ANALYTICS_ENABLED=true")
	}
	if c.Analytics.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}
