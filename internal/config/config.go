// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package config loads and validates the server configuration.
//
// Configuration is layered: compiled-in defaults, then an optional YAML
// file, then environment variables, with later layers overriding earlier
// ones. Every knob has a working default so the server starts with no
// config file at all when a model runtime is reachable on localhost.
package config

import (
	"time"

	"github.com/parleyhq/parley/internal/backbone"
	"github.com/parleyhq/parley/internal/catalog"
)

// Config is the root configuration for the parley server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Runtime   RuntimeConfig   `koanf:"runtime"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Fighters  []FighterConfig `koanf:"fighters"`
	Session   SessionConfig   `koanf:"session"`
	Events    EventsConfig    `koanf:"events"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `koanf:"host" validate:"required"`

	// Port is the listen port. Default: 8480
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// Timeout bounds request handling end to end, including model
	// runtime calls. Default: 60s
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful drain on shutdown. Default: 15s
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed cross-origin request origins.
	// Default: ["*"]
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests is the per-client request budget within
	// RateLimitWindow. Default: 100
	RateLimitRequests int `koanf:"rate_limit_requests"`

	// RateLimitWindow is the rate limit accounting window. Default: 1m
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns request rate limiting off entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// RuntimeConfig holds the connection to the model runtime that executes
// tokenization, scoring, and generation.
type RuntimeConfig struct {
	// URL is the model runtime base URL. Default: http://127.0.0.1:8601
	URL string `koanf:"url" validate:"required,url"`

	// Timeout bounds a single runtime call. Generation is the slowest
	// operation and sets the floor. Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond caps the sustained call rate to the runtime.
	// Zero disables client-side throttling. Default: 50
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// Burst is the throttle burst allowance. Default: 100
	Burst int `koanf:"burst"`
}

// CatalogConfig points at the entity and item tables the recommender
// scores against.
type CatalogConfig struct {
	// EntityPath is the JSON file mapping entity names to ids.
	// Default: /data/catalog/entity2id.json
	EntityPath string `koanf:"entity_path" validate:"required"`

	// ItemPath is the JSON file listing recommendable item ids.
	// Default: /data/catalog/item_ids.json
	ItemPath string `koanf:"item_path" validate:"required"`
}

// FighterConfig declares one serving-ready model instance. Fighters are
// file-only configuration; there is no environment variable form.
type FighterConfig struct {
	// ID is the fighter slot, 1 or 2.
	ID int `koanf:"id"`

	// Name is the display name. Defaults to the backbone name.
	Name string `koanf:"name"`

	// Backbone selects the model family. Currently "barcor".
	Backbone string `koanf:"backbone"`

	// Dataset names the corpus the model was trained on and selects
	// the built-in decision option set. Default: redial
	Dataset string `koanf:"dataset"`

	// Model hyperparameters. Zero values take the backbone defaults.
	ContextMaxLength    int `koanf:"context_max_length"`
	ResponseMaxLength   int `koanf:"response_max_length"`
	PadMultipleOf       int `koanf:"pad_multiple_of"`
	RecommendTopK       int `koanf:"recommend_top_k"`
	DecisionNewTokens   int `koanf:"decision_new_tokens"`
	DecisionStepFromEnd int `koanf:"decision_step_from_end"`

	// Prompt and Options override the built-in decision option set for
	// the dataset. Both must be given together or not at all.
	Prompt  string           `koanf:"prompt"`
	Options []catalog.Option `koanf:"options"`
}

// Kind parses the configured backbone name.
func (f FighterConfig) Kind() (backbone.Kind, error) {
	return backbone.ParseKind(f.Backbone)
}

// OptionSet returns the configured option-set override, or nil when the
// fighter uses the built-in set for its dataset.
func (f FighterConfig) OptionSet() *catalog.OptionSet {
	if len(f.Options) == 0 {
		return nil
	}
	return &catalog.OptionSet{Prompt: f.Prompt, Options: f.Options}
}

// SessionConfig holds conversation session lifecycle settings.
type SessionConfig struct {
	// TTL is how long an idle conversation survives before the sweeper
	// reclaims it. Default: 30m
	TTL time.Duration `koanf:"ttl"`

	// SweepInterval is how often expired sessions are reclaimed.
	// Default: 1m
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// MaxSessions caps live conversations. Zero means unlimited.
	MaxSessions int `koanf:"max_sessions"`
}

// EventsConfig holds the in-process turn event bus settings.
type EventsConfig struct {
	// BufferSize is the per-subscriber channel buffer. Default: 256
	BufferSize int `koanf:"buffer_size"`
}

// AnalyticsConfig holds the turn telemetry store settings.
type AnalyticsConfig struct {
	// Enabled turns turn telemetry persistence on. Default: true
	Enabled bool `koanf:"enabled"`

	// Path is the DuckDB database file. Default: /data/parley.duckdb
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit pragma. Default: 1GB
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. Zero lets DuckDB decide.
	Threads int `koanf:"threads"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level. Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`

	// Format is json or console. Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes file and line in log events.
	Caller bool `koanf:"caller"`
}

// defaultConfig returns the compiled-in defaults. Fighters defaults to
// a single BARCOR instance in slot 1; deployments that pit two models
// against each other list both in the config file.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8480,
			Timeout:           60 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Runtime: RuntimeConfig{
			URL:               "http://127.0.0.1:8601",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 50,
			Burst:             100,
		},
		Catalog: CatalogConfig{
			EntityPath: "/data/catalog/entity2id.json",
			ItemPath:   "/data/catalog/item_ids.json",
		},
		Fighters: []FighterConfig{
			{ID: 1, Backbone: "barcor", Dataset: "redial"},
		},
		Session: SessionConfig{
			TTL:           30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Events: EventsConfig{
			BufferSize: 256,
		},
		Analytics: AnalyticsConfig{
			Enabled:   true,
			Path:      "/data/parley.duckdb",
			MaxMemory: "1GB",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
