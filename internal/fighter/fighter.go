// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

// Package fighter assembles one serving-ready recommender instance: a
// backbone bound to its catalog, action menu and mention extractor, with
// the turn orchestration on top. All construction-time validation of the
// core lives here; a Fighter that constructs is ready to serve.
package fighter

import (
	"errors"
	"fmt"

	"github.com/parleyhq/parley/internal/backbone"
	"github.com/parleyhq/parley/internal/backbone/barcor"
	"github.com/parleyhq/parley/internal/catalog"
	"github.com/parleyhq/parley/internal/dialogue"
	"github.com/parleyhq/parley/internal/inference"
)

var (
	// ErrInvalidID is returned by New for a fighter id other than 1 or 2.
	ErrInvalidID = errors.New("fighter: id must be 1 or 2")

	// ErrNoOptionSet is returned by New when the dataset has no built-in
	// action menu and the config supplies no override.
	ErrNoOptionSet = errors.New("fighter: no option set for dataset")
)

// Config configures one fighter.
type Config struct {
	// ID is the arena slot this fighter occupies, 1 or 2.
	ID int `koanf:"id" json:"id"`

	// Name labels the fighter in logs and telemetry. Defaults to the
	// backbone kind name.
	Name string `koanf:"name" json:"name"`

	// Kind selects the backbone implementation.
	Kind backbone.Kind `koanf:"-" json:"kind"`

	// Model holds the backbone serving parameters.
	Model barcor.Config `koanf:"-" json:"model"`

	// Options overrides the dataset's built-in action menu when non-nil.
	// The last entry stays the reserved recommend action.
	Options *catalog.OptionSet `koanf:"-" json:"options,omitempty"`
}

// Fighter is one named recommender instance. It holds no per-conversation
// state and is safe for concurrent use; callers thread the penalty vector
// between turns themselves.
type Fighter struct {
	id        int
	name      string
	backbone  backbone.Backbone
	catalog   *catalog.Catalog
	options   catalog.OptionSet
	extractor dialogue.Extractor
}

// New builds a fighter from its config. Any validation failure here is a
// configuration error: nothing is partially constructed.
func New(cfg Config, runtime inference.Runtime, cat *catalog.Catalog) (*Fighter, error) {
	if cfg.ID != 1 && cfg.ID != 2 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidID, cfg.ID)
	}

	bb, err := buildBackbone(cfg, runtime, cat)
	if err != nil {
		return nil, err
	}

	options, err := resolveOptions(cfg, bb.Dataset())
	if err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Kind.String()
	}

	return &Fighter{
		id:        cfg.ID,
		name:      name,
		backbone:  bb,
		catalog:   cat,
		options:   options,
		extractor: dialogue.NewSurfaceMatcher(cat.Entities()),
	}, nil
}

// buildBackbone constructs the configured backbone variant. The variant
// set is closed: adding one means adding a case here, and only BARCOR is
// constructible in this build.
func buildBackbone(cfg Config, runtime inference.Runtime, cat *catalog.Catalog) (backbone.Backbone, error) {
	switch cfg.Kind {
	case backbone.KindBARCOR:
		return barcor.New(cfg.Model, runtime, cat)
	case backbone.KindKBRD, backbone.KindUniCRS, backbone.KindChatGPT:
		return nil, fmt.Errorf("%w: %s", backbone.ErrUnsupportedKind, cfg.Kind)
	default:
		return nil, fmt.Errorf("%w: kind %d", backbone.ErrUnknownKind, int(cfg.Kind))
	}
}

// resolveOptions picks the action menu: the config override when present,
// the dataset's built-in menu otherwise.
func resolveOptions(cfg Config, dataset string) (catalog.OptionSet, error) {
	if cfg.Options != nil {
		if err := cfg.Options.Validate(); err != nil {
			return catalog.OptionSet{}, err
		}
		return *cfg.Options, nil
	}

	options, ok := catalog.DefaultOptionSet(dataset)
	if !ok {
		return catalog.OptionSet{}, fmt.Errorf("%w %q", ErrNoOptionSet, dataset)
	}
	return options, nil
}

// ID returns the fighter's arena slot.
func (f *Fighter) ID() int {
	return f.id
}

// Name returns the fighter's display name.
func (f *Fighter) Name() string {
	return f.name
}

// Dataset names the catalog domain the fighter serves.
func (f *Fighter) Dataset() string {
	return f.backbone.Dataset()
}

// Options returns the fighter's action menu.
func (f *Fighter) Options() catalog.OptionSet {
	return f.options
}
