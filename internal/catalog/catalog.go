// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

var (
	// ErrEmptyCatalog is returned when the entity table has no entries.
	ErrEmptyCatalog = errors.New("catalog: entity table is empty")

	// ErrNoItems is returned when the recommendable item subset is empty.
	ErrNoItems = errors.New("catalog: item subset is empty")

	// ErrMissingEntityName reports an id with no entry in the naming
	// table. The id universe and the naming table are built from the same
	// source file, so hitting this means the deployment is misassembled.
	ErrMissingEntityName = errors.New("catalog: id has no entity name")
)

// Catalog is the immutable recommendation universe for one dataset: entity
// names mapped to dense integer ids, the inverse mapping, and the subset of
// ids that are recommendable items (as opposed to concepts such as genres
// or people).
type Catalog struct {
	entityToID map[string]int
	idToEntity map[int]string
	names      []string
	itemIDs    []int
}

// New builds a Catalog from an entity table and the recommendable item id
// subset. The inverse table is derived by inversion; if two names share an
// id the later name (in sorted order) wins, matching the source data's
// last-writer behavior.
func New(entityToID map[string]int, itemIDs []int) (*Catalog, error) {
	if len(entityToID) == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(itemIDs) == 0 {
		return nil, ErrNoItems
	}

	names := make([]string, 0, len(entityToID))
	for name := range entityToID {
		names = append(names, name)
	}
	sort.Strings(names)

	idToEntity := make(map[int]string, len(entityToID))
	for _, name := range names {
		idToEntity[entityToID[name]] = name
	}

	ids := make([]int, len(itemIDs))
	copy(ids, itemIDs)

	return &Catalog{
		entityToID: entityToID,
		idToEntity: idToEntity,
		names:      names,
		itemIDs:    ids,
	}, nil
}

// Load reads the entity table and item subset from JSON files. The entity
// file maps entity name to integer id; the item file is a flat array of
// item ids.
func Load(entityPath, itemPath string) (*Catalog, error) {
	entityRaw, err := os.ReadFile(entityPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading entity table: %w", err)
	}

	var entityToID map[string]int
	if err := json.Unmarshal(entityRaw, &entityToID); err != nil {
		return nil, fmt.Errorf("catalog: parsing entity table %s: %w", entityPath, err)
	}

	itemRaw, err := os.ReadFile(itemPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading item subset: %w", err)
	}

	var itemIDs []int
	if err := json.Unmarshal(itemRaw, &itemIDs); err != nil {
		return nil, fmt.Errorf("catalog: parsing item subset %s: %w", itemPath, err)
	}

	return New(entityToID, itemIDs)
}

// EntityID returns the id for an entity name.
func (c *Catalog) EntityID(name string) (int, bool) {
	id, ok := c.entityToID[name]
	return id, ok
}

// EntityName returns the name for an entity id.
func (c *Catalog) EntityName(id int) (string, bool) {
	name, ok := c.idToEntity[id]
	return name, ok
}

// Names resolves entity ids to names, strictly: any id absent from the
// naming table fails the whole resolution with ErrMissingEntityName.
func (c *Catalog) Names(ids []int) ([]string, error) {
	names := make([]string, len(ids))
	for i, id := range ids {
		name, ok := c.idToEntity[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrMissingEntityName, id)
		}
		names[i] = name
	}
	return names, nil
}

// Entities returns every entity surface form in sorted order. The returned
// slice is shared; callers must not modify it.
func (c *Catalog) Entities() []string {
	return c.names
}

// ItemIDs returns the recommendable item id subset in file order. The
// returned slice is shared; callers must not modify it.
func (c *Catalog) ItemIDs() []int {
	return c.itemIDs
}

// Size returns the number of known entities.
func (c *Catalog) Size() int {
	return len(c.entityToID)
}

// ItemCount returns the number of recommendable items.
func (c *Catalog) ItemCount() int {
	return len(c.itemIDs)
}
