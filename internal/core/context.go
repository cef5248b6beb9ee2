// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

// Package core holds the shared state of the engine: the catalog, the
// production manager, the process-wide counters, and the single mutex that
// serializes access to all three.
package core

import (
	"sync"

	"github.com/meline-schndr/networking-project/internal/catalog"
	"github.com/meline-schndr/networking-project/internal/scheduler"
)

// Stats contains the process-wide counters. Mutated only from the batch
// flush path.
type Stats struct {
	AcceptedOrders uint64
	RefusedOrders  uint64
	// Ingredients counts consumed ingredient tokens (keys R, J, V, B).
	Ingredients map[string]uint64
}

// Context bundles the mutable shared state of the engine. The order agent
// holds Mutex for the duration of a batch flush; the dashboard holds it
// briefly while assembling its snapshot. There are no finer-grained locks.
type Context struct {
	Mutex   sync.Mutex
	Catalog *catalog.Catalog
	Manager *scheduler.Manager
	Stats   Stats
}

// NewContext bundles the given collaborators into a Context.
func NewContext(cat *catalog.Catalog, manager *scheduler.Manager) *Context {
	return &Context{
		Catalog: cat,
		Manager: manager,
		Stats: Stats{
			Ingredients: map[string]uint64{"R": 0, "J": 0, "V": 0, "B": 0},
		},
	}
}
