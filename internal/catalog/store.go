// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"github.com/meline-schndr/networking-project/internal/db"
)

// Filter is a single equality predicate for Store.FindOne, e.g. {"ID", 530080}
// or {"Nom", "Reine"}. The column name is checked against the store's
// introspected allow-list before any SQL is built from it.
type Filter struct {
	Column string
	Value  any
}

// Entity is the tagged result of a single-row refill. Exactly one of the
// three catalog row types implements it per table.
type Entity interface {
	isCatalogEntity()
}

// ClientEntity is the Entity for rows of the `Client` table.
type ClientEntity struct {
	Row db.ClientRow
}

// PizzaEntity is the Entity for rows of the `Pizza` table.
type PizzaEntity struct {
	Row db.PizzaRow
}

// StationEntity is the Entity for rows of the `Production` table.
type StationEntity struct {
	Row db.StationRow
}

func (ClientEntity) isCatalogEntity()  {}
func (PizzaEntity) isCatalogEntity()   {}
func (StationEntity) isCatalogEntity() {}

// Store is the interface to the authoritative catalog store. The production
// implementation is SQLStore; tests substitute an in-memory double.
type Store interface {
	AllClients() ([]db.ClientRow, error)
	AllPizzas() ([]db.PizzaRow, error)
	AllStations() ([]db.StationRow, error)
	// FindOne returns at most one entity matching all filters, or (nil, nil)
	// if there is no match or the table/column names are not addressable.
	FindOne(tableName string, filters ...Filter) (Entity, error)
}
