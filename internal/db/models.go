// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package db

import (
	gorp "github.com/go-gorp/gorp/v3"
)

// The authoritative store uses French, mixed-case column names. Those names
// are the interface (they predate this engine), so the row types below map
// them verbatim instead of renaming anything in SQL.

// ClientRow contains a record from the `Client` table.
type ClientRow struct {
	ID int64 `db:"ID"`
	// Distance is the travel time to this client in minutes.
	Distance int64 `db:"Distance"`
}

// PizzaRow contains a record from the `Pizza` table.
// A pizza is identified by the pair (Name, Size).
type PizzaRow struct {
	Name string `db:"Nom"`
	Size string `db:"Taille"`
	// Composition is an opaque ingredient encoding; only the characters
	// R, J, V and B are counted in ingredient tallies.
	Composition string `db:"Composition"`
	// ProductionTime is the time in minutes that one station needs to bake
	// the whole ordered quantity in parallel.
	ProductionTime int64   `db:"TPsProd"`
	Price          float64 `db:"Prix"`
}

// StationRow contains a record from the `Production` table.
type StationRow struct {
	ID       int64 `db:"Poste"`
	Capacity int64 `db:"Capacite"`
	Oper     bool  `db:"Disponibilite"`
	// Size restricts the station to one pizza size; "" and "-" both mean
	// that any size is accepted.
	Size string `db:"Taille"`
	// Restrictions is a comma-separated list of pizza names that must not
	// be produced at this station. Empty tokens and "---" are ignored.
	Restrictions string `db:"Restriction"`
}

func initGorp(dbMap *gorp.DbMap) {
	dbMap.AddTableWithName(ClientRow{}, "Client").SetKeys(false, "ID")
	dbMap.AddTableWithName(PizzaRow{}, "Pizza").SetKeys(false, "Nom", "Taille")
	dbMap.AddTableWithName(StationRow{}, "Production").SetKeys(false, "Poste")
}
