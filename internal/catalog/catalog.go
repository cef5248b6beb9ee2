// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the process-lifetime snapshot of the three entity
// sets (clients, pizzas, stations), with a miss-then-refill path backed by
// the authoritative store.
package catalog

import (
	"time"

	"github.com/sapcc/go-bits/logg"

	"github.com/meline-schndr/networking-project/internal/db"
)

// Client is a known customer. Immutable once loaded.
type Client struct {
	ID int64
	// Travel is the delivery travel time to this client.
	Travel time.Duration
}

// Pizza is a producible pizza type. Immutable; identified by (Name, Size).
type Pizza struct {
	Name        string
	Size        string
	Composition string
	// ProductionTime is how long one station takes to bake any ordered
	// quantity of this pizza in parallel.
	ProductionTime time.Duration
	Price          float64
}

// PizzaKey identifies a Pizza.
type PizzaKey struct {
	Name string
	Size string
}

// Catalog is the in-memory snapshot. It carries no lock of its own: all
// access (including the mutation-on-refill path) is serialized through the
// engine-wide mutex in core.Context.
type Catalog struct {
	store   Store // nil if the authoritative store is unreachable
	clients map[int64]Client
	pizzas  map[PizzaKey]Pizza
}

// New builds an empty Catalog on top of the given store. A nil store is
// allowed; every lookup is then a hard miss.
func New(store Store) *Catalog {
	return &Catalog{
		store:   store,
		clients: make(map[int64]Client),
		pizzas:  make(map[PizzaKey]Pizza),
	}
}

// LoadAll bulk-loads clients and pizzas from the store. Called once at
// startup; with no store it is a silent no-op.
func (c *Catalog) LoadAll() error {
	if c.store == nil {
		return nil
	}
	clientRows, err := c.store.AllClients()
	if err != nil {
		return err
	}
	for _, row := range clientRows {
		c.insertClient(row)
	}
	pizzaRows, err := c.store.AllPizzas()
	if err != nil {
		return err
	}
	for _, row := range pizzaRows {
		c.insertPizza(row)
	}
	logg.Info("catalog loaded: %d clients, %d pizzas", len(c.clients), len(c.pizzas))
	return nil
}

// Stations returns the station layout. Stations are loaded exactly once (the
// floor layout is static for the process lifetime); if the store is
// unreachable or empty, the default layout is used instead.
func (c *Catalog) Stations() []db.StationRow {
	if c.store != nil {
		rows, err := c.store.AllStations()
		if err != nil {
			logg.Error("cannot load stations from the store: %s", err.Error())
		} else if len(rows) > 0 {
			return rows
		}
	}
	logg.Info("using the default layout of %d stations", len(defaultStations))
	return defaultStations
}

// ClientIfKnown looks up a client without touching the store. Used for the
// intra-batch slack computation, which must not trigger refills.
func (c *Catalog) ClientIfKnown(id int64) (Client, bool) {
	client, ok := c.clients[id]
	return client, ok
}

// PizzaIfKnown looks up a pizza without touching the store.
func (c *Catalog) PizzaIfKnown(name, size string) (Pizza, bool) {
	pizza, ok := c.pizzas[PizzaKey{name, size}]
	return pizza, ok
}

// ClientByID looks up a client, refilling from the store on miss. A transient
// store failure is reported as a miss (availability over strict consistency).
func (c *Catalog) ClientByID(id int64) (Client, bool) {
	if client, ok := c.clients[id]; ok {
		return client, true
	}
	if c.store == nil {
		return Client{}, false
	}
	entity, err := c.store.FindOne("Client", Filter{"ID", id})
	if err != nil {
		logg.Error("refill of client %d failed: %s", id, err.Error())
		return Client{}, false
	}
	ce, ok := entity.(ClientEntity)
	if !ok {
		return Client{}, false
	}
	logg.Info("catalog refill: discovered client %d", id)
	return c.insertClient(ce.Row), true
}

// PizzaByNameSize looks up a pizza, refilling from the store on miss.
func (c *Catalog) PizzaByNameSize(name, size string) (Pizza, bool) {
	if pizza, ok := c.pizzas[PizzaKey{name, size}]; ok {
		return pizza, true
	}
	if c.store == nil {
		return Pizza{}, false
	}
	entity, err := c.store.FindOne("Pizza", Filter{"Nom", name}, Filter{"Taille", size})
	if err != nil {
		logg.Error("refill of pizza (%s, %s) failed: %s", name, size, err.Error())
		return Pizza{}, false
	}
	pe, ok := entity.(PizzaEntity)
	if !ok {
		return Pizza{}, false
	}
	logg.Info("catalog refill: discovered pizza (%s, %s)", name, size)
	return c.insertPizza(pe.Row), true
}

func (c *Catalog) insertClient(row db.ClientRow) Client {
	client := Client{
		ID:     row.ID,
		Travel: time.Duration(row.Distance) * time.Minute,
	}
	c.clients[client.ID] = client
	return client
}

func (c *Catalog) insertPizza(row db.PizzaRow) Pizza {
	pizza := Pizza{
		Name:           row.Name,
		Size:           row.Size,
		Composition:    row.Composition,
		ProductionTime: time.Duration(row.ProductionTime) * time.Minute,
		Price:          row.Price,
	}
	c.pizzas[PizzaKey{pizza.Name, pizza.Size}] = pizza
	return pizza
}
