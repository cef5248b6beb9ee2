// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/sapcc/go-bits/assert"
	"github.com/sapcc/go-bits/must"

	"github.com/meline-schndr/networking-project/internal/catalog"
	"github.com/meline-schndr/networking-project/internal/core"
	"github.com/meline-schndr/networking-project/internal/db"
	"github.com/meline-schndr/networking-project/internal/scheduler"
)

// staticStore is an in-memory catalog.Store for tests.
type staticStore struct {
	clients  []db.ClientRow
	pizzas   []db.PizzaRow
	stations []db.StationRow

	findOneCalls int
}

func (s *staticStore) AllClients() ([]db.ClientRow, error)   { return s.clients, nil }
func (s *staticStore) AllPizzas() ([]db.PizzaRow, error)     { return s.pizzas, nil }
func (s *staticStore) AllStations() ([]db.StationRow, error) { return s.stations, nil }

func (s *staticStore) FindOne(tableName string, filters ...catalog.Filter) (catalog.Entity, error) {
	s.findOneCalls++
	switch tableName {
	case "Client":
		for _, row := range s.clients {
			if filtersMatch(filters, map[string]any{"ID": row.ID}) {
				return catalog.ClientEntity{Row: row}, nil
			}
		}
	case "Pizza":
		for _, row := range s.pizzas {
			if filtersMatch(filters, map[string]any{"Nom": row.Name, "Taille": row.Size}) {
				return catalog.PizzaEntity{Row: row}, nil
			}
		}
	}
	return nil, nil
}

func filtersMatch(filters []catalog.Filter, columns map[string]any) bool {
	for _, filter := range filters {
		if columns[filter.Column] != filter.Value {
			return false
		}
	}
	return true
}

var testBaseTime = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

// newTestEngine wires a full engine (catalog, manager, shared context,
// batcher) around the given store, with time frozen at testBaseTime.
func newTestEngine(t *testing.T, store *staticStore, loadAll bool) (*core.Context, *Batcher) {
	t.Helper()
	cat := catalog.New(store)
	if loadAll {
		must.SucceedT(t, cat.LoadAll())
	}
	mgr := scheduler.NewManager(store.stations)
	mgr.TimeNow = func() time.Time { return testBaseTime }
	shared := core.NewContext(cat, mgr)

	batcher := NewBatcher(shared, nil)
	batcher.TimeNow = mgr.TimeNow
	return shared, batcher
}

func mustParseOrder(t *testing.T, line string) Order {
	t.Helper()
	order, err := ParseOrder(line, testBaseTime)
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %s", line, err.Error())
	}
	return order
}

func TestSortBySlack(t *testing.T) {
	store := &staticStore{
		clients: []db.ClientRow{
			{ID: 1, Distance: 5},
			{ID: 2, Distance: 3},
			{ID: 3, Distance: 8},
			{ID: 4, Distance: 3},
		},
		pizzas: []db.PizzaRow{
			{Name: "Reine", Size: "G", Composition: "PT,R,J", ProductionTime: 10, Price: 11},
		},
		stations: []db.StationRow{{ID: 1, Capacity: 30, Oper: true}},
	}
	_, batcher := newTestEngine(t, store, true)

	// slacks: client 1 -> 25-5-10 = 10 min, client 2 -> 15-3-10 = 2 min,
	// client 3 -> 25-8-10 = 7 min, client 4 -> 15-3-10 = 2 min
	orders := []Order{
		mustParseOrder(t, "24/08/2026 10:00:00,1,Reine,G,1,10:25"),
		mustParseOrder(t, "24/08/2026 10:00:00,2,Reine,G,1,10:15"),
		mustParseOrder(t, "24/08/2026 10:00:00,3,Reine,G,1,10:25"),
		mustParseOrder(t, "24/08/2026 10:00:00,4,Reine,G,1,10:15"),
	}
	batcher.sortBySlack(orders)

	// least slack first; the two equal-slack orders keep their arrival order
	var clientIDs []int64
	for _, order := range orders {
		clientIDs = append(clientIDs, order.ClientID)
	}
	assert.DeepEqual(t, "processing order", clientIDs, []int64{2, 4, 3, 1})
}

func TestSortBySlackUnknownEntries(t *testing.T) {
	store := &staticStore{
		clients:  []db.ClientRow{{ID: 1, Distance: 5}},
		pizzas:   []db.PizzaRow{{Name: "Reine", Size: "G", Composition: "PT,R", ProductionTime: 10, Price: 11}},
		stations: []db.StationRow{{ID: 1, Capacity: 30, Oper: true}},
	}
	_, batcher := newTestEngine(t, store, true)

	orders := []Order{
		mustParseOrder(t, "24/08/2026 10:00:00,1,Reine,G,1,10:30"),
		// unknown pizza: the pessimistic production time yields a deeply
		// negative slack, so this order goes first (and gets its refill
		// attempt before capacity is given away)
		mustParseOrder(t, "24/08/2026 10:00:00,1,Hawai,G,1,10:30"),
		// unparseable delivery time: maximal slack, goes last
		mustParseOrder(t, "24/08/2026 10:00:00,1,Reine,G,1,99:99"),
	}
	batcher.sortBySlack(orders)

	assert.DeepEqual(t, "unknown pizza first", orders[0].PizzaName, "Hawai")
	assert.DeepEqual(t, "known pizza second", orders[1].DeliveryClock, "10:30")
	assert.DeepEqual(t, "bad delivery time last", orders[2].DeliveryClock, "99:99")
}

func TestFlushOutcomes(t *testing.T) {
	store := &staticStore{
		clients: []db.ClientRow{{ID: 530080, Distance: 5}},
		pizzas: []db.PizzaRow{
			{Name: "Reine", Size: "G", Composition: "PT,R,J,V", ProductionTime: 10, Price: 12.5},
		},
		stations: []db.StationRow{{ID: 1, Capacity: 30, Oper: true}},
	}
	shared, batcher := newTestEngine(t, store, true)

	batcher.Flush([]Order{
		mustParseOrder(t, "24/08/2026 10:00:00,530080,Reine,G,2,11:00"),
		mustParseOrder(t, "24/08/2026 10:00:00,111,Reine,G,1,11:00"),    // unknown client
		mustParseOrder(t, "24/08/2026 10:00:00,530080,Hawai,G,1,11:00"), // unknown pizza
		mustParseOrder(t, "24/08/2026 10:00:00,530080,Reine,G,1,99:99"), // bad delivery time
	})

	assert.DeepEqual(t, "accepted", shared.Stats.AcceptedOrders, uint64(1))
	assert.DeepEqual(t, "refused", shared.Stats.RefusedOrders, uint64(3))
	// one accepted order of 2 pizzas with one R, J and V token each
	assert.DeepEqual(t, "ingredients", shared.Stats.Ingredients,
		map[string]uint64{"R": 2, "J": 2, "V": 2, "B": 0})

	// the accepted order is committed on the station
	stations := shared.Manager.Stations()
	assert.DeepEqual(t, "committed tasks", len(stations[0].Planning()), 1)
	assert.DeepEqual(t, "committed quantity", stations[0].Planning()[0].Quantity, 2)
}

func TestFlushDeadlineRefusal(t *testing.T) {
	store := &staticStore{
		clients: []db.ClientRow{{ID: 530080, Distance: 5}},
		pizzas: []db.PizzaRow{
			{Name: "Reine", Size: "G", Composition: "PT,R", ProductionTime: 10, Price: 12.5},
		},
		stations: []db.StationRow{{ID: 1, Capacity: 30, Oper: true}},
	}
	shared, batcher := newTestEngine(t, store, true)

	// 12 minutes until delivery minus 5 minutes travel leaves 7 minutes for
	// a 10-minute bake
	batcher.Flush([]Order{
		mustParseOrder(t, "24/08/2026 10:00:00,530080,Reine,G,1,10:12"),
	})

	assert.DeepEqual(t, "accepted", shared.Stats.AcceptedOrders, uint64(0))
	assert.DeepEqual(t, "refused", shared.Stats.RefusedOrders, uint64(1))
}

func TestCatalogRefillDuringFlush(t *testing.T) {
	store := &staticStore{
		clients: []db.ClientRow{{ID: 530080, Distance: 5}},
		pizzas: []db.PizzaRow{
			{Name: "Reine", Size: "G", Composition: "PT,R", ProductionTime: 10, Price: 12.5},
		},
		stations: []db.StationRow{{ID: 1, Capacity: 30, Oper: true}},
	}
	// skip the bulk load, so the first order hits the refill path
	shared, batcher := newTestEngine(t, store, false)

	batcher.Flush([]Order{
		mustParseOrder(t, "24/08/2026 10:00:00,530080,Reine,G,1,11:00"),
	})
	assert.DeepEqual(t, "accepted after refill", shared.Stats.AcceptedOrders, uint64(1))
	assert.DeepEqual(t, "one refill per entity", store.findOneCalls, 2)

	// the refilled entries are cached: an identical order does not touch the
	// store again
	batcher.Flush([]Order{
		mustParseOrder(t, "24/08/2026 10:05:00,530080,Reine,G,1,11:00"),
	})
	assert.DeepEqual(t, "accepted from cache", shared.Stats.AcceptedOrders, uint64(2))
	assert.DeepEqual(t, "no further store access", store.findOneCalls, 2)

	// misses are not cached: an unknown client is looked up again every time
	batcher.Flush([]Order{
		mustParseOrder(t, "24/08/2026 10:06:00,111,Reine,G,1,11:00"),
	})
	assert.DeepEqual(t, "refused", shared.Stats.RefusedOrders, uint64(1))
	assert.DeepEqual(t, "miss hits the store", store.findOneCalls, 3)
}

func TestSlackOrderingSavesTightOrders(t *testing.T) {
	store := &staticStore{
		clients: []db.ClientRow{
			{ID: 1, Distance: 0},
			{ID: 2, Distance: 0},
			{ID: 3, Distance: 0},
		},
		pizzas: []db.PizzaRow{
			{Name: "Reine", Size: "G", Composition: "PT,R", ProductionTime: 10, Price: 11},
		},
		stations: []db.StationRow{{ID: 1, Capacity: 10, Oper: true}},
	}

	// three full-capacity orders compete for one station; in arrival order,
	// the tight order of client 2 would be crowded out by client 1's
	batch := []string{
		"24/08/2026 10:00:00,1,Reine,G,10,10:35",
		"24/08/2026 10:00:00,2,Reine,G,10,10:12",
		"24/08/2026 10:00:00,3,Reine,G,10,10:25",
	}

	// processed in arrival order, client 2 is refused
	shared, batcher := newTestEngine(t, store, true)
	shared.Mutex.Lock()
	for _, line := range batch {
		batcher.processOrder(mustParseOrder(t, line))
	}
	shared.Mutex.Unlock()
	assert.DeepEqual(t, "accepted in arrival order", shared.Stats.AcceptedOrders, uint64(2))
	assert.DeepEqual(t, "refused in arrival order", shared.Stats.RefusedOrders, uint64(1))

	// the least-slack-first flush admits all three
	shared, batcher = newTestEngine(t, store, true)
	var orders []Order
	for _, line := range batch {
		orders = append(orders, mustParseOrder(t, line))
	}
	batcher.Flush(orders)
	assert.DeepEqual(t, "accepted least-slack-first", shared.Stats.AcceptedOrders, uint64(3))
	assert.DeepEqual(t, "refused least-slack-first", shared.Stats.RefusedOrders, uint64(0))
}

func TestRunFlushesOnBatchSize(t *testing.T) {
	store := &staticStore{
		clients:  []db.ClientRow{{ID: 530080, Distance: 5}},
		pizzas:   []db.PizzaRow{{Name: "Reine", Size: "G", Composition: "PT,R", ProductionTime: 10, Price: 11}},
		stations: []db.StationRow{{ID: 1, Capacity: 30, Oper: true}},
	}
	shared, batcher := newTestEngine(t, store, true)

	datagrams := make(chan string, 8)
	batcher.Datagrams = datagrams
	batcher.BatchSize = 4
	batcher.BatchTimeout = time.Hour // never fires in this test

	datagrams <- "24/08/2026 10:00:00,530080,Reine,G,1,11:00"
	datagrams <- "not,a,valid,record" // discarded, does not count towards the batch
	datagrams <- "24/08/2026 10:00:00,530080,Reine,G,1,11:00"
	datagrams <- "24/08/2026 10:00:00,530080,Reine,G,1,11:00"
	datagrams <- "24/08/2026 10:00:00,530080,Reine,G,1,11:00"
	close(datagrams)

	// the 4th valid order completes the batch and triggers the flush; the
	// closed channel then ends the loop
	batcher.Run(context.Background())

	shared.Mutex.Lock()
	defer shared.Mutex.Unlock()
	assert.DeepEqual(t, "accepted", shared.Stats.AcceptedOrders, uint64(4))
	assert.DeepEqual(t, "refused", shared.Stats.RefusedOrders, uint64(0))
}

func TestRunFlushesOnTimeout(t *testing.T) {
	store := &staticStore{
		clients:  []db.ClientRow{{ID: 530080, Distance: 5}},
		pizzas:   []db.PizzaRow{{Name: "Reine", Size: "G", Composition: "PT,R", ProductionTime: 10, Price: 11}},
		stations: []db.StationRow{{ID: 1, Capacity: 30, Oper: true}},
	}
	shared, batcher := newTestEngine(t, store, true)

	datagrams := make(chan string, 1)
	batcher.Datagrams = datagrams
	batcher.BatchSize = 100 // never reached in this test
	batcher.BatchTimeout = 10 * time.Millisecond
	batcher.TimeNow = time.Now

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		batcher.Run(ctx)
	}()

	datagrams <- "24/08/2026 10:00:00,530080,Reine,G,1,23:59"

	// a single buffered order must flush once the batch timeout elapses
	deadline := time.Now().Add(5 * time.Second)
	for {
		shared.Mutex.Lock()
		accepted := shared.Stats.AcceptedOrders
		shared.Mutex.Unlock()
		if accepted == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the batch timeout flush")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-done
}
