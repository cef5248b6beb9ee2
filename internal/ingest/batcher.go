// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sapcc/go-bits/logg"

	"github.com/meline-schndr/networking-project/internal/core"
)

const (
	// DefaultBatchSize is how many orders are accumulated before a flush is
	// forced.
	DefaultBatchSize = 4
	// DefaultBatchTimeout bounds how long the oldest buffered order may wait
	// for its batch to fill up. This is also the worst-case admission latency.
	DefaultBatchTimeout = 12 * time.Second

	// production time assumed for pizzas not in the catalog; the resulting
	// deeply negative slack sorts such orders to the front of the batch,
	// where the refill attempt happens before any capacity is given away
	unknownPizzaProductionTime = 999 * time.Minute
)

// refusal reasons, as logged and as `reason` label on the refusal counter
const (
	ReasonBadDeadline   = "bad deadline format"
	ReasonUnknownClient = "unknown client"
	ReasonUnknownPizza  = "unknown pizza"
	ReasonNoStation     = "no feasible station"
)

// Batcher accumulates bursty arrivals into bounded batches and submits each
// batch in least-slack-time-first order. Reordering only ever happens within
// one batch; batches commit strictly in arrival order.
type Batcher struct {
	Shared       *core.Context
	Datagrams    <-chan string
	BatchSize    int
	BatchTimeout time.Duration
	// Usually time.Now, but can be changed inside unit tests.
	TimeNow func() time.Time
}

// NewBatcher builds a Batcher with the default parameters.
func NewBatcher(shared *core.Context, datagrams <-chan string) *Batcher {
	return &Batcher{
		Shared:       shared,
		Datagrams:    datagrams,
		BatchSize:    DefaultBatchSize,
		BatchTimeout: DefaultBatchTimeout,
		TimeNow:      time.Now,
	}
}

// Run is the order agent's main loop. It returns when ctx expires or the
// datagram channel is closed; a buffered batch that has not flushed by then
// is discarded.
func (b *Batcher) Run(ctx context.Context) {
	var (
		buffer       []Order
		firstArrival time.Time
	)
	for {
		// wait budget: indefinitely while the buffer is empty, otherwise
		// whatever remains of the batch timeout
		var timeout <-chan time.Time
		var timer *time.Timer
		if len(buffer) > 0 {
			wait := b.BatchTimeout - b.TimeNow().Sub(firstArrival)
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
			timeout = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if len(buffer) > 0 {
				logg.Info("discarding %d unflushed buffered orders on shutdown", len(buffer))
			}
			return
		case line, ok := <-b.Datagrams:
			if timer != nil {
				timer.Stop()
			}
			if !ok {
				return
			}
			order, err := ParseOrder(line, b.TimeNow())
			if err != nil {
				logg.Error("discarding malformed order datagram: %s", err.Error())
				core.DiscardedDatagramsCounter.Inc()
				break
			}
			if len(buffer) == 0 {
				firstArrival = b.TimeNow()
			}
			buffer = append(buffer, order)
		case <-timeout:
		}

		if len(buffer) >= b.BatchSize || (len(buffer) > 0 && b.TimeNow().Sub(firstArrival) >= b.BatchTimeout) {
			b.Flush(buffer)
			buffer = nil
		}
	}
}

// Flush submits one batch: sort by least slack time, then run each order
// through refill, feasibility and commit. The engine-wide mutex is held for
// the whole batch, so capacity reservations are strongly consistent with the
// dashboard's view.
func (b *Batcher) Flush(orders []Order) {
	if len(orders) == 0 {
		return
	}
	b.Shared.Mutex.Lock()
	defer b.Shared.Mutex.Unlock()

	b.sortBySlack(orders)
	logg.Debug("flushing batch of %d orders", len(orders))
	for _, order := range orders {
		b.processOrder(order)
	}
	b.Shared.UpdateStationLoadGauge()
}

// sortBySlack orders the batch by slack ascending. The sort is stable, so
// orders with equal slack keep their arrival order. Caller must hold the
// shared mutex (slack computation reads the catalog).
func (b *Batcher) sortBySlack(orders []Order) {
	type keyedOrder struct {
		order Order
		slack time.Duration
	}
	keyed := make([]keyedOrder, len(orders))
	for i, order := range orders {
		keyed[i] = keyedOrder{order, b.slackOf(order)}
	}
	sort.SliceStable(keyed, func(i, j int) bool { return keyed[i].slack < keyed[j].slack })
	for i, k := range keyed {
		orders[i] = k.order
	}
}

// slackOf estimates how much schedule slack an order has: the time available
// until its deadline minus the travel and production time it needs. Orders
// referencing unknown catalog entries use pessimistic defaults here, but they
// are never skipped outright: processing will still attempt a refill for them.
func (b *Batcher) slackOf(order Order) time.Duration {
	available, ok := order.TimeBeforeDelivery()
	if !ok {
		// unparseable deadline: process last, refuse there with a reason
		return math.MaxInt64
	}
	travel := time.Duration(0)
	if client, ok := b.Shared.Catalog.ClientIfKnown(order.ClientID); ok {
		travel = client.Travel
	}
	production := unknownPizzaProductionTime
	if pizza, ok := b.Shared.Catalog.PizzaIfKnown(order.PizzaName, order.PizzaSize); ok {
		production = pizza.ProductionTime
	}
	return available - travel - production
}

// processOrder runs refill, feasibility check and commit for one order.
// Caller must hold the shared mutex.
func (b *Batcher) processOrder(order Order) {
	shared := b.Shared

	refuse := func(reason string) {
		shared.Stats.RefusedOrders++
		core.RefusedOrdersCounter.WithLabelValues(reason).Inc()
		logg.Info("order refused (%s): %s", order.String(), reason)
	}

	deadline, ok := order.DeliveryDeadline()
	if !ok {
		refuse(ReasonBadDeadline)
		return
	}
	client, ok := shared.Catalog.ClientByID(order.ClientID)
	if !ok {
		refuse(ReasonUnknownClient)
		return
	}
	pizza, ok := shared.Catalog.PizzaByNameSize(order.PizzaName, order.PizzaSize)
	if !ok {
		refuse(ReasonUnknownPizza)
		return
	}

	// the production deadline is when the delivery driver has to leave
	productionDeadline := deadline.Add(-client.Travel)
	assignment, ok := shared.Manager.FindAndAssign(pizza.Name, pizza.Size, order.Quantity, pizza.ProductionTime, productionDeadline)
	if !ok {
		refuse(ReasonNoStation)
		return
	}

	shared.Stats.AcceptedOrders++
	core.AcceptedOrdersCounter.Inc()
	tallyIngredients(shared, pizza.Composition, order.Quantity)
	logg.Info("order accepted (%s): station %d, production ends at %s",
		order.String(), assignment.StationID, assignment.EndTime.Format("15:04:05"))
}

// tallyIngredients counts the R/J/V/B tokens of the pizza's composition,
// once per ordered pizza. All other characters of the encoding are layout.
func tallyIngredients(shared *core.Context, composition string, quantity int) {
	for _, r := range composition {
		switch r {
		case 'R', 'J', 'V', 'B':
			token := string(r)
			shared.Stats.Ingredients[token] += uint64(quantity)
			core.IngredientsCounter.WithLabelValues(token).Add(float64(quantity))
		}
	}
}
