// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AcceptedOrdersCounter counts orders that were committed to a station.
	AcceptedOrdersCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pizzeria_accepted_orders",
		Help: "Counter for orders that were committed to a production station.",
	})
	// RefusedOrdersCounter counts refused orders by refusal reason.
	RefusedOrdersCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pizzeria_refused_orders",
		Help: "Counter for refused orders.",
	}, []string{"reason"})
	// DiscardedDatagramsCounter counts malformed datagrams that never became
	// orders.
	DiscardedDatagramsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pizzeria_discarded_datagrams",
		Help: "Counter for malformed datagrams that could not be parsed into orders.",
	})
	// IngredientsCounter counts consumed ingredient tokens.
	IngredientsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pizzeria_ingredients_used",
		Help: "Counter for consumed ingredient tokens by token.",
	}, []string{"ingredient"})
	// StationLoadGauge reports the current load per station.
	StationLoadGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pizzeria_station_load",
		Help: "Currently occupied slots per production station.",
	}, []string{"station"})
)

// RegisterMetrics registers all engine metrics. Called exactly once from the
// serve task.
func RegisterMetrics(registerer prometheus.Registerer) {
	registerer.MustRegister(
		AcceptedOrdersCounter,
		RefusedOrdersCounter,
		DiscardedDatagramsCounter,
		IngredientsCounter,
		StationLoadGauge,
	)
}

// UpdateStationLoadGauge publishes the current load of all stations. The
// caller must hold c.Mutex.
func (c *Context) UpdateStationLoadGauge() {
	now := c.Manager.TimeNow()
	for _, station := range c.Manager.Stations() {
		StationLoadGauge.WithLabelValues(strconv.FormatInt(station.ID, 10)).Set(float64(station.LoadAt(now)))
	}
}
