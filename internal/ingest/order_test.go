// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"testing"
	"time"

	"github.com/sapcc/go-bits/assert"
)

func TestParseOrder(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	order, err := ParseOrder("24/08/2026 10:00:00,530080,Reine,G,2,10:45", now)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err.Error())
	}
	assert.DeepEqual(t, "timestamp", order.Timestamp, now)
	assert.DeepEqual(t, "client ID", order.ClientID, int64(530080))
	assert.DeepEqual(t, "pizza name", order.PizzaName, "Reine")
	assert.DeepEqual(t, "pizza size", order.PizzaSize, "G")
	assert.DeepEqual(t, "quantity", order.Quantity, 2)

	deadline, ok := order.DeliveryDeadline()
	assert.DeepEqual(t, "deadline is valid", ok, true)
	assert.DeepEqual(t, "deadline", deadline, now.Add(45*time.Minute))

	available, ok := order.TimeBeforeDelivery()
	assert.DeepEqual(t, "available is valid", ok, true)
	assert.DeepEqual(t, "available", available, 45*time.Minute)

	// surrounding whitespace on fields is tolerated
	order, err = ParseOrder(" 24/08/2026 10:00:00 , 42 , Calzone , M , 1 , 11:30 \n", now)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err.Error())
	}
	assert.DeepEqual(t, "trimmed client ID", order.ClientID, int64(42))
	assert.DeepEqual(t, "trimmed pizza name", order.PizzaName, "Calzone")
}

func TestParseOrderRejectsMalformedRecords(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	for _, line := range []string{
		// wrong field count
		"",
		"24/08/2026 10:00:00,530080,Reine,G,2",
		"24/08/2026 10:00:00,530080,Reine,G,2,10:45,extra",
		// non-numeric client ID or quantity
		"24/08/2026 10:00:00,not-a-number,Reine,G,2,10:45",
		"24/08/2026 10:00:00,530080,Reine,G,many,10:45",
		// non-positive quantity
		"24/08/2026 10:00:00,530080,Reine,G,0,10:45",
		"24/08/2026 10:00:00,530080,Reine,G,-3,10:45",
	} {
		_, err := ParseOrder(line, now)
		if err == nil {
			t.Errorf("expected parse error for %q", line)
		}
	}
}

func TestParseOrderTimestampFallback(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	// an unparseable timestamp field falls back to the arrival time instead
	// of discarding the record
	order, err := ParseOrder("yesterday-ish,530080,Reine,G,2,10:45", now)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err.Error())
	}
	assert.DeepEqual(t, "fallback timestamp", order.Timestamp, now)
}

func TestParseOrderBadDeliveryClock(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	// a broken delivery clock-time is NOT a parse error: the order enters
	// the batch and is refused there with a proper reason
	order, err := ParseOrder("24/08/2026 10:00:00,530080,Reine,G,2,25:99", now)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err.Error())
	}
	_, ok := order.DeliveryDeadline()
	assert.DeepEqual(t, "deadline is invalid", ok, false)
	_, ok = order.TimeBeforeDelivery()
	assert.DeepEqual(t, "available is invalid", ok, false)
}

func TestDeliveryDeadlinePastMidnight(t *testing.T) {
	// an order placed at 23:55 for delivery at 00:10 means ten past midnight
	// of the NEXT day, i.e. 15 minutes away
	now := time.Date(2026, 8, 24, 23, 55, 0, 0, time.UTC)
	order, err := ParseOrder("24/08/2026 23:55:00,530080,Reine,G,2,00:10", now)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err.Error())
	}

	deadline, ok := order.DeliveryDeadline()
	assert.DeepEqual(t, "deadline is valid", ok, true)
	assert.DeepEqual(t, "deadline", deadline, time.Date(2026, 8, 25, 0, 10, 0, 0, time.UTC))

	available, ok := order.TimeBeforeDelivery()
	assert.DeepEqual(t, "available is valid", ok, true)
	assert.DeepEqual(t, "available", available, 15*time.Minute)
}
