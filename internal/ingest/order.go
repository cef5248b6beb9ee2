// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

// Package ingest contains the order wire format and the batching front-end
// that feeds the scheduler.
package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// wire format of the first CSV field
	orderTimestampFormat = "02/01/2006 15:04:05"
	// wire format of the last CSV field
	deliveryClockFormat = "15:04"
)

// Order is one parsed wire record. It is transient: it lives for at most one
// batch cycle.
type Order struct {
	// Timestamp is the order time as claimed by the producer, or the arrival
	// time if that field was unparseable.
	Timestamp time.Time
	ClientID  int64
	PizzaName string
	PizzaSize string
	Quantity  int

	// DeliveryClock is the raw "HH:MM" field, kept for log messages.
	DeliveryClock string
	deliveryHour  int
	deliveryMin   int
	deliveryValid bool
}

// ParseOrder parses one datagram payload. A returned error means the record
// is malformed beyond repair (wrong field count, non-numeric fields) and must
// be discarded. An invalid delivery clock-time does NOT produce an error:
// such orders are refused later with a proper reason and counter update.
func ParseOrder(line string, now time.Time) (Order, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 6 {
		return Order{}, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}

	clientID, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return Order{}, fmt.Errorf("invalid client ID %q", fields[1])
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil || quantity <= 0 {
		return Order{}, fmt.Errorf("invalid quantity %q", fields[4])
	}

	timestamp, err := time.ParseInLocation(orderTimestampFormat, strings.TrimSpace(fields[0]), now.Location())
	if err != nil {
		// the producer's clock field is advisory; fall back to arrival time
		timestamp = now
	}

	order := Order{
		Timestamp:     timestamp,
		ClientID:      clientID,
		PizzaName:     strings.TrimSpace(fields[2]),
		PizzaSize:     strings.TrimSpace(fields[3]),
		Quantity:      quantity,
		DeliveryClock: strings.TrimSpace(fields[5]),
	}
	clock, err := time.Parse(deliveryClockFormat, order.DeliveryClock)
	if err == nil {
		order.deliveryHour = clock.Hour()
		order.deliveryMin = clock.Minute()
		order.deliveryValid = true
	}
	return order, nil
}

// DeliveryDeadline converts the wall-clock delivery time into an absolute
// instant: the timestamp's date at HH:MM, moved one day forward if that
// instant already lies in the past (past-midnight wrap). Returns false for
// an invalid clock-time field.
func (o Order) DeliveryDeadline() (time.Time, bool) {
	if !o.deliveryValid {
		return time.Time{}, false
	}
	t := o.Timestamp
	candidate := time.Date(t.Year(), t.Month(), t.Day(), o.deliveryHour, o.deliveryMin, 0, 0, t.Location())
	if candidate.Before(t) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, true
}

// TimeBeforeDelivery returns how much time lies between the order and its
// delivery deadline.
func (o Order) TimeBeforeDelivery() (time.Duration, bool) {
	deadline, ok := o.DeliveryDeadline()
	if !ok {
		return 0, false
	}
	return deadline.Sub(o.Timestamp), true
}

func (o Order) String() string {
	return fmt.Sprintf("%dx %s (%s) for client %d, wanted at %s",
		o.Quantity, o.PizzaName, o.PizzaSize, o.ClientID, o.DeliveryClock)
}
