// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

// Package scheduler implements the per-station capacity-over-time model and
// the earliest-completion-time assignment policy on top of it.
package scheduler

import (
	"slices"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/mohae/deepcopy"
	"github.com/sapcc/go-bits/must"

	"github.com/meline-schndr/networking-project/internal/db"
)

// Task is a committed production interval on a station. Once committed, its
// fields never change; it disappears only through the housekeeping sweep.
type Task struct {
	ID        string    `json:"id"`
	Quantity  int       `json:"quantity"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	PizzaName string    `json:"pizza_name"`
	PizzaSize string    `json:"pizza_size"`
}

// Station is a bounded-capacity parallel production unit. A task occupies
// Quantity slots for the whole of [StartTime, EndTime).
//
// Station is not safe for concurrent use; the Manager owns all stations and
// inherits the engine-wide serialization from its callers.
type Station struct {
	ID          int64
	MaxCapacity int
	Available   bool
	// SupportedSize restricts the station to one pizza size; "" and "-"
	// both mean that any size is accepted.
	SupportedSize string
	// Restrictions is the set of pizza names that must not be produced here.
	Restrictions map[string]bool

	planning []Task
}

// NewStation builds a Station from its catalog row.
func NewStation(row db.StationRow) *Station {
	restrictions := make(map[string]bool)
	for _, token := range strings.Split(row.Restrictions, ",") {
		token = strings.TrimSpace(token)
		if token != "" && token != "---" {
			restrictions[token] = true
		}
	}
	return &Station{
		ID:            row.ID,
		MaxCapacity:   int(row.Capacity),
		Available:     row.Oper,
		SupportedSize: row.Size,
		Restrictions:  restrictions,
	}
}

// Accepts reports whether this station may produce the given order at all,
// regardless of current load.
func (s *Station) Accepts(pizzaName, pizzaSize string, quantity int) bool {
	switch {
	case !s.Available:
		return false
	case s.Restrictions[pizzaName]:
		return false
	case s.SupportedSize != "" && s.SupportedSize != "-" && pizzaSize != s.SupportedSize:
		return false
	case quantity > s.MaxCapacity:
		// orders are never split across stations or time slices
		return false
	}
	return true
}

// LoadAt returns the number of slots occupied at instant t. Task intervals
// are half-open: the start instant counts, the end instant does not.
func (s *Station) LoadAt(t time.Time) int {
	load := 0
	for _, task := range s.planning {
		if !t.Before(task.StartTime) && t.Before(task.EndTime) {
			load += task.Quantity
		}
	}
	return load
}

// checkInterval reports whether a task of the given quantity fits into
// [start, end) without ever exceeding MaxCapacity. Load is piecewise-constant
// and only increases at task starts, so it suffices to probe the interval
// start and every committed task start strictly inside the interval.
func (s *Station) checkInterval(start, end time.Time, quantity int) bool {
	if s.LoadAt(start)+quantity > s.MaxCapacity {
		return false
	}
	for _, task := range s.planning {
		if task.StartTime.After(start) && task.StartTime.Before(end) {
			if s.LoadAt(task.StartTime)+quantity > s.MaxCapacity {
				return false
			}
		}
	}
	return true
}

// EarliestStart returns the earliest instant not before `now` at which a
// task of the given quantity and duration can start on this station, or
// false if the station cannot take it at all.
//
// Candidate starts are `now` itself and the end of each committed task.
// Candidates other than `now` are nudged one second into the future so that
// the probe lands strictly after the boundary of the task that just freed
// its slots.
func (s *Station) EarliestStart(pizzaName, pizzaSize string, quantity int, duration time.Duration, now time.Time) (time.Time, bool) {
	if !s.Accepts(pizzaName, pizzaSize, quantity) {
		return time.Time{}, false
	}

	candidates := []time.Time{now}
	for _, task := range s.planning {
		if task.EndTime.After(now) {
			candidates = append(candidates, task.EndTime)
		}
	}
	slices.SortFunc(candidates, time.Time.Compare)

	for _, candidate := range candidates {
		start := candidate
		if !candidate.Equal(now) {
			start = candidate.Add(1 * time.Second)
		}
		if s.checkInterval(start, start.Add(duration), quantity) {
			return start, true
		}
	}
	return time.Time{}, false
}

// Assign commits a task starting at `start`. The caller must have verified
// feasibility through EarliestStart beforehand.
func (s *Station) Assign(pizzaName, pizzaSize string, quantity int, duration time.Duration, start time.Time) Task {
	task := Task{
		ID:        must.Return(uuid.NewV4()).String(),
		Quantity:  quantity,
		StartTime: start,
		EndTime:   start.Add(duration),
		PizzaName: pizzaName,
		PizzaSize: pizzaSize,
	}
	s.planning = append(s.planning, task)
	return task
}

// Housekeep discards tasks that have fully ended. This bounds the planning
// length by the in-flight horizon.
func (s *Station) Housekeep(now time.Time) {
	s.planning = slices.DeleteFunc(s.planning, func(task Task) bool {
		return !task.EndTime.After(now)
	})
}

// Planning returns an independent copy of the committed tasks, e.g. for the
// dashboard snapshot.
func (s *Station) Planning() []Task {
	if len(s.planning) == 0 {
		return nil
	}
	return deepcopy.Copy(s.planning).([]Task)
}
