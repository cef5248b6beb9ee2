// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"slices"
	"sort"
	"time"

	"github.com/meline-schndr/networking-project/internal/db"
)

// Assignment describes a committed station reservation.
type Assignment struct {
	StationID int64
	TaskID    string
	StartTime time.Time
	EndTime   time.Time
}

// StationStatus is the read-only view of one station for the dashboard.
type StationStatus struct {
	ID           int64    `json:"id"`
	Available    bool     `json:"available"`
	MaxCapacity  int      `json:"max_capacity"`
	CurrentLoad  int      `json:"current_load"`
	Size         string   `json:"size"`
	Restrictions []string `json:"restrictions"`
	Tasks        []Task   `json:"tasks,omitempty"`
}

// Manager owns the set of stations and implements the assignment policy:
// minimum completion time subject to the production deadline, ties broken by
// ascending station ID.
//
// Like the stations it owns, Manager expects external serialization through
// the engine-wide mutex.
type Manager struct {
	// Usually time.Now, but can be changed inside unit tests.
	TimeNow func() time.Time

	stations []*Station
}

// NewManager builds a Manager from the given station layout.
func NewManager(rows []db.StationRow) *Manager {
	stations := make([]*Station, len(rows))
	for i, row := range rows {
		stations[i] = NewStation(row)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return &Manager{
		TimeNow:  time.Now,
		stations: stations,
	}
}

// FindAndAssign either atomically reserves a station slot whose end time
// respects the production deadline, or reports false without committing
// anything. There is no retry at this layer.
func (m *Manager) FindAndAssign(pizzaName, pizzaSize string, quantity int, duration time.Duration, deadline time.Time) (Assignment, bool) {
	now := m.TimeNow()
	m.HousekeepAll(now)

	var (
		best      *Station
		bestStart time.Time
		bestEnd   time.Time
	)
	for _, station := range m.stations {
		start, ok := station.EarliestStart(pizzaName, pizzaSize, quantity, duration, now)
		if !ok {
			continue
		}
		end := start.Add(duration)
		if end.After(deadline) {
			continue
		}
		// strict < keeps the lowest station ID on ties
		if best == nil || end.Before(bestEnd) {
			best, bestStart, bestEnd = station, start, end
		}
	}
	if best == nil {
		return Assignment{}, false
	}

	task := best.Assign(pizzaName, pizzaSize, quantity, duration, bestStart)
	return Assignment{
		StationID: best.ID,
		TaskID:    task.ID,
		StartTime: task.StartTime,
		EndTime:   task.EndTime,
	}, true
}

// HousekeepAll discards ended tasks on all stations.
func (m *Manager) HousekeepAll(now time.Time) {
	for _, station := range m.stations {
		station.Housekeep(now)
	}
}

// Snapshot assembles the dashboard view of all stations.
func (m *Manager) Snapshot() []StationStatus {
	now := m.TimeNow()
	result := make([]StationStatus, len(m.stations))
	for i, station := range m.stations {
		restrictions := make([]string, 0, len(station.Restrictions))
		for name := range station.Restrictions {
			restrictions = append(restrictions, name)
		}
		slices.Sort(restrictions)
		result[i] = StationStatus{
			ID:           station.ID,
			Available:    station.Available,
			MaxCapacity:  station.MaxCapacity,
			CurrentLoad:  station.LoadAt(now),
			Size:         station.SupportedSize,
			Restrictions: restrictions,
			Tasks:        station.Planning(),
		}
	}
	return result
}

// Stations exposes the stations in ID order for metrics collection.
func (m *Manager) Stations() []*Station {
	return m.stations
}
