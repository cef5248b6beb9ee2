// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sapcc/go-bits/jobloop"
)

// how long to wait between background sweeps of ended tasks
const housekeepingInterval = 30 * time.Second

// HousekeepingJob is a jobloop.Job. Each run discards ended tasks on all
// stations and refreshes the station load gauges, so that planning length
// and metrics stay bounded even while no orders arrive. Assignment attempts
// additionally housekeep inline, so this job is about idle periods only.
func (c *Context) HousekeepingJob(registerer prometheus.Registerer) jobloop.Job {
	return (&jobloop.CronJob{
		Metadata: jobloop.JobMetadata{
			ReadableName: "station housekeeping",
			CounterOpts: prometheus.CounterOpts{
				Name: "pizzeria_housekeeping_runs",
				Help: "Counter for background station housekeeping runs.",
			},
		},
		Interval: housekeepingInterval,
		Task: func(_ context.Context, _ prometheus.Labels) error {
			c.Mutex.Lock()
			defer c.Mutex.Unlock()
			c.Manager.HousekeepAll(c.Manager.TimeNow())
			c.UpdateStationLoadGauge()
			return nil
		},
	}).Setup(registerer)
}
