// SPDX-FileCopyrightText: 2026 networking-project contributors
// SPDX-License-Identifier: Apache-2.0

// Package api contains the read-only operator dashboard: order counters,
// ingredient tallies and the current station load.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/respondwith"

	"github.com/meline-schndr/networking-project/internal/core"
	"github.com/meline-schndr/networking-project/internal/scheduler"
)

type v1Provider struct {
	Shared      *core.Context
	WebAssetDir string
}

// NewV1API creates an httpapi.API that serves the dashboard endpoints.
func NewV1API(shared *core.Context, webAssetDir string) httpapi.API {
	return &v1Provider{Shared: shared, WebAssetDir: webAssetDir}
}

// AddTo implements the httpapi.API interface.
func (p *v1Provider) AddTo(r *mux.Router) {
	r.Methods("GET").Path("/api/stats").HandlerFunc(p.GetStats)
	r.Methods("HEAD", "GET").PathPrefix("/").HandlerFunc(p.GetStaticAsset)
}

// StatsResponse is the response payload of GET /api/stats.
type StatsResponse struct {
	Stats    StatsCounters             `json:"stats"`
	Stations []scheduler.StationStatus `json:"stations"`
}

// StatsCounters appears in type StatsResponse.
type StatsCounters struct {
	Accepted    uint64            `json:"accepted"`
	Refused     uint64            `json:"refused"`
	Ingredients map[string]uint64 `json:"ingredients"`
}

// GetStats handles GET /api/stats.
func (p *v1Provider) GetStats(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/api/stats")

	p.Shared.Mutex.Lock()
	ingredients := make(map[string]uint64, len(p.Shared.Stats.Ingredients))
	for token, count := range p.Shared.Stats.Ingredients {
		ingredients[token] = count
	}
	response := StatsResponse{
		Stats: StatsCounters{
			Accepted:    p.Shared.Stats.AcceptedOrders,
			Refused:     p.Shared.Stats.RefusedOrders,
			Ingredients: ingredients,
		},
		Stations: p.Shared.Manager.Snapshot(),
	}
	p.Shared.Mutex.Unlock()

	respondwith.JSON(w, http.StatusOK, response)
}
