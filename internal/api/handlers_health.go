// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package api

import (
	"net/http"
	"time"
)

// HealthStatus reports liveness and data freshness.
type HealthStatus struct {
	Status           string     `json:"status"`
	SnapshotVersion  uint64     `json:"snapshotVersion"`
	SpotCount        int        `json:"spotCount"`
	Degraded         bool       `json:"degraded"`
	LastReload       *time.Time `json:"lastReload,omitempty"`
	WebSocketClients int        `json:"websocketClients"`
	Uptime           float64    `json:"uptime"`
}

// Health handles health check requests. It always answers 200; Status is
// "degraded" when the last reload could not read every source and
// "starting" before the first reload.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()

	status := "healthy"
	switch {
	case snap.Degraded:
		status = "degraded"
	case snap.LoadedAt.IsZero():
		status = "starting"
	}

	var lastReload *time.Time
	if !snap.LoadedAt.IsZero() {
		loaded := snap.LoadedAt
		lastReload = &loaded
	}

	clients := 0
	if h.wsHub != nil {
		clients = h.wsHub.GetClientCount()
	}

	respondData(w, http.StatusOK, HealthStatus{
		Status:           status,
		SnapshotVersion:  snap.Version,
		SpotCount:        len(snap.Spots),
		Degraded:         snap.Degraded,
		LastReload:       lastReload,
		WebSocketClients: clients,
		Uptime:           time.Since(h.startTime).Seconds(),
	}, snap.Version)
}
