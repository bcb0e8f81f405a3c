// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package websocket

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/chaimap/internal/discovery"
	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/mapview"
	"github.com/tomtom215/chaimap/internal/models"
)

// SnapshotSource publishes map snapshots. *mapview.Map satisfies it.
type SnapshotSource interface {
	Subscribe() (<-chan uint64, func())
	Snapshot() *mapview.Snapshot
}

// SnapshotUpdate is the payload of a snapshot_updated message.
type SnapshotUpdate struct {
	Version         uint64           `json:"version"`
	SpotCount       int              `json:"spotCount"`
	DisplayedIDs    []string         `json:"displayedIds"`
	PersonalizedIDs []string         `json:"personalizedIds"`
	Viewport        models.Viewport  `json:"viewport"`
	Filter          discovery.Filter `json:"filter"`
	Order           models.SortOrder `json:"sortOrder"`
	Query           string           `json:"query"`
	Degraded        bool             `json:"degraded"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// NewSnapshotUpdate summarizes a snapshot for clients.
func NewSnapshotUpdate(s *mapview.Snapshot) SnapshotUpdate {
	personalized := make([]string, 0, len(s.Personalized))
	for id := range s.Personalized {
		personalized = append(personalized, id)
	}
	sort.Strings(personalized)

	return SnapshotUpdate{
		Version:         s.Version,
		SpotCount:       len(s.Spots),
		DisplayedIDs:    models.SpotIDs(s.Displayed),
		PersonalizedIDs: personalized,
		Viewport:        s.Viewport,
		Filter:          s.Filter,
		Order:           s.Order,
		Query:           s.Query,
		Degraded:        s.Degraded,
		UpdatedAt:       s.UpdatedAt,
	}
}

// Bridge broadcasts every new map snapshot through a hub.
type Bridge struct {
	hub    *Hub
	source SnapshotSource
	logger zerolog.Logger
}

// NewBridge connects source to hub. Run it with Serve.
func NewBridge(hub *Hub, source SnapshotSource) *Bridge {
	return &Bridge{
		hub:    hub,
		source: source,
		logger: logging.WithComponent("websocket-bridge"),
	}
}

// Serve implements suture.Service.
func (b *Bridge) Serve(ctx context.Context) error {
	versions, unsubscribe := b.source.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-versions:
			snap := b.source.Snapshot()
			b.hub.BroadcastJSON(MessageTypeSnapshotUpdated, NewSnapshotUpdate(snap))
			b.logger.Debug().Uint64("version", snap.Version).Msg("broadcast snapshot_updated")
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (b *Bridge) String() string {
	return "websocket-bridge"
}
