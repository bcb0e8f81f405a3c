// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package websocket

import (
	"context"
	"testing"

	"github.com/tomtom215/chaimap/internal/discovery"
	"github.com/tomtom215/chaimap/internal/mapview"
	"github.com/tomtom215/chaimap/internal/models"
)

type fakeSnapshots struct {
	ch   chan uint64
	snap *mapview.Snapshot
}

func (f *fakeSnapshots) Subscribe() (<-chan uint64, func()) {
	return f.ch, func() {}
}

func (f *fakeSnapshots) Snapshot() *mapview.Snapshot {
	return f.snap
}

func TestNewSnapshotUpdate(t *testing.T) {
	snap := &mapview.Snapshot{
		Version:      4,
		Spots:        []models.Spot{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Displayed:    []models.Spot{{ID: "c"}, {ID: "a"}},
		Personalized: map[string]struct{}{"c": {}, "a": {}},
		Viewport:     models.NewViewport(37.77, -122.42, 0.1, 0.1),
		Filter:       discovery.DefaultFilter(),
		Order:        models.SortName,
		Query:        "masala",
	}

	u := NewSnapshotUpdate(snap)
	if u.Version != 4 || u.SpotCount != 3 {
		t.Errorf("update = %+v", u)
	}
	if len(u.DisplayedIDs) != 2 || u.DisplayedIDs[0] != "c" || u.DisplayedIDs[1] != "a" {
		t.Errorf("DisplayedIDs = %v, want display order [c a]", u.DisplayedIDs)
	}
	if len(u.PersonalizedIDs) != 2 || u.PersonalizedIDs[0] != "a" || u.PersonalizedIDs[1] != "c" {
		t.Errorf("PersonalizedIDs = %v, want sorted [a c]", u.PersonalizedIDs)
	}
	if u.Query != "masala" || u.Order != models.SortName {
		t.Errorf("controls = %q %v", u.Query, u.Order)
	}
}

func TestBridge_BroadcastsEachVersion(t *testing.T) {
	hub := NewHub(DefaultConfig())
	runHub(t, hub)
	client := newTestClient(hub, 4)
	hub.Register <- client
	waitForClients(t, hub, 1)

	source := &fakeSnapshots{
		ch:   make(chan uint64, 1),
		snap: &mapview.Snapshot{Version: 9, Personalized: map[string]struct{}{}},
	}
	bridge := NewBridge(hub, source)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bridge.Serve(ctx) }()

	source.ch <- 9
	msg, ok := receive(t, client)
	if !ok || msg.Type != MessageTypeSnapshotUpdated {
		t.Fatalf("message = %+v, ok=%v", msg, ok)
	}
	update, isUpdate := msg.Data.(SnapshotUpdate)
	if !isUpdate || update.Version != 9 {
		t.Errorf("data = %#v, want SnapshotUpdate version 9", msg.Data)
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}
