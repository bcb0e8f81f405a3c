// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/chaimap/internal/models"
	ws "github.com/tomtom215/chaimap/internal/websocket"
)

func TestSetFilter(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		want     bool
	}{
		{"both set", `{"personalizedOnly":false,"communitySpots":true}`, http.StatusOK, false},
		{"false values are explicit", `{"personalizedOnly":false,"communitySpots":false}`, http.StatusOK, false},
		{"missing field", `{"personalizedOnly":true}`, http.StatusBadRequest, false},
		{"empty body", "", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, testUser)
			res := env.mustDo(http.MethodPut, "/api/v1/filter", tt.body, tt.wantCode)
			if tt.wantCode != http.StatusOK {
				if res.Error == nil {
					t.Fatal("missing error body")
				}
				return
			}
			var update ws.SnapshotUpdate
			decodeData(t, res, &update)
			if update.Filter.PersonalizedOnly != tt.want {
				t.Errorf("personalizedOnly = %v, want %v", update.Filter.PersonalizedOnly, tt.want)
			}
			if env.m.Snapshot().Filter != update.Filter {
				t.Errorf("snapshot filter = %+v, response %+v", env.m.Snapshot().Filter, update.Filter)
			}
		})
	}
}

func TestSetSort(t *testing.T) {
	tests := []struct {
		body     string
		wantCode int
		want     models.SortOrder
	}{
		{`{"order":"name"}`, http.StatusOK, models.SortName},
		{`{"order":"distance"}`, http.StatusOK, models.SortDistance},
		{`{"order":"rating"}`, http.StatusOK, models.SortRating},
		{`{"order":"bogus"}`, http.StatusBadRequest, models.SortPersonalization},
		{`{}`, http.StatusBadRequest, models.SortPersonalization},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			env := newTestEnv(t, testUser)
			env.mustDo(http.MethodPut, "/api/v1/sort", tt.body, tt.wantCode)
			if got := env.m.Snapshot().Order; got != tt.want {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearch_NarrowsDisplayedList(t *testing.T) {
	env := newTestEnv(t, testUser)
	env.seedProfile()
	masala := env.createSpot(masalaSpot)
	env.createSpot(kashmiriSpot)
	env.reload()

	res := env.mustDo(http.MethodPost, "/api/v1/search", `{"query":"masala"}`, http.StatusOK)
	var update ws.SnapshotUpdate
	decodeData(t, res, &update)
	if update.Query != "masala" {
		t.Errorf("query = %q", update.Query)
	}
	if len(update.DisplayedIDs) != 1 || update.DisplayedIDs[0] != masala {
		t.Fatalf("displayed = %v, want [%s]", update.DisplayedIDs, masala)
	}

	res = env.mustDo(http.MethodPost, "/api/v1/search", `{"query":""}`, http.StatusOK)
	decodeData(t, res, &update)
	if len(update.DisplayedIDs) != 2 {
		t.Errorf("displayed after clearing = %v, want both spots", update.DisplayedIDs)
	}
}

func TestFit(t *testing.T) {
	env := newTestEnv(t, testUser)

	res := env.mustDo(http.MethodPost, "/api/v1/viewport/fit", `{}`, http.StatusOK)
	var move MoveResponse
	decodeData(t, res, &move)
	if move.Moved {
		t.Error("fitting an empty set moved the viewport")
	}

	env.seedProfile()
	id := env.createSpot(masalaSpot)
	env.createSpot(kashmiriSpot)
	env.reload()

	res = env.mustDo(http.MethodPost, "/api/v1/viewport/fit", `{"ids":["`+id+`"]}`, http.StatusOK)
	decodeData(t, res, &move)
	if !move.Moved {
		t.Fatal("fitting one spot did not move the viewport")
	}
	if move.Viewport.Center.Latitude != 37.78 || move.Viewport.Center.Longitude != -122.41 {
		t.Errorf("center = %+v, want the spot", move.Viewport.Center)
	}

	res = env.mustDo(http.MethodPost, "/api/v1/viewport/fit", `{"ids":["unknown"]}`, http.StatusOK)
	decodeData(t, res, &move)
	if move.Moved {
		t.Error("fitting unknown ids moved the viewport")
	}
}

func TestInteraction(t *testing.T) {
	env := newTestEnv(t, testUser)

	body := `{"latitude":40.7,"longitude":-74.0,"latitudeDelta":0.2,"longitudeDelta":0.2}`
	res := env.mustDo(http.MethodPost, "/api/v1/viewport/interaction", body, http.StatusOK)
	var vp ViewportResponse
	decodeData(t, res, &vp)
	if !vp.Interacting {
		t.Error("interacting = false right after a gesture")
	}
	if vp.Viewport != models.NewViewport(40.7, -74.0, 0.2, 0.2) {
		t.Errorf("viewport = %+v", vp.Viewport)
	}

	// A location update during the gesture does not recenter.
	res = env.mustDo(http.MethodPost, "/api/v1/location", `{"latitude":37.7,"longitude":-122.4}`, http.StatusOK)
	var move MoveResponse
	decodeData(t, res, &move)
	if move.Moved {
		t.Error("location moved the viewport during a gesture")
	}

	env.mustDo(http.MethodPost, "/api/v1/viewport/interaction",
		`{"latitude":40.7,"longitude":-74.0,"latitudeDelta":0,"longitudeDelta":0.2}`, http.StatusBadRequest)
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantMoved bool
	}{
		{"valid", `{"latitude":37.7,"longitude":-122.4}`, http.StatusOK, true},
		{"latitude out of range", `{"latitude":100,"longitude":-122.4}`, http.StatusBadRequest, false},
		{"missing longitude", `{"latitude":37.7}`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, testUser)
			res := env.mustDo(http.MethodPost, "/api/v1/location", tt.body, tt.wantCode)
			if tt.wantCode != http.StatusOK {
				return
			}
			var move MoveResponse
			decodeData(t, res, &move)
			if move.Moved != tt.wantMoved {
				t.Errorf("moved = %v, want %v", move.Moved, tt.wantMoved)
			}
			if move.Viewport.Center != (models.Coordinate{Latitude: 37.7, Longitude: -122.4}) {
				t.Errorf("center = %+v", move.Viewport.Center)
			}
		})
	}
}

func TestViewport(t *testing.T) {
	env := newTestEnv(t, testUser)
	res := env.mustDo(http.MethodGet, "/api/v1/viewport", "", http.StatusOK)
	var vp ViewportResponse
	decodeData(t, res, &vp)
	if !vp.Viewport.Valid() {
		t.Errorf("viewport = %+v, want a valid default", vp.Viewport)
	}
}

func TestRefreshPersonalization(t *testing.T) {
	env := newTestEnv(t, testUser)
	env.seedProfile()

	res := env.mustDo(http.MethodPost, "/api/v1/personalization/refresh", "", http.StatusOK)
	var update ws.SnapshotUpdate
	decodeData(t, res, &update)
	if update.Degraded {
		t.Error("degraded after a refresh with every input available")
	}
	if env.m.Snapshot().Profile == nil {
		t.Error("profile not loaded")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, testUser)

	var health HealthStatus
	res := env.mustDo(http.MethodGet, "/api/v1/health", "", http.StatusOK)
	decodeData(t, res, &health)
	if health.Status != "starting" {
		t.Errorf("status before reload = %q, want starting", health.Status)
	}

	env.seedProfile()
	env.createSpot(masalaSpot)
	env.reload()

	res = env.mustDo(http.MethodGet, "/api/v1/health", "", http.StatusOK)
	decodeData(t, res, &health)
	if health.Status != "healthy" || health.SpotCount != 1 || health.LastReload == nil {
		t.Errorf("health = %+v, want healthy with one spot", health)
	}

	// Without a profile document the reload degrades.
	unseeded := newTestEnv(t, "someone-else")
	unseeded.reload()
	res = unseeded.mustDo(http.MethodGet, "/api/v1/health", "", http.StatusOK)
	decodeData(t, res, &health)
	if health.Status != "degraded" || !health.Degraded {
		t.Errorf("health = %+v, want degraded", health)
	}
}
