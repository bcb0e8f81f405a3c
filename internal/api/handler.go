// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package api

import (
	"context"
	"time"

	"github.com/tomtom215/chaimap/internal/discovery"
	"github.com/tomtom215/chaimap/internal/mapview"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/recommend"
	"github.com/tomtom215/chaimap/internal/repository"
	ws "github.com/tomtom215/chaimap/internal/websocket"
)

// MapState is the state holder the handlers read from and command.
// *mapview.Map satisfies it.
type MapState interface {
	Snapshot() *mapview.Snapshot
	Evaluate(spotID string) (recommend.Result, bool)

	Reload(ctx context.Context) error
	RefreshPersonalization(ctx context.Context) error

	SetFilter(ctx context.Context, f discovery.Filter) error
	SetSortOrder(ctx context.Context, order models.SortOrder) error
	Search(ctx context.Context, text string) error

	FitToAll(ctx context.Context) (bool, error)
	FitToSubset(ctx context.Context, ids []string) (bool, error)
	FitToPersonalized(ctx context.Context) (bool, error)
	UpdateLocation(ctx context.Context, c models.Coordinate) (bool, error)
	UserPanned(ctx context.Context, vp models.Viewport) error

	CreateSpot(ctx context.Context, in repository.NewSpot) (string, error)
	CreateRating(ctx context.Context, in repository.NewRating) (string, error)
}

// Handler serves the API routes.
type Handler struct {
	state     MapState
	wsHub     *ws.Hub
	startTime time.Time

	// checkOrigin decides websocket upgrades. Nil rejects every origin.
	checkOrigin func(origin string) bool
}

// NewHandler creates a handler over state. hub may be nil, in which case
// websocket upgrades answer 503.
func NewHandler(state MapState, hub *ws.Hub) *Handler {
	return &Handler{
		state:     state,
		wsHub:     hub,
		startTime: time.Now(),
	}
}
