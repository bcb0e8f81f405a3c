// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/models"
	ws "github.com/tomtom215/chaimap/internal/websocket"
)

// Viewport returns the current map region.
func (h *Handler) Viewport(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	respondData(w, http.StatusOK, ViewportResponse{
		Viewport:    snap.Viewport,
		Interacting: snap.Interacting,
	}, snap.Version)
}

// Reload reloads spots and personalization inputs. Source failures degrade
// the snapshot rather than fail the request.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Reload(r.Context()); err != nil {
		respondCommandError(w, r, err)
		return
	}
	h.respondState(w)
}

// RefreshPersonalization reloads the profile and ratings only.
func (h *Handler) RefreshPersonalization(w http.ResponseWriter, r *http.Request) {
	if err := h.state.RefreshPersonalization(r.Context()); err != nil {
		respondCommandError(w, r, err)
		return
	}
	h.respondState(w)
}

// SetFilter replaces both discovery filters.
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.state.SetFilter(r.Context(), req.Filter()); err != nil {
		respondCommandError(w, r, err)
		return
	}
	h.respondState(w)
}

// SetSort changes the sort order.
func (h *Handler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	order, err := models.ParseSortOrder(req.Order)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_SORT_ORDER", err.Error(), nil)
		return
	}
	if err := h.state.SetSortOrder(r.Context(), order); err != nil {
		respondCommandError(w, r, err)
		return
	}
	h.respondState(w)
}

// Search sets the query. The list narrows immediately; the map recenters
// once the geocoder answers.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.state.Search(r.Context(), req.Query); err != nil {
		respondCommandError(w, r, err)
		return
	}
	h.respondState(w)
}

// Fit frames the personalized set, the given ids or every spot.
func (h *Handler) Fit(w http.ResponseWriter, r *http.Request) {
	var req FitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var (
		moved bool
		err   error
	)
	switch {
	case req.Personalized:
		moved, err = h.state.FitToPersonalized(r.Context())
	case len(req.IDs) > 0:
		moved, err = h.state.FitToSubset(r.Context(), req.IDs)
	default:
		moved, err = h.state.FitToAll(r.Context())
	}
	if err != nil {
		respondCommandError(w, r, err)
		return
	}
	h.respondMove(w, moved)
}

// Interaction records a user pan or zoom. Programmatic moves are suppressed
// until the gesture cools down.
func (h *Handler) Interaction(w http.ResponseWriter, r *http.Request) {
	var vp models.Viewport
	if !decodeJSON(w, r, &vp) {
		return
	}
	if !validViewport(vp) {
		respondError(w, http.StatusBadRequest, "INVALID_VIEWPORT", "Viewport is outside the coordinate space", nil)
		return
	}
	if err := h.state.UserPanned(r.Context(), vp); err != nil {
		respondCommandError(w, r, err)
		return
	}
	snap := h.state.Snapshot()
	respondData(w, http.StatusOK, ViewportResponse{
		Viewport:    snap.Viewport,
		Interacting: snap.Interacting,
	}, snap.Version)
}

// Location records the device location and recenters unless the user is
// interacting with the map.
func (h *Handler) Location(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	moved, err := h.state.UpdateLocation(r.Context(), req.Coordinate())
	if err != nil {
		respondCommandError(w, r, err)
		return
	}
	h.respondMove(w, moved)
}

func (h *Handler) respondState(w http.ResponseWriter) {
	snap := h.state.Snapshot()
	respondData(w, http.StatusOK, ws.NewSnapshotUpdate(snap), snap.Version)
}

func (h *Handler) respondMove(w http.ResponseWriter, moved bool) {
	snap := h.state.Snapshot()
	respondData(w, http.StatusOK, MoveResponse{Moved: moved, Viewport: snap.Viewport}, snap.Version)
}

// respondCommandError maps a state holder failure. Commands only fail when
// the request ends or the state holder is not running.
func respondCommandError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		logging.Ctx(r.Context()).Debug().Msg("Client went away before the command finished")
		return
	}
	respondError(w, http.StatusServiceUnavailable, "MAP_UNAVAILABLE", "Map state is not available", err)
}
