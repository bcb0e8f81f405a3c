// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/chaimap/internal/logging"
	"github.com/tomtom215/chaimap/internal/mapview"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/repository"
	"github.com/tomtom215/chaimap/internal/validation"
)

// Spots returns the displayed spots in display order.
func (h *Handler) Spots(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	respondData(w, http.StatusOK, SpotsResponse{
		Spots: spotViews(snap.Displayed, snap.Inputs(), snap.IsPersonalized),
		Count: len(snap.Displayed),
		Total: len(snap.Spots),
		Query: snap.Query,
		Order: snap.Order,
	}, snap.Version)
}

// PersonalizedSpots returns every personalized spot regardless of the
// current filters or search.
func (h *Handler) PersonalizedSpots(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	spots := snap.PersonalizedSpots()
	respondData(w, http.StatusOK, SpotsResponse{
		Spots: spotViews(spots, snap.Inputs(), snap.IsPersonalized),
		Count: len(spots),
		Total: len(snap.Spots),
		Order: snap.Order,
	}, snap.Version)
}

// SpotScore returns the score breakdown and explanation for one spot.
func (h *Handler) SpotScore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, ok := h.state.Evaluate(id)
	if !ok {
		respondError(w, http.StatusNotFound, "SPOT_NOT_FOUND", "Spot not found", nil)
		return
	}
	respondData(w, http.StatusOK, result, h.state.Snapshot().Version)
}

// CreateSpot stores a new spot with the acting user's first rating.
func (h *Handler) CreateSpot(w http.ResponseWriter, r *http.Request) {
	var req repository.NewSpot
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.state.CreateSpot(r.Context(), req)
	if err != nil {
		respondWriteFailure(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, models.WriteResult{Success: true, ID: id}, h.state.Snapshot().Version)
}

// CreateRating stores the acting user's rating for an existing spot.
func (h *Handler) CreateRating(w http.ResponseWriter, r *http.Request) {
	var req repository.NewRating
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := h.state.CreateRating(r.Context(), req)
	if err != nil {
		respondWriteFailure(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, models.WriteResult{Success: true, ID: id}, h.state.Snapshot().Version)
}

// respondWriteFailure answers a failed create with {"success": false} and
// an error describing the cause.
func respondWriteFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	apiErr := &models.APIError{Code: "WRITE_FAILED", Message: "The write could not be stored"}

	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		apiErr = toModelError(verr)
	case errors.Is(err, mapview.ErrNoSession):
		status = http.StatusUnauthorized
		apiErr = &models.APIError{Code: "NO_SESSION", Message: "No signed-in user"}
	default:
		logging.Ctx(r.Context()).Error().Str("error", sanitizeLogValue(err.Error())).Msg("Write failed")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Data:     models.WriteResult{Success: false},
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}
