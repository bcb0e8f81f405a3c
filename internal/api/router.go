// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/chaimap/internal/middleware"
)

// slowRequestThreshold raises request logs from debug to warn.
const slowRequestThreshold = 2 * time.Second

// Router sets up HTTP routes using Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. The websocket upgrader accepts the same
// origins as CORS.
func NewRouter(handler *Handler, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	if handler.checkOrigin == nil {
		handler.checkOrigin = chiMiddleware.AllowsOrigin
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMiddleware,
	}
}

// SetupChi builds the chi route tree.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(slowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/ws", h.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Get("/spots", h.Spots)
			r.Post("/spots", h.CreateSpot)
			r.Get("/spots/personalized", h.PersonalizedSpots)
			r.Get("/spots/{id}/score", h.SpotScore)
			r.Post("/ratings", h.CreateRating)

			r.Get("/viewport", h.Viewport)
			r.Post("/viewport/fit", h.Fit)
			r.Post("/viewport/interaction", h.Interaction)
			r.Post("/location", h.Location)

			r.Put("/filter", h.SetFilter)
			r.Put("/sort", h.SetSort)
			r.Post("/search", h.Search)

			r.Post("/reload", h.Reload)
			r.Post("/personalization/refresh", h.RefreshPersonalization)
		})
	})

	return r
}
