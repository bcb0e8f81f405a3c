// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package api

import (
	"github.com/tomtom215/chaimap/internal/discovery"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/recommend"
)

// FilterRequest sets both discovery filters. Both fields are required so a
// partial body cannot silently clear a filter.
type FilterRequest struct {
	PersonalizedOnly *bool `json:"personalizedOnly" validate:"required"`
	CommunitySpots   *bool `json:"communitySpots" validate:"required"`
}

// Filter converts the request to a discovery filter.
func (r FilterRequest) Filter() discovery.Filter {
	return discovery.Filter{
		PersonalizedOnly: *r.PersonalizedOnly,
		CommunitySpots:   *r.CommunitySpots,
	}
}

// SortRequest selects the sort order by wire name.
type SortRequest struct {
	Order string `json:"order" validate:"required,oneof=personalization distance rating name"`
}

// SearchRequest sets the search query. An empty query clears the search.
type SearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// FitRequest selects what the viewport should frame. Personalized takes
// precedence over IDs; with neither set every spot is framed.
type FitRequest struct {
	IDs          []string `json:"ids" validate:"max=1000,dive,required"`
	Personalized bool     `json:"personalized"`
}

// LocationRequest reports the device location.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// Coordinate converts the request to a coordinate.
func (r LocationRequest) Coordinate() models.Coordinate {
	return models.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

// SpotView is a displayed spot with its personalization score.
type SpotView struct {
	models.Spot
	Score        float64 `json:"score"`
	Label        string  `json:"label"`
	Personalized bool    `json:"personalized"`
}

// SpotsResponse lists spots in display order.
type SpotsResponse struct {
	Spots []SpotView       `json:"spots"`
	Count int              `json:"count"`
	Total int              `json:"total"`
	Query string           `json:"query,omitempty"`
	Order models.SortOrder `json:"sortOrder"`
}

// ViewportResponse is the current map region.
type ViewportResponse struct {
	Viewport    models.Viewport `json:"viewport"`
	Interacting bool            `json:"interacting"`
}

// MoveResponse reports whether a command moved the viewport.
type MoveResponse struct {
	Moved    bool            `json:"moved"`
	Viewport models.Viewport `json:"viewport"`
}

func spotViews(spots []models.Spot, in recommend.Inputs, personalized func(string) bool) []SpotView {
	views := make([]SpotView, 0, len(spots))
	for _, spot := range spots {
		score := recommend.Score(spot, in)
		views = append(views, SpotView{
			Spot:         spot,
			Score:        score,
			Label:        recommend.Label(score),
			Personalized: personalized(spot.ID),
		})
	}
	return views
}

// validViewport rejects regions outside the coordinate space.
func validViewport(vp models.Viewport) bool {
	return vp.Valid() && vp.Span.LatitudeDelta <= 180 && vp.Span.LongitudeDelta <= 360
}
