// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package mapview

import (
	"time"

	"github.com/tomtom215/chaimap/internal/discovery"
	"github.com/tomtom215/chaimap/internal/models"
	"github.com/tomtom215/chaimap/internal/recommend"
)

// Snapshot is an immutable view of the map state. Slices and maps in a
// snapshot must not be modified.
type Snapshot struct {
	Version uint64

	// Spots is the canonical deduplicated set.
	Spots []models.Spot
	// Displayed is Spots after search or filters, then sorting.
	Displayed []models.Spot
	// Personalized holds the ids classified as personalized.
	Personalized map[string]struct{}

	Viewport    models.Viewport
	Interacting bool

	Filter   discovery.Filter
	Order    models.SortOrder
	Query    string
	Location *models.Coordinate

	Profile       *models.UserProfile
	OwnRatings    []models.Rating
	FriendRatings []models.Rating

	// Degraded is set when the last load could not read every spot source or
	// personalization input.
	Degraded  bool
	LoadedAt  time.Time
	UpdatedAt time.Time
}

// Inputs returns the personalization inputs the snapshot was scored with.
func (s *Snapshot) Inputs() recommend.Inputs {
	return recommend.Inputs{
		Profile:       s.Profile,
		OwnRatings:    s.OwnRatings,
		FriendRatings: s.FriendRatings,
	}
}

// IsPersonalized reports whether the spot id is in the personalized set.
func (s *Snapshot) IsPersonalized(id string) bool {
	_, ok := s.Personalized[id]
	return ok
}

// Spot returns the canonical spot with the given id.
func (s *Snapshot) Spot(id string) (models.Spot, bool) {
	for _, spot := range s.Spots {
		if spot.ID == id {
			return spot, true
		}
	}
	return models.Spot{}, false
}

// PersonalizedSpots returns the canonical spots in the personalized set, in
// canonical order.
func (s *Snapshot) PersonalizedSpots() []models.Spot {
	out := make([]models.Spot, 0, len(s.Personalized))
	for _, spot := range s.Spots {
		if s.IsPersonalized(spot.ID) {
			out = append(out, spot)
		}
	}
	return out
}

// DiscoveryQuery returns the discovery query the displayed list was derived from.
func (s *Snapshot) DiscoveryQuery() discovery.Query {
	return discovery.Query{
		Filter:   s.Filter,
		Order:    s.Order,
		Search:   s.Query,
		Location: s.Location,
	}
}
