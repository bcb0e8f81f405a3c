// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package models

import "strings"

// Spot is a chai venue as shown on the map and in the list.
// Two spots are the same spot when their IDs match, regardless of which
// venue collection they were loaded from.
type Spot struct {
	// ID is the remote document key.
	ID string `json:"id"`

	Name    string `json:"name"`
	Address string `json:"address"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// ChaiTypes are free-form flavor tags ("masala", "cardamom", ...).
	ChaiTypes []string `json:"chaiTypes"`

	// AverageRating is the aggregate community rating (0-5).
	AverageRating float64 `json:"averageRating"`

	// RatingCount is the number of ratings behind AverageRating.
	RatingCount int `json:"ratingCount"`
}

// Coordinate returns the spot location.
func (s Spot) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// SameSpot reports whether two records refer to the same venue.
func (s Spot) SameSpot(other Spot) bool {
	return s.ID == other.ID
}

// MatchesQuery reports whether the case-insensitive query is a substring of
// the name, the address, or any chai type. The query must already be lowercased.
func (s Spot) MatchesQuery(lowered string) bool {
	if strings.Contains(strings.ToLower(s.Name), lowered) {
		return true
	}
	if strings.Contains(strings.ToLower(s.Address), lowered) {
		return true
	}
	for _, t := range s.ChaiTypes {
		if strings.Contains(strings.ToLower(t), lowered) {
			return true
		}
	}
	return false
}

// SpotIDs returns the IDs of the given spots in order.
func SpotIDs(spots []Spot) []string {
	ids := make([]string, len(spots))
	for i := range spots {
		ids[i] = spots[i].ID
	}
	return ids
}
