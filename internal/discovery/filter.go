// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package discovery

import "github.com/tomtom215/chaimap/internal/models"

// Filter holds the two visibility toggles.
type Filter struct {
	// PersonalizedOnly shows personalized spots when true. When false they
	// are hidden.
	PersonalizedOnly bool `json:"personalizedOnly"`

	// CommunitySpots shows spots that are not personalized when true. When
	// false they are hidden.
	CommunitySpots bool `json:"communitySpots"`
}

// DefaultFilter shows everything.
func DefaultFilter() Filter {
	return Filter{PersonalizedOnly: true, CommunitySpots: true}
}

// ApplyFilter runs the two toggles as independent passes. With both toggles
// false nothing survives.
func ApplyFilter(spots []models.Spot, f Filter, personalized map[string]struct{}) []models.Spot {
	out := make([]models.Spot, 0, len(spots))
	out = append(out, spots...)

	if !f.PersonalizedOnly {
		out = keep(out, func(s models.Spot) bool {
			_, ok := personalized[s.ID]
			return !ok
		})
	}
	if !f.CommunitySpots {
		out = keep(out, func(s models.Spot) bool {
			_, ok := personalized[s.ID]
			return ok
		})
	}
	return out
}

func keep(spots []models.Spot, pred func(models.Spot) bool) []models.Spot {
	n := 0
	for _, s := range spots {
		if pred(s) {
			spots[n] = s
			n++
		}
	}
	return spots[:n]
}
