// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package discovery

import (
	"strings"

	"github.com/tomtom215/chaimap/internal/models"
)

// Search keeps spots whose name, address or any chai type contains query,
// ignoring case. A blank query returns every spot.
func Search(spots []models.Spot, query string) []models.Spot {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]models.Spot, len(spots))
		copy(out, spots)
		return out
	}

	out := make([]models.Spot, 0, len(spots))
	for _, s := range spots {
		if s.MatchesQuery(q) {
			out = append(out, s)
		}
	}
	return out
}

// Query is the full presentation state that shapes the displayed list.
type Query struct {
	Filter   Filter
	Order    models.SortOrder
	Search   string
	Location *models.Coordinate
}

// SearchActive reports whether a non-blank search is in effect.
func (q Query) SearchActive() bool {
	return strings.TrimSpace(q.Search) != ""
}

// View derives the displayed list. An active search replaces the filters:
// the narrowed set is sorted without filtering. Otherwise the filters are
// applied, then the sort.
func View(spots []models.Spot, q Query, personalized map[string]struct{}, score func(models.Spot) float64) []models.Spot {
	var working []models.Spot
	if q.SearchActive() {
		working = Search(spots, q.Search)
	} else {
		working = ApplyFilter(spots, q.Filter, personalized)
	}
	return Sort(working, q.Order, score, q.Location)
}
