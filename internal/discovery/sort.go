// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package discovery

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/tomtom215/chaimap/internal/models"
)

// Sort returns spots ordered by order. All orders are stable, so ties keep
// their input order. SortDistance without a location falls back to
// SortPersonalization.
func Sort(spots []models.Spot, order models.SortOrder, score func(models.Spot) float64, location *models.Coordinate) []models.Spot {
	out := slices.Clone(spots)

	switch order {
	case models.SortDistance:
		if location == nil {
			return sortByScore(out, score)
		}
		dist := make(map[string]float64, len(out))
		for _, s := range out {
			dist[s.ID] = DistanceKm(*location, s.Coordinate())
		}
		slices.SortStableFunc(out, func(a, b models.Spot) int {
			return cmp.Compare(dist[a.ID], dist[b.ID])
		})
	case models.SortRating:
		slices.SortStableFunc(out, func(a, b models.Spot) int {
			return cmp.Compare(b.AverageRating, a.AverageRating)
		})
	case models.SortName:
		slices.SortStableFunc(out, func(a, b models.Spot) int {
			return strings.Compare(a.Name, b.Name)
		})
	default:
		return sortByScore(out, score)
	}
	return out
}

// sortByScore orders by descending score, computing each score once.
func sortByScore(spots []models.Spot, score func(models.Spot) float64) []models.Spot {
	scores := make(map[string]float64, len(spots))
	for _, s := range spots {
		scores[s.ID] = score(s)
	}
	slices.SortStableFunc(spots, func(a, b models.Spot) int {
		return cmp.Compare(scores[b.ID], scores[a.ID])
	})
	return spots
}

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates.
func DistanceKm(a, b models.Coordinate) float64 {
	lat1Rad := a.Latitude * math.Pi / 180
	lat2Rad := b.Latitude * math.Pi / 180
	deltaLat := (b.Latitude - a.Latitude) * math.Pi / 180
	deltaLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
