// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package viewport

import (
	"math"

	"github.com/tomtom215/chaimap/internal/models"
)

const (
	maxLatitudeDelta  = 180.0
	maxLongitudeDelta = 360.0
)

// Fit computes the region showing every coordinate. A single coordinate is
// centered with closeSpan on both axes. Otherwise the bounding box is
// expanded by padding on each axis and never shrinks below minSpan.
// Fit reports false for an empty input.
func Fit(coords []models.Coordinate, padding, closeSpan, minSpan float64) (models.Viewport, bool) {
	switch len(coords) {
	case 0:
		return models.Viewport{}, false
	case 1:
		c := coords[0]
		return models.NewViewport(c.Latitude, c.Longitude, closeSpan, closeSpan), true
	}

	minLat, maxLat := coords[0].Latitude, coords[0].Latitude
	minLon, maxLon := coords[0].Longitude, coords[0].Longitude
	for _, c := range coords[1:] {
		minLat = math.Min(minLat, c.Latitude)
		maxLat = math.Max(maxLat, c.Latitude)
		minLon = math.Min(minLon, c.Longitude)
		maxLon = math.Max(maxLon, c.Longitude)
	}

	latDelta := math.Min(math.Max((maxLat-minLat)*padding, minSpan), maxLatitudeDelta)
	lonDelta := math.Min(math.Max((maxLon-minLon)*padding, minSpan), maxLongitudeDelta)

	return models.NewViewport((minLat+maxLat)/2, (minLon+maxLon)/2, latDelta, lonDelta), true
}

// FitSpots is Fit over spot coordinates.
func FitSpots(spots []models.Spot, padding, closeSpan, minSpan float64) (models.Viewport, bool) {
	coords := make([]models.Coordinate, len(spots))
	for i, s := range spots {
		coords[i] = s.Coordinate()
	}
	return Fit(coords, padding, closeSpan, minSpan)
}

// Centered returns a square region of span degrees around c.
func Centered(c models.Coordinate, span float64) models.Viewport {
	return models.NewViewport(c.Latitude, c.Longitude, span, span)
}
