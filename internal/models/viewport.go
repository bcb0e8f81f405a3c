// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package models

import "math"

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Span is the visible extent of a map region in degrees.
type Span struct {
	LatitudeDelta  float64 `json:"latitudeDelta" validate:"gt=0,lte=180"`
	LongitudeDelta float64 `json:"longitudeDelta" validate:"gt=0,lte=360"`
}

// Viewport is a map region: where the map is centered and how much it shows.
type Viewport struct {
	Center Coordinate
	Span   Span
}

// viewportRecord is the persisted and wire shape of a Viewport.
type viewportRecord struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	LatitudeDelta  float64 `json:"latitudeDelta"`
	LongitudeDelta float64 `json:"longitudeDelta"`
}

// NewViewport builds a viewport from a center and span.
func NewViewport(lat, lon, latDelta, lonDelta float64) Viewport {
	return Viewport{
		Center: Coordinate{Latitude: lat, Longitude: lon},
		Span:   Span{LatitudeDelta: latDelta, LongitudeDelta: lonDelta},
	}
}

// IsZero reports whether the viewport is unset.
func (v Viewport) IsZero() bool {
	return v == Viewport{}
}

// Valid reports whether the viewport has a finite center and positive span.
func (v Viewport) Valid() bool {
	for _, f := range []float64{v.Center.Latitude, v.Center.Longitude, v.Span.LatitudeDelta, v.Span.LongitudeDelta} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return v.Center.Latitude >= -90 && v.Center.Latitude <= 90 &&
		v.Center.Longitude >= -180 && v.Center.Longitude <= 180 &&
		v.Span.LatitudeDelta > 0 && v.Span.LongitudeDelta > 0
}

// MarshalJSON flattens the viewport to {latitude, longitude, latitudeDelta, longitudeDelta}.
func (v Viewport) MarshalJSON() ([]byte, error) {
	return marshalJSON(viewportRecord{
		Latitude:       v.Center.Latitude,
		Longitude:      v.Center.Longitude,
		LatitudeDelta:  v.Span.LatitudeDelta,
		LongitudeDelta: v.Span.LongitudeDelta,
	})
}

// UnmarshalJSON reads the flat viewport record shape.
func (v *Viewport) UnmarshalJSON(data []byte) error {
	var rec viewportRecord
	if err := unmarshalJSON(data, &rec); err != nil {
		return err
	}
	*v = NewViewport(rec.Latitude, rec.Longitude, rec.LatitudeDelta, rec.LongitudeDelta)
	return nil
}
