// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

/*
Package models defines the data structures shared across Chaimap.

Key Components:

  - Spot: a chai venue with location, flavor tags and aggregate rating stats
  - UserProfile: taste vector, favorite flavor tags and friend list
  - Rating: one user's review of one spot, with optional sub-ratings
  - Coordinate, Span, Viewport: map geometry; Viewport persists as
    {latitude, longitude, latitudeDelta, longitudeDelta}
  - SortOrder: personalization, distance, rating, name
  - APIResponse: standardized HTTP response envelope

Identity:

Spots are identified by their remote document key. Two records with the same
ID loaded from different venue collections are the same spot; see
Spot.SameSpot.

Immutability:

Spots and ratings are values. The state holder replaces whole collections on
every reload and never mutates a loaded record in place.
*/
package models
