// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

// Package discovery derives the displayed spot list from the canonical
// collection: free-text search, personalized/community visibility filters
// and the four sort orders.
//
// Every function is pure and returns a new slice; the input collection is
// never reordered.
package discovery
