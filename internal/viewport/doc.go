// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

// Package viewport decides where the map points.
//
// Three sources compete for the viewport: explicit user pan and zoom, live
// location updates and data reloads. A Reconciler arbitrates among them:
//
//   - At start the persisted viewport wins, then the in-memory last-known
//     viewport, then the configured default region.
//   - A user pan or zoom starts a cool-down window during which location
//     updates and reloads leave the viewport alone.
//   - A location update recenters on the user with LocationSpan.
//   - A reload centers on the user when the location is known and otherwise
//     fits every spot. The first reload after resuming a persisted viewport
//     keeps the resumed region.
//   - Explicit fits and search results always apply.
//
// Every applied change is written through to the Persister.
//
// A Reconciler is not safe for concurrent use; it is owned by the map state
// holder's actor goroutine.
package viewport
