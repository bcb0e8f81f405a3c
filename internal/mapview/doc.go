// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

/*
Package mapview holds the map screen's state.

A single actor goroutine owns the canonical spot set, the personalization
inputs, the presentation controls (filter, sort order, search query, user
location) and the viewport reconciler. Callers never touch that state
directly: every command is a closure sent to the actor and executed in
order. Each command ends by publishing an immutable Snapshot, so readers
always see a consistent combination of spots, personalized ids, displayed
list and viewport.

# Reloads

Reload and RefreshPersonalization do their I/O outside the actor and apply
the results in one command. Concurrent calls of the same kind share one
in-flight operation through singleflight. A failed input keeps its previous
value; a load in which every spot source failed keeps the previous spots.

# Search

Search narrows the displayed list synchronously. When a geocoder is
configured, the query is also geocoded after a debounce delay against a
cancelable context; a response is applied only if no newer query was issued
in the meantime.

# Observers

Subscribe returns a channel that receives the version of each published
snapshot. Slow subscribers only see the latest version.
*/
package mapview
