// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

/*
Package api serves the HTTP surface of the chai map.

Routes live under /api/v1 and read from or send commands to the map state
holder:

	GET  /api/v1/spots                    displayed spots with scores
	GET  /api/v1/spots/personalized       personalized spots
	GET  /api/v1/spots/{id}/score         score breakdown and explanation
	POST /api/v1/spots                    create a spot with a first rating
	POST /api/v1/ratings                  rate an existing spot
	GET  /api/v1/viewport                 current viewport
	POST /api/v1/viewport/fit             fit all, a subset or the personalized set
	POST /api/v1/viewport/interaction     report a user pan or zoom
	POST /api/v1/location                 report the device location
	PUT  /api/v1/filter                   set the discovery filters
	PUT  /api/v1/sort                     set the sort order
	POST /api/v1/search                   set the search query
	POST /api/v1/reload                   reload spots and personalization inputs
	POST /api/v1/personalization/refresh  reload personalization inputs only
	GET  /api/v1/ws                       snapshot_updated notifications
	GET  /api/v1/health                   liveness and data freshness
	GET  /metrics                         Prometheus metrics

Every JSON response uses the models.APIResponse envelope. Metadata.Version
carries the snapshot version the response was read from.

Create endpoints answer with models.WriteResult so callers only need to
check success.
*/
package api
