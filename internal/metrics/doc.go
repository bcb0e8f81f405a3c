// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

// Package metrics defines the Prometheus collectors exported by Chaimap.
//
// Collectors are registered with the default registry through promauto and
// served by the API router at /metrics. Callers use the Record* helpers
// rather than touching the vectors directly, so label sets stay consistent.
package metrics
