// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

// Package middleware provides chi-compatible HTTP middleware for the API:
// request ids with logging context, request logging, and Prometheus
// instrumentation.
//
// Order them outermost first:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.RequestLogger(500 * time.Millisecond))
//	r.Use(middleware.PrometheusMetrics)
package middleware
