// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

// Package logging provides centralized zerolog-based logging for Chaimap.
//
// A single global logger is configured from main via Init. Subsystems take a
// component child logger with WithComponent and add request context with Ctx
// or CtxFrom. Two bridges route third-party logging into the same pipeline:
//
//   - SlogHandler / NewSlogLogger for libraries using log/slog (sutureslog)
//   - WatermillAdapter for the event publisher and subscriber
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")
package logging
