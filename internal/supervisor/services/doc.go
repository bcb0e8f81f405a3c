// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

/*
Package services provides suture.Service wrappers for chaimap components
whose lifecycle does not already follow suture's Serve(ctx) pattern.

Components that implement Serve themselves (mapview.Map, eventprocessor.Router,
websocket.Hub, websocket.Bridge) are added to the tree directly.

# Available Services

HTTP Server (HTTPServerService):
  - Builds a fresh *http.Server per Serve, so restarts get a new listener
  - Graceful shutdown with a configurable drain timeout

Embedded NATS (NATSServerService):
  - Owns shutdown of an embedded server started during wiring
  - Fails, and is restarted with backoff, if the server stops on its own

Reloads (ReloadService):
  - Triggers the initial reload when the tree starts
  - Optional periodic full reloads; failures are logged, never fatal

# Error Handling

Serve returns ctx.Err() on a requested shutdown and a wrapped error on
failure. suture restarts failed services with exponential backoff.
*/
package services
