// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

/*
Package websocket pushes map state changes to connected clients.

Key Components:

  - Hub: tracks clients and fans broadcasts out to them
  - Client: one connection with a read goroutine and a write goroutine
  - Bridge: subscribes to the map state holder and broadcasts a
    snapshot_updated message for every new snapshot

Message Types:

  - snapshot_updated: a new map snapshot was published (version, counts,
    viewport, presentation controls)
  - ping / pong: application-level keepalive sent by clients

A client whose send buffer is full when a broadcast arrives is dropped; it
reconnects and receives the current snapshot on connect.

Usage:

	hub := websocket.NewHub(websocket.DefaultConfig())
	bridge := websocket.NewBridge(hub, mapState)
	tree.AddMessagingService(hub)
	tree.AddMessagingService(bridge)
*/
package websocket
