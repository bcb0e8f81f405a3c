// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

/*
Package main is the entry point for the Chaimap server.

Chaimap shows chai venues on a map and labels the ones that fit the
session user's taste, drawing on their own ratings, their friends' ratings
and the community average.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("chaimap")
	├── DataSupervisor ("data-layer")
	│   ├── Map (state holder actor)
	│   └── Reload service (startup and periodic reloads)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── NATS server watchdog (embedded server only)
	│   ├── Change event router (Watermill)
	│   ├── WebSocket hub
	│   └── Snapshot bridge
	└── APISupervisor ("api-layer")
	    └── HTTP server (Chi)

Initialization order:

 1. Configuration: Koanf v2 with defaults, optional YAML file and environment
 2. Logging: zerolog
 3. Store: BadgerDB behind per-collection circuit breakers
 4. Change events: NATS JetStream, or an in-process channel when disabled
 5. Repository, viewport reconciler and map state holder
 6. WebSocket hub, snapshot bridge and HTTP router
 7. Supervisor tree

# Signals

SIGINT and SIGTERM cancel the root context. Services stop in reverse layer
order and any service that misses its shutdown timeout is reported.
*/
package main
