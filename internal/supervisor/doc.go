// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

/*
Package supervisor runs chaimap's long-running components under a suture v4
supervisor tree.

	RootSupervisor ("chaimap")
	├── DataSupervisor ("data-layer")
	│   ├── mapview.Map
	│   └── ReloadService
	├── MessagingSupervisor ("messaging-layer")
	│   ├── NATSServerService (embedded NATS only)
	│   ├── eventprocessor.Router
	│   ├── websocket.Hub
	│   └── websocket.Bridge
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with exponential backoff. Each layer counts
failures independently, so a failing event consumer does not take the HTTP
API down. Supervisor events are logged through sutureslog into the
zerolog-backed slog handler from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.Install(supervisor.Services{Map: m, Hub: hub, HTTP: httpSvc})
	return tree.Serve(ctx)
*/
package supervisor
