// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

/*
Package supervisor runs Gatherly's long-lived services under suture v4.

The tree has three layers so a failure in one restarts only that layer:

	gatherly
	├── maintenance-layer
	│   ├── store-gc        (badger value log GC)
	│   └── session-sweeper (expired sessions and cached ratings)
	├── live-layer
	│   └── websocket-hub
	└── api-layer
	    └── http-server

Crashed services restart with suture's backoff. Supervisor events are logged
through sutureslog into the zerolog pipeline:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddLiveService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
