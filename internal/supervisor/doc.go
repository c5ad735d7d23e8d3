// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

/*
Package supervisor provides process supervision using suture v4.

The tree separates the snapshot build loop from the HTTP API:

	RootSupervisor ("recsys")
	├── BuildSupervisor ("build-layer")
	│   └── SnapshotService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashed service is restarted with backoff once FailureThreshold failures
accumulate (decaying at FailureDecay per second). Restarting the build layer
never interrupts request serving: queries keep reading the last published
snapshot.

Supervisor events are logged through sutureslog, bridged to zerolog:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddBuildService(services.NewSnapshotService(builder, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	err = tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
