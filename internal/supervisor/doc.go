// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

/*
Package supervisor provides process supervision for parley using suture v4.

Long-running components are organized into a two-layer tree:

	RootSupervisor ("parley")
	├── WorkerSupervisor ("worker-layer")
	│   ├── session sweeper
	│   └── analytics consumer (if analytics is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTP server

The layers isolate failures: a crashing analytics consumer is restarted
with backoff while the HTTP server keeps taking turns, and vice versa.
Services implement suture.Service (Serve(ctx) error plus fmt.Stringer);
the sweeper and consumer do so directly in their own packages, and the
HTTP server is adapted by HTTPServerService in this package.

Supervisor lifecycle events (starts, failures, restarts, backoff) are
logged through a sutureslog bridge into the process-wide zerolog output.
*/
package supervisor
