// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package supervisor runs Feedrank's long-lived services under a suture v4
supervisor tree.

# Overview

Services are grouped into four layers so a failure in one does not take
down the others:

	RootSupervisor ("feedrank")
	├── DataSupervisor ("data-layer")
	│   └── BackfillService (if backfill.enabled and embedding.enabled)
	├── TrainingSupervisor ("training-layer")
	│   └── TrainingService (if scheduler.enabled)
	├── IngestSupervisor ("ingest-layer")
	│   └── EventRouterService (if events.enabled)
	└── APISupervisor ("api-layer")
	    └── OpsServerService (if server.enabled)

A crashing event router is restarted with backoff while ranking and
training keep working; a stuck backfill never delays a training cycle.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(
	    logging.NewSlogLogger("supervisor"),
	    supervisor.TreeConfigFrom(&cfg.Supervisor),
	)
	tree.AddTrainingService(services.NewTrainingService(engine.Trainer(), &cfg.Scheduler, logger))
	tree.AddAPIService(services.NewOpsServerService(&cfg.Server, api.NewRouter(&cfg.Server), cfg.Supervisor.ShutdownTimeout, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("supervisor stopped")
	}

# Logging

Supervisor events (service failures, restarts, backoff) go through
sutureslog into the slog logger passed to NewSupervisorTree, which
cmd/server backs with the process zerolog logger.

# See Also

  - internal/supervisor/services: the suture.Service wrappers
  - github.com/thejerf/suture/v4
*/
package supervisor
