// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package services provides suture.Service wrappers for Feedrank's
long-running components.

Each wrapper translates a component lifecycle (a periodic RunCycle, a
blocking Run, ListenAndServe) into suture's context-aware Serve pattern
and implements fmt.Stringer so the supervisor can name it in logs.

# Available Services

Training (TrainingService):
  - Runs trainer cycles on a fixed interval, each under a cycle timeout
  - Logs timeouts, overlapping cycles and panics; never exits on error

Backfill (BackfillService):
  - Embeds a batch of articles stored without a vector on each tick

Event Router (EventRouterService):
  - Runs the watermill interaction router until the context is canceled
  - Returns an error when the router stops on its own so suture restarts it

Ops Server (OpsServerService):
  - Binds the ops listener on every start and serves /healthz, /readyz and /metrics
  - Drains in-flight requests on shutdown within the supervisor timeout

# Error Handling

Services return ctx.Err() on a requested shutdown. Any other returned
error is treated by suture as a failure and triggers a restart with
backoff.
*/
package services
