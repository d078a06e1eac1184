// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/feedrank/internal/api"
	"github.com/tomtom215/feedrank/internal/backfill"
	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/database"
	"github.com/tomtom215/feedrank/internal/embedding"
	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/modelstore"
	"github.com/tomtom215/feedrank/internal/recommend"
	"github.com/tomtom215/feedrank/internal/supervisor"
	"github.com/tomtom215/feedrank/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Feedrank stopped with error")
	}
	logging.Info().Msg("Feedrank stopped")
}

// run wires every component and blocks until a shutdown signal arrives.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.Logger()
	logging.Info().
		Str("database_driver", cfg.Database.Driver).
		Str("model_backend", cfg.Models.Backend).
		Str("regressor", cfg.Training.Regressor).
		Bool("embedding_enabled", cfg.Embedding.Enabled).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Starting Feedrank")

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer closeWithLog("database", db)
	logging.Info().Str("driver", db.Driver()).Msg("Database initialized successfully")

	registry, err := modelstore.New(&cfg.Models)
	if err != nil {
		return err
	}
	defer closeWithLog("model store", registry)

	embedder, embedderCloser, err := embedding.New(&cfg.Embedding, logger)
	if err != nil {
		return err
	}
	defer closeWithLog("embedding cache", embedderCloser)

	ev, err := initEvents(cfg, db, logger)
	if err != nil {
		return err
	}
	defer ev.Close()

	engine, err := recommend.NewEngine(cfg, db, registry, recommend.Options{
		Embedder: embedder,
		Sink:     ev.Sink(),
	}, logger)
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger("supervisor"),
		supervisor.TreeConfigFrom(&cfg.Supervisor),
	)
	if err != nil {
		return err
	}

	if cfg.Backfill.Enabled {
		if embedder == nil {
			logging.Warn().Msg("Backfill enabled but embedding provider is disabled; skipping backfill")
		} else {
			bf, err := backfill.New(db, embedder, &cfg.Backfill, logger)
			if err != nil {
				return err
			}
			tree.AddDataService(services.NewBackfillService(bf, cfg.Backfill.Interval, logger))
		}
	}

	if cfg.Scheduler.Enabled {
		tree.AddTrainingService(services.NewTrainingService(engine.Trainer(), &cfg.Scheduler, logger))
	}

	if ev.Enabled() {
		tree.AddIngestService(services.NewEventRouterService(ev.router))
	}

	if cfg.Server.Enabled {
		checks := []api.ReadinessCheck{{Name: "database", Check: db.Ping}}
		if ev.Enabled() {
			checks = append(checks, api.ReadinessCheck{Name: "event_router", Check: ev.RouterCheck})
		}
		ops := services.NewOpsServerService(&cfg.Server, api.NewRouter(&cfg.Server, checks...), cfg.Supervisor.ShutdownTimeout, logger)
		tree.AddAPIService(ops)
		logging.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("Ops HTTP server configured")
	}

	logging.Info().Msg("Supervisor tree starting")
	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within shutdown timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func closeWithLog(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Str("component", name).Msg("Error during shutdown")
	}
}
