// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(context.Background(), &config.DatabaseConfig{Driver: config.DriverSQLite})
	if err != nil {
		t.Fatalf("database.New() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInitEvents_Disabled(t *testing.T) {
	cfg := &config.Config{}
	ev, err := initEvents(cfg, testDB(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("initEvents() error: %v", err)
	}
	if ev.Enabled() {
		t.Error("Enabled() = true, want false")
	}
	if ev.Sink() != nil {
		t.Error("Sink() should be nil when events are disabled")
	}
	if err := ev.RouterCheck(context.Background()); !errors.Is(err, errRouterNotRunning) {
		t.Errorf("RouterCheck() = %v, want errRouterNotRunning", err)
	}
	ev.Close()
}

func TestInitEvents_GoChannel(t *testing.T) {
	cfg := &config.Config{Events: config.EventsConfig{
		Enabled:         true,
		Transport:       config.TransportChannel,
		Topic:           "interactions",
		MaxRetries:      1,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		CloseTimeout:    time.Second,
	}}
	ev, err := initEvents(cfg, testDB(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("initEvents() error: %v", err)
	}
	defer ev.Close()

	if !ev.Enabled() || ev.Sink() == nil {
		t.Fatal("expected router and sink to be built")
	}
	if err := ev.RouterCheck(context.Background()); !errors.Is(err, errRouterNotRunning) {
		t.Errorf("RouterCheck() before Run = %v, want errRouterNotRunning", err)
	}
}

func TestInitEvents_UnknownTransport(t *testing.T) {
	cfg := &config.Config{Events: config.EventsConfig{Enabled: true, Transport: "kafka", Topic: "interactions"}}
	if _, err := initEvents(cfg, testDB(t), zerolog.Nop()); err == nil {
		t.Error("initEvents(kafka) expected error")
	}
}
