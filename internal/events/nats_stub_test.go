// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

//go:build !nats

package events

import (
	"errors"
	"testing"

	"github.com/tomtom215/feedrank/internal/config"
)

func TestNewTransport_NATSRequiresTag(t *testing.T) {
	cfg := testEventsConfig()
	cfg.Transport = config.TransportNATS
	if _, err := NewTransport(cfg, nil); !errors.Is(err, ErrNATSNotEnabled) {
		t.Errorf("NewTransport(nats) error = %v, want ErrNATSNotEnabled", err)
	}
}
