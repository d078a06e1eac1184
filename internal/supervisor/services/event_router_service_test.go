// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type fakeRouter struct {
	runErr   error
	stopSelf bool
	runs     int
}

func (f *fakeRouter) Run(ctx context.Context) error {
	f.runs++
	if f.runErr != nil || f.stopSelf {
		return f.runErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeRouter) IsRunning() bool { return false }

func TestEventRouterService_Serve(t *testing.T) {
	t.Run("returns ctx error on shutdown", func(t *testing.T) {
		svc := NewEventRouterService(&fakeRouter{})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
		}
	})

	t.Run("wraps router failure", func(t *testing.T) {
		runErr := errors.New("subscribe: nats: no responders")
		svc := NewEventRouterService(&fakeRouter{runErr: runErr})
		err := svc.Serve(context.Background())
		if !errors.Is(err, runErr) {
			t.Errorf("Serve() error = %v, want %v", err, runErr)
		}
	})

	t.Run("unexpected stop is an error", func(t *testing.T) {
		svc := NewEventRouterService(&fakeRouter{stopSelf: true})
		if err := svc.Serve(context.Background()); !errors.Is(err, ErrRouterStopped) {
			t.Errorf("Serve() error = %v, want ErrRouterStopped", err)
		}
	})
}

func TestEventRouterService_RestartedBySupervisor(t *testing.T) {
	router := &fakeRouter{stopSelf: true}
	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 100,
		FailureBackoff:   time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewEventRouterService(router))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	<-sup.ServeBackground(ctx)

	if router.runs < 2 {
		t.Errorf("router runs = %d, want >= 2", router.runs)
	}
}
