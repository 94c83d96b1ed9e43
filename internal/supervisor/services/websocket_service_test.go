// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/gatherly/internal/websocket"
)

var _ suture.Service = (*WebSocketHubService)(nil)

type failingHub struct{ err error }

func (f failingHub) RunWithContext(context.Context) error { return f.err }

func TestWebSocketHubService_RunsHub(t *testing.T) {
	t.Parallel()

	hub := websocket.NewHub(zerolog.Nop())
	svc := NewWebSocketHubService(hub)
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	// Broadcasting to a group nobody watches must not block a running hub.
	hub.Publish("g1", websocket.MessageTypeGroupStatus, map[string]string{"status": "active"})

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
}

func TestWebSocketHubService_PropagatesErrors(t *testing.T) {
	t.Parallel()

	hubErr := errors.New("hub startup error")
	svc := NewWebSocketHubService(failingHub{err: hubErr})
	if err := svc.Serve(context.Background()); !errors.Is(err, hubErr) {
		t.Errorf("Serve() error = %v, want %v", err, hubErr)
	}
}
