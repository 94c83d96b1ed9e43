// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/gatherly/internal/config"
	"github.com/tomtom215/gatherly/internal/provider"
	"github.com/tomtom215/gatherly/internal/recommend"
	"github.com/tomtom215/gatherly/internal/session"
	"github.com/tomtom215/gatherly/internal/store"
	"github.com/tomtom215/gatherly/internal/supervisor"
)

func testAppConfig() *config.Config {
	engine := recommend.DefaultConfig()
	st := store.DefaultConfig()
	st.InMemory = true

	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			RequestTimeout:  time.Second,
			ShutdownTimeout: time.Second,
		},
		Store: st,
		Recommend: config.RecommendConfig{
			TopN:             engine.TopN,
			Workers:          engine.Workers,
			DefaultRadiusKm:  engine.DefaultRadiusKm,
			MaxRadiusKm:      engine.MaxRadiusKm,
			Timeout:          engine.Timeout,
			RatingsCacheTTL:  time.Minute,
			RatingsCacheSize: 10,
		},
		Breaker: provider.DefaultBreakerConfig(),
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
		Session: session.DefaultConfig(),
	}
}

func TestNewApp_ServesAPI(t *testing.T) {
	a, err := newApp(testAppConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
	w := httptest.NewRecorder()
	a.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("ready status = %d, body = %s", w.Code, w.Body.String())
	}

	body := strings.NewReader(`{"display_name":"Ada"}`)
	req = httptest.NewRequest(http.MethodPut, "/api/v1/users/ada", body)
	w = httptest.NewRecorder()
	a.server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("PUT user status = %d, body = %s", w.Code, w.Body.String())
	}

	if err := a.sweep(context.Background()); err != nil {
		t.Errorf("sweep() error = %v", err)
	}
}

func TestApp_Supervised(t *testing.T) {
	a, err := newApp(testAppConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	tree, err := supervisor.NewSupervisorTree(slog.New(slog.NewTextHandler(io.Discard, nil)), supervisor.TreeConfig{
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	a.supervise(tree)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor tree did not stop")
	}
	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) != 0 {
		t.Errorf("unstopped services = %v", unstopped)
	}
}
