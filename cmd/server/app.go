// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/gatherly/internal/api"
	"github.com/tomtom215/gatherly/internal/config"
	"github.com/tomtom215/gatherly/internal/groups"
	"github.com/tomtom215/gatherly/internal/logging"
	"github.com/tomtom215/gatherly/internal/provider"
	"github.com/tomtom215/gatherly/internal/recommend"
	"github.com/tomtom215/gatherly/internal/session"
	"github.com/tomtom215/gatherly/internal/store"
	"github.com/tomtom215/gatherly/internal/supervisor"
	"github.com/tomtom215/gatherly/internal/supervisor/services"
	ws "github.com/tomtom215/gatherly/internal/websocket"
)

// app holds the wired components of a running server.
type app struct {
	cfg      *config.Config
	store    *store.Store
	ratings  *provider.Cached
	sessions *session.Store
	hub      *ws.Hub
	server   *http.Server
	logger   zerolog.Logger
}

// newApp opens the store and wires every component on top of it. The caller
// owns the returned app and must Close it.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	st, err := store.Open(cfg.Store, logger.With().Str("component", "store").Logger())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// Ratings are read through an LRU that rating writes invalidate, and the
	// breaker sheds load when the store misbehaves.
	cached := provider.NewCached(st, cfg.Recommend.RatingsCacheSize, cfg.Recommend.RatingsCacheTTL)
	st.OnRatingsChanged(cached.Invalidate)
	breaker := provider.NewBreaker(cached, cfg.Breaker, logger.With().Str("component", "breaker").Logger())

	engine, err := recommend.NewEngine(cfg.Recommend.Engine(), logger.With().Str("component", "recommend").Logger())
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetDataProvider(breaker)

	hub := ws.NewHub(logger.With().Str("component", "websocket").Logger())
	groupService := groups.NewService(st, engine, hub, logger.With().Str("component", "groups").Logger())
	sessions := session.NewStore(cfg.Session, nil)

	handler := api.NewHandler(st, groupService, sessions, hub, cfg)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	return &app{
		cfg:      cfg,
		store:    st,
		ratings:  cached,
		sessions: sessions,
		hub:      hub,
		server:   server,
		logger:   logger,
	}, nil
}

// supervise adds the app's long-lived services to tree.
func (a *app) supervise(tree *supervisor.SupervisorTree) {
	tree.AddLiveService(services.NewWebSocketHubService(a.hub))

	tree.AddMaintenanceService(services.NewPeriodicService(services.PeriodicConfig{
		Name:     "store-gc",
		Interval: a.store.GCInterval(),
	}, func(context.Context) error {
		return a.store.RunGC()
	}, a.logger))

	tree.AddMaintenanceService(services.NewPeriodicService(services.PeriodicConfig{
		Name:     "session-sweeper",
		Interval: a.cfg.Session.SweepInterval,
	}, a.sweep, a.logger))

	tree.AddAPIService(services.NewHTTPServerService(a.server, a.cfg.Server.ShutdownTimeout, a.logger))
}

// sweep drops expired sessions and cached rating lists.
func (a *app) sweep(context.Context) error {
	sessions := a.sessions.Sweep()
	ratings := a.ratings.Purge()
	if sessions > 0 || ratings > 0 {
		logging.Debug().Int("sessions", sessions).Int("ratings", ratings).Msg("expired entries swept")
	}
	return nil
}

// Close flushes and closes the store.
func (a *app) Close() error {
	return a.store.Close()
}
