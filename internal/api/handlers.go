// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/gatherly/internal/config"
	"github.com/tomtom215/gatherly/internal/groups"
	"github.com/tomtom215/gatherly/internal/logging"
	"github.com/tomtom215/gatherly/internal/session"
	"github.com/tomtom215/gatherly/internal/store"
	ws "github.com/tomtom215/gatherly/internal/websocket"
)

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, websocket upgrader (this file)
//   - handlers_helpers.go: response envelope, body decoding, query params
//   - handlers_health.go: liveness and readiness probes
//   - handlers_users.go: user profiles and the personality quiz
//   - handlers_places.go: places, ratings and place statistics
//   - handlers_groups.go: group lifecycle, recommendations and voting
//   - handlers_sessions.go: planning session state
type Handler struct {
	store     *store.Store
	groups    *groups.Service
	sessions  *session.Store
	wsHub     *ws.Hub
	config    *config.Config
	startTime time.Time
}

// NewHandler creates a new API handler with all required dependencies.
//
// Example:
//
//	handler := api.NewHandler(st, groupService, sessions, hub, cfg)
//	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg.Security))
//	http.ListenAndServe(cfg.Server.Addr(), router.SetupChi())
func NewHandler(st *store.Store, groupService *groups.Service, sessions *session.Store, wsHub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		store:     st,
		groups:    groupService,
		sessions:  sessions,
		wsHub:     wsHub,
		config:    cfg,
		startTime: time.Now(),
	}
}

// requestContext bounds a handler's work by the configured request timeout.
func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := 15 * time.Second
	if h.config != nil && h.config.Server.RequestTimeout > 0 {
		timeout = h.config.Server.RequestTimeout
	}
	return context.WithTimeout(r.Context(), timeout)
}

// recommendContext is requestContext for recommendation runs, which get the
// engine timeout when that is longer.
func (h *Handler) recommendContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.config != nil && h.config.Recommend.Timeout > h.config.Server.RequestTimeout {
		return context.WithTimeout(r.Context(), h.config.Recommend.Timeout)
	}
	return h.requestContext(r)
}

// getUpgrader creates a WebSocket upgrader with origin checking and a handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins against the
// CORS allow list. Browser clients always send Origin, so a missing header is
// rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
