// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness probe requests. It only reports that the
// process is serving HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Time{})
}

// HealthReady handles readiness probe requests.
// Returns 200 only when the store answers; otherwise 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	storeReady := h.store != nil && h.store.Ping(ctx) == nil

	wsClients := 0
	if h.wsHub != nil {
		wsClients = h.wsHub.ClientCount()
	}

	data := map[string]interface{}{
		"ready":             storeReady,
		"store_connected":   storeReady,
		"websocket_clients": wsClients,
		"uptime":            time.Since(h.startTime).Seconds(),
	}
	if h.sessions != nil {
		data["sessions"] = h.sessions.Len()
	}

	if !storeReady {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotReady, "Store is not reachable", nil)
		return
	}
	respondSuccess(w, http.StatusOK, data, time.Time{})
}
