// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gatherly/internal/session"
)

// PutSession creates or replaces the planning session of a channel. A
// referenced group must exist.
func (h *Handler) PutSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PutSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.GroupID != "" {
		ctx, cancel := h.requestContext(r)
		_, err := h.groups.Get(ctx, req.GroupID)
		cancel()
		if err != nil {
			respondServiceError(w, err)
			return
		}
	}

	sess, err := h.sessions.Put(session.Session{
		ChannelID: chi.URLParam(r, "channelID"),
		GroupID:   req.GroupID,
		Stage:     session.Stage(req.Stage),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, sess, start)
}

// GetSession returns the live session of a channel and extends its TTL.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(chi.URLParam(r, "channelID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, sess, time.Time{})
}

// DeleteSession ends the session of a channel.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "channelID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
