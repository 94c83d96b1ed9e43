// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gatherly/internal/groups"
	"github.com/tomtom215/gatherly/internal/logging"
	"github.com/tomtom215/gatherly/internal/models"
	ws "github.com/tomtom215/gatherly/internal/websocket"
)

// CreateGroup creates a group with the owner as its first member.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateGroupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	radius := req.RadiusKm
	if radius == 0 {
		radius = models.DefaultSearchRadiusKm
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	g, err := h.groups.Create(ctx, groups.CreateInput{
		Name:      req.Name,
		OwnerID:   req.OwnerID,
		ChannelID: req.ChannelID,
		Location:  req.Location,
		RadiusKm:  radius,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, g, start)
}

// GetGroup returns /groups/{groupID}.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r)
	defer cancel()

	g, err := h.groups.Get(ctx, chi.URLParam(r, "groupID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, g, start)
}

// AddMember joins a user to the group.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AddMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	g, err := h.groups.Join(ctx, chi.URLParam(r, "groupID"), req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, g, start)
}

// RemoveMember removes /groups/{groupID}/members/{userID} and their ballot.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r)
	defer cancel()

	g, err := h.groups.Leave(ctx, chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, g, start)
}

// UpdateSearch moves the group's search area, which discards the current
// recommendation list.
func (h *Handler) UpdateSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req UpdateSearchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	g, err := h.groups.UpdateSearch(ctx, chi.URLParam(r, "groupID"), req.Location, req.RadiusKm)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, g, start)
}

// recommendationsResponse is the body of a recommendation run.
type recommendationsResponse struct {
	GroupID         string                    `json:"group_id"`
	RadiusKm        float64                   `json:"radius_km,omitempty"`
	Recommendations []models.RecommendedPlace `json:"recommendations"`
}

// Recommend runs the recommendation engine for the group. An optional
// radius_km query parameter overrides the group's radius for this run.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	groupID := chi.URLParam(r, "groupID")

	radius, err := getFloatParam(r, "radius_km", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if radius < 0 {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "radius_km must not be negative", nil)
		return
	}

	ctx, cancel := h.recommendContext(r)
	defer cancel()

	places, err := h.groups.Recommend(ctx, groupID, radius)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	if places == nil {
		places = []models.RecommendedPlace{}
	}

	logging.Ctx(ctx).Debug().
		Str("group_id", sanitizeLogValue(groupID)).
		Int("places", len(places)).
		Dur("took", time.Since(start)).
		Msg("recommendations served")

	respondSuccess(w, http.StatusOK, recommendationsResponse{
		GroupID:         groupID,
		RadiusKm:        radius,
		Recommendations: places,
	}, start)
}

// CastBallot stores the ranking of /groups/{groupID}/ballots/{userID},
// replacing an earlier ballot, and returns the updated results.
func (h *Handler) CastBallot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req BallotRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	results, err := h.groups.CastBallot(ctx, chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"), req.PlaceIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, results, start)
}

// Results returns the current tally.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r)
	defer cancel()

	results, err := h.groups.Results(ctx, chi.URLParam(r, "groupID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, results, start)
}

// SelectWinner closes voting with the tally winner.
func (h *Handler) SelectWinner(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.groups.SelectWinner)
}

// ArchiveGroup closes the group without a selection.
func (h *Handler) ArchiveGroup(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.groups.Archive)
}

// DisbandGroup closes the group because it will not meet.
func (h *Handler) DisbandGroup(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.groups.Disband)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, groupID string) (*models.Group, error)) {
	start := time.Now()
	ctx, cancel := h.requestContext(r)
	defer cancel()

	g, err := fn(ctx, chi.URLParam(r, "groupID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, g, start)
}

// GroupLive upgrades to a websocket that streams the group's events.
func (h *Handler) GroupLive(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "WebSocket service unavailable", nil)
		return
	}

	groupID := chi.URLParam(r, "groupID")
	ctx, cancel := h.requestContext(r)
	_, err := h.groups.Get(ctx, groupID)
	cancel()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn, groupID)
	h.wsHub.Register <- client
	client.Start()
}
