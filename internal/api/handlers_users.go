// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gatherly/internal/logging"
	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/personality"
	"github.com/tomtom215/gatherly/internal/store"
)

// PutUser creates or replaces the profile at /users/{userID}.
func (h *Handler) PutUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")

	var req PutUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	user := &models.User{ID: userID, DisplayName: req.DisplayName}
	status := http.StatusCreated
	existing, err := h.store.GetUser(ctx, userID)
	switch {
	case err == nil:
		status = http.StatusOK
		user.AdjustmentFactor = existing.AdjustmentFactor
	case !errors.Is(err, store.ErrNotFound):
		respondServiceError(w, err)
		return
	}
	if req.AdjustmentFactor != nil {
		user.AdjustmentFactor = *req.AdjustmentFactor
	}

	saved, err := h.store.PutUser(ctx, user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, status, saved, start)
}

// GetUser returns the profile at /users/{userID}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r)
	defer cancel()

	user, err := h.store.GetUser(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, user, start)
}

// quizResponse pairs the scored quiz with the updated profile.
type quizResponse struct {
	Result personality.QuizResult `json:"result"`
	User   *models.User           `json:"user"`
}

// SubmitQuiz scores a personality quiz and stores the resulting adjustment
// factor on the user. Ratings already made keep the factor they captured.
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")

	var req QuizRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := personality.ScoreQuiz(req.Answers)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	user, err := h.store.SetAdjustmentFactor(ctx, userID, result.AdjustmentFactor)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logging.Ctx(ctx).Info().
		Str("user_id", sanitizeLogValue(userID)).
		Float64("adjustment_factor", user.AdjustmentFactor).
		Str("personality_type", string(user.PersonalityType)).
		Msg("quiz scored")

	respondSuccess(w, http.StatusOK, quizResponse{Result: result, User: user}, start)
}
