// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gatherly/internal/geo"
	"github.com/tomtom215/gatherly/internal/models"
)

// PutPlace creates or replaces the place at /places/{placeID}.
func (h *Handler) PutPlace(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PutPlaceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	place := &models.Place{
		ID:       chi.URLParam(r, "placeID"),
		Name:     req.Name,
		Address:  req.Address,
		Location: req.Location,
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.store.PutPlace(ctx, place); err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, place, start)
}

// GetPlace returns a place together with its rating aggregate.
func (h *Handler) GetPlace(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	placeID := chi.URLParam(r, "placeID")

	ctx, cancel := h.requestContext(r)
	defer cancel()

	place, err := h.store.GetPlace(ctx, placeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	stats, err := h.store.GetPlaceStats(ctx, placeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"place": place,
		"stats": stats,
	}, start)
}

// PlacesNear lists places within radius_km of lat,lng. The radius defaults
// to the engine default and may not exceed the engine maximum.
func (h *Handler) PlacesNear(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	lat, err := getRequiredFloatParam(r, "lat")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	lng, err := getRequiredFloatParam(r, "lng")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if !(geo.Location{Lat: lat, Lng: lng}).Valid() {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "lat must be in [-90, 90] and lng in [-180, 180]", nil)
		return
	}
	radius, err := getFloatParam(r, "radius_km", h.config.Recommend.DefaultRadiusKm)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	if radius <= 0 || radius > h.config.Recommend.MaxRadiusKm {
		respondError(w, http.StatusBadRequest, ErrCodeValidation,
			fmt.Sprintf("radius_km must be in (0, %g]", h.config.Recommend.MaxRadiusKm), nil)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	places, err := h.store.GetPlacesNear(ctx, lat, lng, radius)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if places == nil {
		places = []models.Place{}
	}
	respondSuccess(w, http.StatusOK, places, start)
}

// CreateRating records a user's rating of /places/{placeID}.
func (h *Handler) CreateRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateRatingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	rating, err := h.store.CreateRating(ctx, &models.Rating{
		UserID:       req.UserID,
		PlaceID:      chi.URLParam(r, "placeID"),
		OverallScore: *req.OverallScore,
		Categories:   req.Categories,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, rating, start)
}

// ListRatings returns every rating of a place, oldest first.
func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	placeID := chi.URLParam(r, "placeID")

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if _, err := h.store.GetPlace(ctx, placeID); err != nil {
		respondServiceError(w, err)
		return
	}
	ratings, err := h.store.GetRatingsForPlace(ctx, placeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}
	respondSuccess(w, http.StatusOK, ratings, start)
}

// PlaceStats returns the rating aggregate of a place.
func (h *Handler) PlaceStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	placeID := chi.URLParam(r, "placeID")

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if _, err := h.store.GetPlace(ctx, placeID); err != nil {
		respondServiceError(w, err)
		return
	}
	stats, err := h.store.GetPlaceStats(ctx, placeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, stats, start)
}

// UpdateRating replaces the scores of /ratings/{ratingID}.
func (h *Handler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req UpdateRatingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	rating, err := h.store.UpdateRating(ctx, chi.URLParam(r, "ratingID"), *req.OverallScore, req.Categories)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, rating, start)
}

// DeleteRating removes /ratings/{ratingID}.
func (h *Handler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.store.DeleteRating(ctx, chi.URLParam(r, "ratingID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
