// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package api

import (
	"github.com/tomtom215/gatherly/internal/geo"
	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/personality"
)

// PutUserRequest creates or replaces a user profile. Omitting
// adjustment_factor keeps the stored value, or neutral for a new user.
type PutUserRequest struct {
	DisplayName      string   `json:"display_name" validate:"required,max=100"`
	AdjustmentFactor *float64 `json:"adjustment_factor" validate:"omitempty,adjustment"`
}

// QuizRequest is a personality quiz submission.
type QuizRequest struct {
	Answers []personality.Answer `json:"answers" validate:"required,min=1,max=20,dive"`
}

// PutPlaceRequest creates or replaces a place. The ID comes from the path.
type PutPlaceRequest struct {
	Name     string       `json:"name" validate:"required,max=200"`
	Address  string       `json:"address" validate:"max=500"`
	Location geo.Location `json:"location"`
}

// CreateRatingRequest rates a place. A user rates a place at most once.
type CreateRatingRequest struct {
	UserID       string            `json:"user_id" validate:"required,max=128"`
	OverallScore *float64          `json:"overall_score" validate:"required,gte=0,lte=10"`
	Categories   models.Categories `json:"categories"`
}

// UpdateRatingRequest replaces a rating's scores.
type UpdateRatingRequest struct {
	OverallScore *float64          `json:"overall_score" validate:"required,gte=0,lte=10"`
	Categories   models.Categories `json:"categories"`
}

// CreateGroupRequest creates a group owned by an existing user.
type CreateGroupRequest struct {
	Name      string       `json:"name" validate:"required,max=100"`
	OwnerID   string       `json:"owner_id" validate:"required,max=128"`
	ChannelID string       `json:"channel_id" validate:"max=128"`
	Location  geo.Location `json:"location"`
	RadiusKm  float64      `json:"radius_km" validate:"gte=0"`
}

// AddMemberRequest adds a user to a group.
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

// UpdateSearchRequest moves a group's search area.
type UpdateSearchRequest struct {
	Location geo.Location `json:"location"`
	RadiusKm float64      `json:"radius_km" validate:"gte=0"`
}

// BallotRequest ranks up to three places, most preferred first.
type BallotRequest struct {
	PlaceIDs []string `json:"place_ids" validate:"ballot"`
}

// PutSessionRequest creates or replaces a planning session.
type PutSessionRequest struct {
	GroupID string `json:"group_id" validate:"omitempty,max=128"`
	Stage   string `json:"stage" validate:"omitempty,oneof=onboarding forming searching voting decided"`
}
