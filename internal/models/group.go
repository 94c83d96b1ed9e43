// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/gatherly/internal/geo"
	"github.com/tomtom215/gatherly/internal/personality"
	"github.com/tomtom215/gatherly/internal/voting"
)

// Group limits.
const (
	MaxGroupMembers       = 20
	DefaultSearchRadiusKm = 10.0
)

var (
	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("invalid group status transition")

	// ErrInvalidLocation is returned for coordinates outside the lat/lng ranges.
	ErrInvalidLocation = errors.New("invalid location")
)

// GroupStatus is the lifecycle state of a group.
type GroupStatus string

const (
	// GroupActive groups accept members, recommendation runs and ballots.
	GroupActive GroupStatus = "active"
	// GroupPlaceSelected is terminal: a winner was chosen.
	GroupPlaceSelected GroupStatus = "place_selected"
	// GroupArchived is terminal.
	GroupArchived GroupStatus = "archived"
	// GroupDisbanded is terminal.
	GroupDisbanded GroupStatus = "disbanded"
)

// IsTerminal reports whether no further transitions are possible.
func (s GroupStatus) IsTerminal() bool {
	return s != GroupActive
}

// CanTransitionTo reports whether s may move to next. Only an active group can
// change state, and it can only move to one of the terminal states.
func (s GroupStatus) CanTransitionTo(next GroupStatus) bool {
	if s != GroupActive {
		return false
	}
	switch next {
	case GroupPlaceSelected, GroupArchived, GroupDisbanded:
		return true
	default:
		return false
	}
}

// User is a registered person with their current personality profile.
type User struct {
	ID               string           `json:"id"`
	DisplayName      string           `json:"display_name"`
	AdjustmentFactor float64          `json:"adjustment_factor"`
	PersonalityType  personality.Type `json:"personality_type"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Member is the profile snapshot copied into a group when a user joins.
type Member struct {
	UserID           string           `json:"user_id"`
	DisplayName      string           `json:"display_name"`
	AdjustmentFactor float64          `json:"adjustment_factor"`
	PersonalityType  personality.Type `json:"personality_type"`
	JoinedAt         time.Time        `json:"joined_at"`
}

// MemberFromUser snapshots a user, clamping the adjustment factor to [-1,1].
func MemberFromUser(u *User, joinedAt time.Time) Member {
	factor := personality.Clamp(u.AdjustmentFactor)
	return Member{
		UserID:           u.ID,
		DisplayName:      u.DisplayName,
		AdjustmentFactor: factor,
		PersonalityType:  personality.Bucket(factor),
		JoinedAt:         joinedAt,
	}
}

// Group is a set of members planning one outing.
type Group struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	OwnerID           string             `json:"owner_id"`
	ChannelID         string             `json:"channel_id,omitempty"`
	Members           []Member           `json:"members"`
	SearchLocation    geo.Location       `json:"search_location"`
	SearchRadiusKm    float64            `json:"search_radius_km"`
	Status            GroupStatus        `json:"status"`
	RecommendedPlaces []RecommendedPlace `json:"recommended_places"`
	RecommendedAt     *time.Time         `json:"recommended_at,omitempty"`
	Ballots           voting.Ballots     `json:"ballots"`
	SelectedPlaceID   string             `json:"selected_place_id,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	return g.memberIndex(userID) >= 0
}

func (g *Group) memberIndex(userID string) int {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return i
		}
	}
	return -1
}

// RemoveMember drops userID and any ballot they cast. Returns false if the user
// was not a member.
func (g *Group) RemoveMember(userID string) bool {
	idx := g.memberIndex(userID)
	if idx < 0 {
		return false
	}
	g.Members = append(g.Members[:idx], g.Members[idx+1:]...)
	g.Ballots = g.Ballots.Remove(userID)
	return true
}

// IsRecommended reports whether placeID is in the group's current recommendation list.
func (g *Group) IsRecommended(placeID string) bool {
	for i := range g.RecommendedPlaces {
		if g.RecommendedPlaces[i].PlaceID == placeID {
			return true
		}
	}
	return false
}

// Transition moves the group to next or returns ErrInvalidTransition.
func (g *Group) Transition(next GroupStatus, at time.Time) error {
	if !g.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Status, next)
	}
	g.Status = next
	g.UpdatedAt = at
	return nil
}

// EffectiveRadius returns override when positive, otherwise the group's radius,
// falling back to DefaultSearchRadiusKm.
func (g *Group) EffectiveRadius(override float64) float64 {
	if override > 0 {
		return override
	}
	if g.SearchRadiusKm > 0 {
		return g.SearchRadiusKm
	}
	return DefaultSearchRadiusKm
}
