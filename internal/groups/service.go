// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package groups runs the lifecycle of a planning group: membership, search
// area, recommendation runs, ranked-choice ballots and the final selection.
//
// Every mutation goes through Store.UpdateGroup, which serialises writers per
// group, and is followed by a live event on the Publisher.
package groups

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/gatherly/internal/geo"
	"github.com/tomtom215/gatherly/internal/metrics"
	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/voting"
	"github.com/tomtom215/gatherly/internal/websocket"
)

var (
	// ErrGroupNotActive is returned when a group in a terminal state is modified.
	ErrGroupNotActive = errors.New("group is not active")

	// ErrNotMember is returned when a non-member leaves or votes.
	ErrNotMember = errors.New("user is not a member of the group")

	// ErrAlreadyMember is returned when a member joins again.
	ErrAlreadyMember = errors.New("user is already a member of the group")

	// ErrGroupFull is returned when MaxGroupMembers is reached.
	ErrGroupFull = errors.New("group is full")

	// ErrNotRecommended is returned for ballots naming a place outside the
	// group's recommendation list.
	ErrNotRecommended = errors.New("place is not in the group's recommendations")

	// ErrNoVotes is returned when a winner is requested before any ballot.
	ErrNoVotes = errors.New("no ballots have been cast")

	// ErrInvalidGroup is returned for malformed create or search input.
	ErrInvalidGroup = errors.New("invalid group")
)

// Store is the persistence the service needs.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateGroup(ctx context.Context, g *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	UpdateGroup(ctx context.Context, id string, fn func(g *models.Group) error) (*models.Group, error)
}

// Recommender produces a ranked recommendation list for a group.
type Recommender interface {
	GenerateGroupRecommendations(ctx context.Context, group *models.Group, radiusKm float64) ([]models.RecommendedPlace, error)
}

// Publisher receives live group events.
type Publisher interface {
	Publish(groupID, messageType string, data any)
}

// Service implements group operations.
type Service struct {
	store       Store
	recommender Recommender
	publisher   Publisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates a group service. publisher may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(store Store, recommender Recommender, publisher Publisher, logger zerolog.Logger) *Service {
	return &Service{
		store:       store,
		recommender: recommender,
		publisher:   publisher,
		logger:      logger.With().Str("component", "groups").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput describes a new group.
type CreateInput struct {
	Name      string
	OwnerID   string
	ChannelID string
	Location  geo.Location
	RadiusKm  float64
}

// Create stores a new active group whose first member is the owner.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidGroup)
	}
	if err := checkSearch(in.Location, in.RadiusKm); err != nil {
		return nil, err
	}

	owner, err := s.store.GetUser(ctx, in.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	now := s.now()
	g := &models.Group{
		ID:             uuid.New().String(),
		Name:           name,
		OwnerID:        owner.ID,
		ChannelID:      in.ChannelID,
		Members:        []models.Member{models.MemberFromUser(owner, now)},
		SearchLocation: in.Location,
		SearchRadiusKm: in.RadiusKm,
		Status:         models.GroupActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info().Str("group_id", g.ID).Str("owner_id", owner.ID).Msg("group created")
	return g, nil
}

// Get loads a group.
func (s *Service) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// Join adds a user, snapshotting their current personality profile.
func (s *Service) Join(ctx context.Context, groupID, userID string) (*models.Group, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	var member models.Member
	g, err := s.store.UpdateGroup(ctx, groupID, func(g *models.Group) error {
		if err := requireActive(g); err != nil {
			return err
		}
		if g.HasMember(userID) {
			return ErrAlreadyMember
		}
		if len(g.Members) >= models.MaxGroupMembers {
			return fmt.Errorf("%w: limit is %d", ErrGroupFull, models.MaxGroupMembers)
		}
		now := s.now()
		member = models.MemberFromUser(user, now)
		g.Members = append(g.Members, member)
		g.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(groupID, websocket.MessageTypeMemberJoined, member)
	return g, nil
}

// Leave removes a member and any ballot they cast.
func (s *Service) Leave(ctx context.Context, groupID, userID string) (*models.Group, error) {
	g, err := s.store.UpdateGroup(ctx, groupID, func(g *models.Group) error {
		if err := requireActive(g); err != nil {
			return err
		}
		if !g.RemoveMember(userID) {
			return ErrNotMember
		}
		g.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(groupID, websocket.MessageTypeMemberLeft, map[string]string{"user_id": userID})
	return g, nil
}

// UpdateSearch changes the search area. The cached recommendation list no
// longer describes the new area and is cleared; ballots are kept.
func (s *Service) UpdateSearch(ctx context.Context, groupID string, loc geo.Location, radiusKm float64) (*models.Group, error) {
	if err := checkSearch(loc, radiusKm); err != nil {
		return nil, err
	}

	g, err := s.store.UpdateGroup(ctx, groupID, func(g *models.Group) error {
		if err := requireActive(g); err != nil {
			return err
		}
		g.SearchLocation = loc
		g.SearchRadiusKm = radiusKm
		g.RecommendedPlaces = nil
		g.RecommendedAt = nil
		g.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(groupID, websocket.MessageTypeSearchUpdated, map[string]any{
		"location":  loc,
		"radius_km": radiusKm,
	})
	return g, nil
}

// Recommend runs the engine for the group and stores the resulting list.
// radiusKm overrides the group's radius when positive.
func (s *Service) Recommend(ctx context.Context, groupID string, radiusKm float64) ([]models.RecommendedPlace, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(g); err != nil {
		return nil, err
	}

	// Scoring runs outside the group lock; the list is stored only if the
	// group is still active afterwards.
	places, err := s.recommender.GenerateGroupRecommendations(ctx, g, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("generate recommendations: %w", err)
	}

	_, err = s.store.UpdateGroup(ctx, groupID, func(g *models.Group) error {
		if err := requireActive(g); err != nil {
			return err
		}
		now := s.now()
		g.RecommendedPlaces = places
		g.RecommendedAt = &now
		g.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("group_id", groupID).Int("places", len(places)).Msg("recommendations stored")
	s.publish(groupID, websocket.MessageTypeRecommendationsReady, places)
	return places, nil
}

// CastBallot records a member's ranking, replacing any earlier ballot.
// When the group has a recommendation list every ranked place must be on it.
func (s *Service) CastBallot(ctx context.Context, groupID, userID string, placeIDs []string) (*Results, error) {
	if err := voting.ValidateBallot(placeIDs); err != nil {
		return nil, err
	}

	g, err := s.store.UpdateGroup(ctx, groupID, func(g *models.Group) error {
		if err := requireActive(g); err != nil {
			return err
		}
		if !g.HasMember(userID) {
			return ErrNotMember
		}
		if len(g.RecommendedPlaces) > 0 {
			for _, id := range placeIDs {
				if !g.IsRecommended(id) {
					return fmt.Errorf("%w: %s", ErrNotRecommended, id)
				}
			}
		}
		g.Ballots = g.Ballots.Set(userID, placeIDs)
		g.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordVote()
	results := tallyGroup(g)
	s.publish(groupID, websocket.MessageTypeBallotCast, map[string]any{
		"user_id": userID,
		"results": results,
	})
	return results, nil
}

// Results tallies the group's ballots.
func (s *Service) Results(ctx context.Context, groupID string) (*Results, error) {
	g, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return tallyGroup(g), nil
}

// SelectWinner closes voting: the tally winner becomes the selected place and
// the group moves to place_selected.
func (s *Service) SelectWinner(ctx context.Context, groupID string) (*models.Group, error) {
	g, err := s.store.UpdateGroup(ctx, groupID, func(g *models.Group) error {
		if err := requireActive(g); err != nil {
			return err
		}
		winner, ok := voting.Tally(g.Ballots).Winner()
		if !ok {
			return ErrNoVotes
		}
		g.SelectedPlaceID = winner
		return g.Transition(models.GroupPlaceSelected, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("group_id", groupID).Str("place_id", g.SelectedPlaceID).Msg("winner selected")
	s.publishStatus(g)
	return g, nil
}

// Archive closes the group without a selection.
func (s *Service) Archive(ctx context.Context, groupID string) (*models.Group, error) {
	return s.transition(ctx, groupID, models.GroupArchived)
}

// Disband closes the group because it will not meet.
func (s *Service) Disband(ctx context.Context, groupID string) (*models.Group, error) {
	return s.transition(ctx, groupID, models.GroupDisbanded)
}

func (s *Service) transition(ctx context.Context, groupID string, next models.GroupStatus) (*models.Group, error) {
	g, err := s.store.UpdateGroup(ctx, groupID, func(g *models.Group) error {
		if err := requireActive(g); err != nil {
			return err
		}
		return g.Transition(next, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.publishStatus(g)
	return g, nil
}

func (s *Service) publishStatus(g *models.Group) {
	s.publish(g.ID, websocket.MessageTypeGroupStatus, map[string]string{
		"status":            string(g.Status),
		"selected_place_id": g.SelectedPlaceID,
	})
}

func (s *Service) publish(groupID, messageType string, data any) {
	if s.publisher != nil {
		s.publisher.Publish(groupID, messageType, data)
	}
}

func requireActive(g *models.Group) error {
	if g.Status != models.GroupActive {
		return fmt.Errorf("%w: status is %s", ErrGroupNotActive, g.Status)
	}
	return nil
}

func checkSearch(loc geo.Location, radiusKm float64) error {
	if !loc.Valid() {
		return fmt.Errorf("%w: %+v", models.ErrInvalidLocation, loc)
	}
	if radiusKm < 0 || math.IsNaN(radiusKm) {
		return fmt.Errorf("%w: radius must be a non-negative number", ErrInvalidGroup)
	}
	return nil
}
