// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package recommend

import (
	"context"
	"errors"

	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/personality"
)

var (
	// ErrMalformedRating marks a rating that cannot be scored (NaN or out of
	// range). The engine skips the affected place instead of failing the run.
	ErrMalformedRating = errors.New("malformed rating")

	// ErrScoringPanic wraps a panic recovered while scoring one place. The
	// place is skipped like one with malformed ratings.
	ErrScoringPanic = errors.New("panic while scoring place")

	// ErrNoDataProvider is returned when the engine runs without a provider.
	ErrNoDataProvider = errors.New("no data provider configured")

	// ErrEmptyGroup is returned for a group without members.
	ErrEmptyGroup = errors.New("group has no members")
)

// DataProvider supplies candidate places and their ratings.
//
// Implementations must be safe for concurrent use; the engine queries ratings
// for several places at once.
type DataProvider interface {
	// GetPlacesNear returns places within radiusKm of the point.
	GetPlacesNear(ctx context.Context, lat, lng, radiusKm float64) ([]models.Place, error)

	// GetRatingsForPlace returns every rating of a place.
	GetRatingsForPlace(ctx context.Context, placeID string) ([]models.Rating, error)

	// GetRatingCountForPlace returns the number of ratings of a place.
	GetRatingCountForPlace(ctx context.Context, placeID string) (int, error)
}

// MemberScore is one member's predicted score for a place.
type MemberScore struct {
	UserID     string  `json:"user_id"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// GroupMetrics summarises the personality composition of a group.
type GroupMetrics struct {
	AvgFactor   float64            `json:"avg_factor"`
	MinFactor   float64            `json:"min_factor"`
	MaxFactor   float64            `json:"max_factor"`
	Spread      float64            `json:"spread"`
	MemberCount int                `json:"member_count"`
	Types       []personality.Type `json:"types"`
}

// ComputeGroupMetrics derives GroupMetrics from the member snapshots.
// Factors are clamped to [-1, 1].
func ComputeGroupMetrics(members []models.Member) GroupMetrics {
	if len(members) == 0 {
		return GroupMetrics{}
	}

	m := GroupMetrics{
		MinFactor:   1,
		MaxFactor:   -1,
		MemberCount: len(members),
		Types:       make([]personality.Type, 0, len(members)),
	}

	var sum float64
	for i := range members {
		f := personality.Clamp(members[i].AdjustmentFactor)
		sum += f
		if f < m.MinFactor {
			m.MinFactor = f
		}
		if f > m.MaxFactor {
			m.MaxFactor = f
		}
		m.Types = append(m.Types, personality.Bucket(f))
	}

	m.AvgFactor = sum / float64(len(members))
	m.Spread = m.MaxFactor - m.MinFactor
	return m
}

// PlaceScore is the group-level result for one place before it is joined with
// the place's descriptive fields.
type PlaceScore struct {
	PredictedScore  float64
	ConfidenceScore float64
	MatchPercentage int
	HarmonyScore    float64
	IsNew           bool
}
