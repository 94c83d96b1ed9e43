// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/gatherly/internal/geo"
)

// Score bounds shared by ratings and predictions.
const (
	MinScore         = 0.0
	MaxScore         = 10.0
	MinCategoryScore = 1.0
	MaxCategoryScore = 10.0

	// DefaultCategoryScore stands in for a category a rater left blank.
	DefaultCategoryScore = 5.0
)

// ErrInvalidRating is returned for ratings with scores outside their ranges.
var ErrInvalidRating = errors.New("invalid rating")

// Place is a venue candidate. Places come from an external geo source and are
// only cached here so the recommendation engine can look them up by area.
type Place struct {
	ID       string       `json:"id" validate:"required,max=128"`
	Name     string       `json:"name" validate:"required,max=200"`
	Address  string       `json:"address" validate:"max=500"`
	Location geo.Location `json:"location"`
}

// Categories holds the per-aspect scores a rater may give a place.
// Every field is optional; a present value is within [1, 10].
type Categories struct {
	Ambiance *float64 `json:"ambiance,omitempty" validate:"omitempty,gte=1,lte=10"`
	Service  *float64 `json:"service,omitempty" validate:"omitempty,gte=1,lte=10"`
	Value    *float64 `json:"value,omitempty" validate:"omitempty,gte=1,lte=10"`
	Noise    *float64 `json:"noise,omitempty" validate:"omitempty,gte=1,lte=10"`
	Crowd    *float64 `json:"crowd,omitempty" validate:"omitempty,gte=1,lte=10"`
}

// CategoryScores is the averaged, fully populated form of Categories.
type CategoryScores struct {
	Ambiance float64 `json:"ambiance"`
	Service  float64 `json:"service"`
	Value    float64 `json:"value"`
	Noise    float64 `json:"noise"`
	Crowd    float64 `json:"crowd"`
}

// NeutralCategoryScores returns every category at DefaultCategoryScore.
func NeutralCategoryScores() CategoryScores {
	return CategoryScores{
		Ambiance: DefaultCategoryScore,
		Service:  DefaultCategoryScore,
		Value:    DefaultCategoryScore,
		Noise:    DefaultCategoryScore,
		Crowd:    DefaultCategoryScore,
	}
}

// Rating is one user's historical opinion of a place. The rater's adjustment
// factor is captured at rating time and is what similarity is measured against.
type Rating struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	UserAdjustmentFactor float64    `json:"user_adjustment_factor"`
	PlaceID              string     `json:"place_id"`
	OverallScore         float64    `json:"overall_score"`
	Categories           Categories `json:"categories"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Validate checks score ranges. NaN and infinities are rejected.
func (r *Rating) Validate() error {
	if !inRange(r.OverallScore, MinScore, MaxScore) {
		return fmt.Errorf("%w: overall score %v outside [0,10]", ErrInvalidRating, r.OverallScore)
	}
	if !inRange(r.UserAdjustmentFactor, -1, 1) {
		return fmt.Errorf("%w: adjustment factor %v outside [-1,1]", ErrInvalidRating, r.UserAdjustmentFactor)
	}
	for _, f := range r.Categories.fields() {
		if f.value != nil && !inRange(*f.value, MinCategoryScore, MaxCategoryScore) {
			return fmt.Errorf("%w: category %s score %v outside [1,10]", ErrInvalidRating, f.name, *f.value)
		}
	}
	return nil
}

type categoryField struct {
	name  string
	value *float64
}

func (c *Categories) fields() []categoryField {
	return []categoryField{
		{"ambiance", c.Ambiance},
		{"service", c.Service},
		{"value", c.Value},
		{"noise", c.Noise},
		{"crowd", c.Crowd},
	}
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

// PlaceStats is the aggregate kept alongside a place's ratings and recomputed
// whenever one of them is created, updated or deleted.
type PlaceStats struct {
	PlaceID      string         `json:"place_id"`
	RatingCount  int            `json:"rating_count"`
	AverageScore float64        `json:"average_score"`
	Categories   CategoryScores `json:"categories"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ComputePlaceStats aggregates ratings for a single place.
// With no ratings the average is 0 and categories are neutral.
func ComputePlaceStats(placeID string, ratings []Rating) PlaceStats {
	stats := PlaceStats{
		PlaceID:     placeID,
		RatingCount: len(ratings),
		Categories:  AverageCategories(ratings),
	}
	if len(ratings) == 0 {
		return stats
	}

	var sum float64
	for i := range ratings {
		sum += ratings[i].OverallScore
	}
	stats.AverageScore = RoundTo(sum/float64(len(ratings)), 1)
	return stats
}

// AverageCategories averages each category across ratings, counting a missing
// category as DefaultCategoryScore. Results are rounded to one decimal.
func AverageCategories(ratings []Rating) CategoryScores {
	if len(ratings) == 0 {
		return NeutralCategoryScores()
	}

	var sum CategoryScores
	for i := range ratings {
		c := &ratings[i].Categories
		sum.Ambiance += valueOrDefault(c.Ambiance)
		sum.Service += valueOrDefault(c.Service)
		sum.Value += valueOrDefault(c.Value)
		sum.Noise += valueOrDefault(c.Noise)
		sum.Crowd += valueOrDefault(c.Crowd)
	}

	n := float64(len(ratings))
	return CategoryScores{
		Ambiance: RoundTo(sum.Ambiance/n, 1),
		Service:  RoundTo(sum.Service/n, 1),
		Value:    RoundTo(sum.Value/n, 1),
		Noise:    RoundTo(sum.Noise/n, 1),
		Crowd:    RoundTo(sum.Crowd/n, 1),
	}
}

func valueOrDefault(v *float64) float64 {
	if v == nil {
		return DefaultCategoryScore
	}
	return *v
}

// RoundTo rounds v to the given number of decimal places (half away from zero).
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
