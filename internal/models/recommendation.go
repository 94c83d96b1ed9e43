// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package models

import "github.com/tomtom215/gatherly/internal/geo"

// RecommendedPlace is one scored entry of a group's recommendation list.
// Lists are rebuilt on every run and only cached on the group.
type RecommendedPlace struct {
	// Rank is the 1-based position in the list.
	Rank int `json:"rank"`

	// PlaceID is the venue identifier.
	PlaceID string `json:"place_id"`

	// PlaceName is the venue's display name.
	PlaceName string `json:"place_name"`

	// Address is the venue's postal address.
	Address string `json:"address"`

	// Location is the venue coordinate.
	Location geo.Location `json:"location"`

	// PredictedScore is the group's expected enjoyment in [0, 10], one decimal.
	PredictedScore float64 `json:"predicted_score"`

	// ConfidenceScore is the trust in PredictedScore, two decimals.
	ConfidenceScore float64 `json:"confidence_score"`

	// MatchPercentage blends score, harmony and confidence into 0-100.
	MatchPercentage int `json:"match_percentage"`

	// Reasoning is a short human readable explanation.
	Reasoning string `json:"reasoning"`

	// Categories are the averaged category scores across all ratings.
	Categories CategoryScores `json:"categories"`

	// DistanceKm is the distance from the group's search location.
	DistanceKm float64 `json:"distance_km"`

	// HarmonyScore is how much the members agree, in [0, 1].
	HarmonyScore float64 `json:"harmony_score"`

	// RatingCount is the number of ratings the prediction was based on.
	RatingCount int `json:"rating_count"`
}

// RankingKey is the composite sort key for recommendation lists.
func (p *RecommendedPlace) RankingKey() float64 {
	return p.PredictedScore * p.ConfidenceScore * (float64(p.MatchPercentage) / 100)
}
