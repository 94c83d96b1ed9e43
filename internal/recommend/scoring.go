// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package recommend

import (
	"fmt"
	"math"

	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/personality"
)

const (
	// SimilarityWindow is the largest factor difference at which a rating
	// still counts as coming from a similar person.
	SimilarityWindow = 0.3

	// similarRatersForFullConfidence is how many in-window ratings it takes,
	// at perfect similarity, to reach confidence 1.
	similarRatersForFullConfidence = 10

	// fallbackRatersForCap and fallbackConfidenceCap bound the confidence of
	// the unweighted fallback.
	fallbackRatersForCap  = 20
	fallbackConfidenceCap = 0.5
)

// ScoreMember predicts how much member will enjoy a place from its ratings.
//
// Ratings whose rater factor lies within SimilarityWindow of the member's are
// weighted by (1 - d/0.3)^2. Without any such rating the member gets the plain
// mean of all ratings and a confidence of at most 0.5. ratings must not be empty.
//
//nolint:gocritic // hugeParam: member is a small value snapshot
func ScoreMember(member models.Member, ratings []models.Rating) MemberScore {
	factor := personality.Clamp(member.AdjustmentFactor)

	var (
		weightedSum, weightSum float64
		windowSum, simSum      float64
		inWindow               int
	)

	for i := range ratings {
		d := math.Abs(factor - personality.Clamp(ratings[i].UserAdjustmentFactor))
		if d > SimilarityWindow {
			continue
		}

		sim := 1 - d/SimilarityWindow
		w := sim * sim

		weightedSum += ratings[i].OverallScore * w
		weightSum += w
		windowSum += ratings[i].OverallScore
		simSum += sim
		inWindow++
	}

	if inWindow == 0 {
		return MemberScore{
			UserID:     member.UserID,
			Score:      meanScore(ratings),
			Confidence: math.Min(float64(len(ratings))/fallbackRatersForCap, fallbackConfidenceCap),
		}
	}

	score := windowSum / float64(inWindow)
	if weightSum > 0 {
		score = weightedSum / weightSum
	}

	avgSim := simSum / float64(inWindow)
	confidence := math.Min(float64(inWindow)/similarRatersForFullConfidence*avgSim, 1)

	return MemberScore{
		UserID:     member.UserID,
		Score:      score,
		Confidence: confidence,
	}
}

func meanScore(ratings []models.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for i := range ratings {
		sum += ratings[i].OverallScore
	}
	return sum / float64(len(ratings))
}

// checkRatings rejects ratings the scorer cannot use.
func checkRatings(ratings []models.Rating) error {
	for i := range ratings {
		r := &ratings[i]
		if math.IsNaN(r.OverallScore) || r.OverallScore < models.MinScore || r.OverallScore > models.MaxScore {
			return fmt.Errorf("%w: rating %s has score %v", ErrMalformedRating, r.ID, r.OverallScore)
		}
		if math.IsNaN(r.UserAdjustmentFactor) || math.IsInf(r.UserAdjustmentFactor, 0) {
			return fmt.Errorf("%w: rating %s has adjustment factor %v", ErrMalformedRating, r.ID, r.UserAdjustmentFactor)
		}
	}
	return nil
}
