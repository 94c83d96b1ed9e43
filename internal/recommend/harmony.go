// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package recommend

import (
	"math"

	"github.com/tomtom215/gatherly/internal/models"
)

// Group scoring constants.
const (
	// NewPlaceScore, NewPlaceConfidence and NewPlaceMatch describe a place
	// nobody has rated yet.
	NewPlaceScore      = 5.0
	NewPlaceConfidence = 0.1
	NewPlaceMatch      = 50

	// DistanceDecayKm is where the distance factor reaches zero. It does not
	// depend on the group's search radius.
	DistanceDecayKm = 15.0

	harmonyScale   = 5.0
	agreementScale = 10.0

	ratingsForFullData = 20

	confidenceMemberWeight    = 0.5
	confidenceAgreementWeight = 0.3
	confidenceDataWeight      = 0.2

	matchScoreWeight      = 40
	matchHarmonyWeight    = 30
	matchConfidenceWeight = 30
)

// ScorePlace combines member predictions into the group's view of a place.
//
// totalRatings is the place's rating count; zero short-circuits to the neutral
// new-place result. distanceKm is measured from the group's search location.
func ScorePlace(memberScores []MemberScore, totalRatings int, distanceKm float64) PlaceScore {
	if totalRatings == 0 || len(memberScores) == 0 {
		return PlaceScore{
			PredictedScore:  NewPlaceScore,
			ConfidenceScore: NewPlaceConfidence,
			MatchPercentage: NewPlaceMatch,
			IsNew:           true,
		}
	}

	scores := make([]float64, len(memberScores))
	var confSum float64
	for i := range memberScores {
		scores[i] = memberScores[i].Score
		confSum += memberScores[i].Confidence
	}

	avg := mean(scores)
	sd := populationStdDev(scores, avg)
	harmony := HarmonyScore(sd)

	confidence := (confSum/float64(len(memberScores)))*confidenceMemberWeight +
		AgreementFactor(sd)*confidenceAgreementWeight +
		DataFactor(totalRatings)*confidenceDataWeight
	confidence *= DistanceFactor(distanceKm)

	match := math.Round((avg/models.MaxScore)*matchScoreWeight +
		harmony*matchHarmonyWeight +
		confidence*matchConfidenceWeight)

	return PlaceScore{
		PredictedScore:  models.RoundTo(avg, 1),
		ConfidenceScore: models.RoundTo(confidence, 2),
		MatchPercentage: int(match),
		HarmonyScore:    harmony,
	}
}

// HarmonyScore maps the spread of member scores to [0, 1].
func HarmonyScore(stdDev float64) float64 {
	return math.Max(0, 1-stdDev/harmonyScale)
}

// AgreementFactor is 1 - stdDev/10. Unlike HarmonyScore it is not floored, so
// a very wide spread can push it, and the resulting confidence, below zero.
func AgreementFactor(stdDev float64) float64 {
	return 1 - stdDev/agreementScale
}

// DistanceFactor decays linearly from 1 at the search location to 0 at
// DistanceDecayKm.
func DistanceFactor(distanceKm float64) float64 {
	return math.Max(0, 1-distanceKm/DistanceDecayKm)
}

// DataFactor grows linearly with the rating count and saturates at 20 ratings.
func DataFactor(totalRatings int) float64 {
	return math.Min(float64(totalRatings)/ratingsForFullData, 1)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev divides by n, not n-1.
func populationStdDev(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - avg
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)))
}
