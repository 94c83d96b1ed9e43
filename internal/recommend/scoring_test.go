// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package recommend

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/personality"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func rating(factor, score float64) models.Rating {
	return models.Rating{UserAdjustmentFactor: factor, OverallScore: score}
}

func TestScoreMember(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		factor         float64
		ratings        []models.Rating
		wantScore      float64
		wantConfidence float64
	}{
		{
			name:           "weighted by similarity",
			factor:         0,
			ratings:        []models.Rating{rating(0, 8), rating(0.15, 6), rating(0.9, 2)},
			wantScore:      7.6,  // (8*1 + 6*0.25) / 1.25
			wantConfidence: 0.15, // 2/10 * mean(1, 0.5)
		},
		{
			name:           "fallback to unweighted mean",
			factor:         -1,
			ratings:        []models.Rating{rating(0.5, 4), rating(1, 6)},
			wantScore:      5,
			wantConfidence: 0.1,
		},
		{
			name:           "window edge falls back to in-window mean",
			factor:         0,
			ratings:        []models.Rating{rating(0.3, 4), rating(-0.3, 8), rating(1, 1)},
			wantScore:      6,
			wantConfidence: 0,
		},
		{
			name:           "member factor clamped",
			factor:         1.5,
			ratings:        []models.Rating{rating(1, 9), rating(-1, 1)},
			wantScore:      9,
			wantConfidence: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ScoreMember(models.Member{UserID: "u1", AdjustmentFactor: tt.factor}, tt.ratings)
			if !approxEqual(got.Score, tt.wantScore) {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if !approxEqual(got.Confidence, tt.wantConfidence) {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
			if got.UserID != "u1" {
				t.Errorf("UserID = %q", got.UserID)
			}
		})
	}
}

func TestScoreMember_ConfidenceCaps(t *testing.T) {
	t.Parallel()

	similar := make([]models.Rating, 25)
	distant := make([]models.Rating, 30)
	for i := range similar {
		similar[i] = rating(0.5, 7)
	}
	for i := range distant {
		distant[i] = rating(-0.8, 7)
	}

	member := models.Member{AdjustmentFactor: 0.5}
	if got := ScoreMember(member, similar).Confidence; got != 1 {
		t.Errorf("similar confidence = %v, want 1", got)
	}
	if got := ScoreMember(member, distant).Confidence; got != 0.5 {
		t.Errorf("fallback confidence = %v, want 0.5", got)
	}
}

func TestScorePlace_NewPlace(t *testing.T) {
	t.Parallel()

	got := ScorePlace([]MemberScore{{Score: 9, Confidence: 1}}, 0, 1)
	want := PlaceScore{PredictedScore: 5, ConfidenceScore: 0.1, MatchPercentage: 50, IsNew: true}
	if got != want {
		t.Errorf("ScorePlace() = %+v, want %+v", got, want)
	}
}

func TestScorePlace(t *testing.T) {
	t.Parallel()

	pair := []MemberScore{{Score: 8, Confidence: 0.5}, {Score: 6, Confidence: 0.3}}

	tests := []struct {
		name        string
		scores      []MemberScore
		total       int
		distanceKm  float64
		wantScore   float64
		wantConf    float64
		wantMatch   int
		wantHarmony float64
	}{
		{
			// avg 7, sd 1, harmony 0.8, agreement 0.9, data 0.5
			name: "at search location", scores: pair, total: 10, distanceKm: 0,
			wantScore: 7, wantConf: 0.57, wantMatch: 69, wantHarmony: 0.8,
		},
		{
			name: "distance penalty", scores: pair, total: 10, distanceKm: 3,
			wantScore: 7, wantConf: 0.46, wantMatch: 66, wantHarmony: 0.8,
		},
		{
			name: "beyond decay distance", scores: pair, total: 10, distanceKm: 20,
			wantScore: 7, wantConf: 0, wantMatch: 52, wantHarmony: 0.8,
		},
		{
			name:   "full agreement and data",
			scores: []MemberScore{{Score: 9, Confidence: 1}, {Score: 9, Confidence: 1}},
			total:  25, distanceKm: 0,
			wantScore: 9, wantConf: 1, wantMatch: 96, wantHarmony: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ScorePlace(tt.scores, tt.total, tt.distanceKm)
			if got.PredictedScore != tt.wantScore {
				t.Errorf("PredictedScore = %v, want %v", got.PredictedScore, tt.wantScore)
			}
			if got.ConfidenceScore != tt.wantConf {
				t.Errorf("ConfidenceScore = %v, want %v", got.ConfidenceScore, tt.wantConf)
			}
			if got.MatchPercentage != tt.wantMatch {
				t.Errorf("MatchPercentage = %v, want %v", got.MatchPercentage, tt.wantMatch)
			}
			if !approxEqual(got.HarmonyScore, tt.wantHarmony) {
				t.Errorf("HarmonyScore = %v, want %v", got.HarmonyScore, tt.wantHarmony)
			}
			if got.IsNew {
				t.Error("IsNew = true for a rated place")
			}
		})
	}
}

// Agreement is deliberately left unfloored: a wide enough spread drives the
// overall confidence negative while harmony stops at zero.
func TestAgreementFactor_NotClamped(t *testing.T) {
	t.Parallel()

	if got := AgreementFactor(12); !approxEqual(got, -0.2) {
		t.Errorf("AgreementFactor(12) = %v, want -0.2", got)
	}
	if got := HarmonyScore(12); got != 0 {
		t.Errorf("HarmonyScore(12) = %v, want 0", got)
	}

	wide := []MemberScore{{Score: -20}, {Score: 20}}
	if got := ScorePlace(wide, 1, 0); got.ConfidenceScore >= 0 {
		t.Errorf("ConfidenceScore = %v, want negative for sd 20", got.ConfidenceScore)
	}
}

func TestFactors(t *testing.T) {
	t.Parallel()

	if got := DistanceFactor(7.5); got != 0.5 {
		t.Errorf("DistanceFactor(7.5) = %v, want 0.5", got)
	}
	if got := DistanceFactor(30); got != 0 {
		t.Errorf("DistanceFactor(30) = %v, want 0", got)
	}
	if got := DataFactor(5); got != 0.25 {
		t.Errorf("DataFactor(5) = %v, want 0.25", got)
	}
	if got := DataFactor(40); got != 1 {
		t.Errorf("DataFactor(40) = %v, want 1", got)
	}
	if got := populationStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 5); got != 2 {
		t.Errorf("populationStdDev() = %v, want 2", got)
	}
}

func TestCheckRatings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ratings []models.Rating
		wantErr bool
	}{
		{"valid", []models.Rating{rating(0, 0), rating(1, 10)}, false},
		{"nan score", []models.Rating{rating(0, math.NaN())}, true},
		{"score above range", []models.Rating{rating(0, 11)}, true},
		{"negative score", []models.Rating{rating(0, -1)}, true},
		{"nan factor", []models.Rating{rating(math.NaN(), 5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := checkRatings(tt.ratings)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkRatings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedRating) {
				t.Errorf("error %v does not wrap ErrMalformedRating", err)
			}
		})
	}
}

func TestComputeGroupMetrics(t *testing.T) {
	t.Parallel()

	members := []models.Member{
		{UserID: "a", AdjustmentFactor: -0.5},
		{UserID: "b", AdjustmentFactor: 0.1},
		{UserID: "c", AdjustmentFactor: 1.4},
	}
	m := ComputeGroupMetrics(members)

	if m.MemberCount != 3 {
		t.Errorf("MemberCount = %d", m.MemberCount)
	}
	if m.MinFactor != -0.5 || m.MaxFactor != 1 {
		t.Errorf("Min/Max = %v/%v, want -0.5/1", m.MinFactor, m.MaxFactor)
	}
	if !approxEqual(m.Spread, 1.5) {
		t.Errorf("Spread = %v, want 1.5", m.Spread)
	}
	if !approxEqual(m.AvgFactor, 0.2) {
		t.Errorf("AvgFactor = %v, want 0.2", m.AvgFactor)
	}
	wantTypes := []personality.Type{personality.Introvert, personality.Ambivert, personality.Extrovert}
	for i, want := range wantTypes {
		if m.Types[i] != want {
			t.Errorf("Types[%d] = %q, want %q", i, m.Types[i], want)
		}
	}

	if empty := ComputeGroupMetrics(nil); empty.MemberCount != 0 {
		t.Errorf("empty metrics = %+v", empty)
	}
}

func TestGenerateReasoning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		harmony    float64
		total      int
		distanceKm float64
		metrics    GroupMetrics
		want       string
	}{
		{
			name: "all clauses", harmony: 0.9, total: 25, distanceKm: 1,
			metrics: GroupMetrics{AvgFactor: 0.5, Spread: 0.2},
			want:    "Excellent match for everyone in the group • Based on 25 ratings • Very close by • Great for extroverted groups",
		},
		{
			name: "mid distance, neutral group", harmony: 0.7, total: 12, distanceKm: 3.46,
			want: "Good fit for most of the group • 12 ratings available • 3.5km away",
		},
		{
			name: "half tenth rounds up", harmony: 0.7, total: 12, distanceKm: 3.25,
			want: "Good fit for most of the group • 12 ratings available • 3.3km away",
		},
		{
			name: "thresholds are strict", harmony: 0.8, total: 5, distanceKm: 5,
			metrics: GroupMetrics{Spread: 0.8},
			want:    "Good fit for most of the group • Limited ratings data • Balances diverse personalities",
		},
		{
			name: "introverted group far away", harmony: 0.6, total: 10, distanceKm: 9,
			metrics: GroupMetrics{AvgFactor: -0.5, Spread: 0.4},
			want:    "Decent option with trade-offs • 10 ratings available • Perfect for introverted gatherings",
		},
		{
			name: "spread wins over average", harmony: 0.2, total: 20, distanceKm: 4.99,
			metrics: GroupMetrics{AvgFactor: 0.9, Spread: 0.7},
			want:    "Decent option with trade-offs • Based on 20 ratings • 5.0km away • Balances diverse personalities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GenerateReasoning(tt.harmony, tt.total, tt.distanceKm, tt.metrics); got != tt.want {
				t.Errorf("GenerateReasoning() =\n  %q\nwant\n  %q", got, tt.want)
			}
		})
	}
}
