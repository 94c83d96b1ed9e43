// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/gatherly/internal/personality"
	"github.com/tomtom215/gatherly/internal/voting"
)

func ptr(v float64) *float64 { return &v }

func TestAverageCategories_MissingDefaultsToFive(t *testing.T) {
	t.Parallel()

	ratings := []Rating{
		{Categories: Categories{Ambiance: ptr(9), Noise: ptr(2)}},
		{Categories: Categories{Ambiance: ptr(7)}},
	}

	got := AverageCategories(ratings)
	want := CategoryScores{
		Ambiance: 8,
		Service:  5,
		Value:    5,
		Noise:    3.5, // (2 + 5) / 2
		Crowd:    5,
	}
	if got != want {
		t.Errorf("AverageCategories() = %+v, want %+v", got, want)
	}
}

func TestAverageCategories_NoRatings(t *testing.T) {
	t.Parallel()

	if got := AverageCategories(nil); got != NeutralCategoryScores() {
		t.Errorf("AverageCategories(nil) = %+v, want all 5", got)
	}
}

func TestComputePlaceStats(t *testing.T) {
	t.Parallel()

	ratings := []Rating{
		{OverallScore: 8},
		{OverallScore: 7},
		{OverallScore: 6.5},
	}
	stats := ComputePlaceStats("p1", ratings)

	if stats.PlaceID != "p1" || stats.RatingCount != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AverageScore != 7.2 {
		t.Errorf("AverageScore = %v, want 7.2", stats.AverageScore)
	}

	empty := ComputePlaceStats("p2", nil)
	if empty.RatingCount != 0 || empty.AverageScore != 0 {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestRating_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rating  Rating
		wantErr bool
	}{
		{"valid", Rating{OverallScore: 7, UserAdjustmentFactor: 0.3}, false},
		{"bounds", Rating{OverallScore: 10, UserAdjustmentFactor: -1, Categories: Categories{Crowd: ptr(1)}}, false},
		{"score too high", Rating{OverallScore: 10.5}, true},
		{"negative score", Rating{OverallScore: -0.1}, true},
		{"nan score", Rating{OverallScore: math.NaN()}, true},
		{"factor out of range", Rating{OverallScore: 5, UserAdjustmentFactor: 1.5}, true},
		{"category zero", Rating{OverallScore: 5, Categories: Categories{Service: ptr(0)}}, true},
		{"category too high", Rating{OverallScore: 5, Categories: Categories{Value: ptr(11)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.rating.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRating) {
				t.Errorf("error %v does not wrap ErrInvalidRating", err)
			}
		})
	}
}

func TestGroupStatus_Transitions(t *testing.T) {
	t.Parallel()

	all := []GroupStatus{GroupActive, GroupPlaceSelected, GroupArchived, GroupDisbanded}
	for _, from := range all {
		for _, to := range all {
			want := from == GroupActive && to != GroupActive
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}

	g := &Group{Status: GroupActive}
	now := time.Now()
	if err := g.Transition(GroupArchived, now); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if !g.UpdatedAt.Equal(now) {
		t.Error("UpdatedAt not set")
	}
	if err := g.Transition(GroupActive, now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Transition from terminal error = %v, want ErrInvalidTransition", err)
	}
}

func TestGroup_RemoveMemberDropsBallot(t *testing.T) {
	t.Parallel()

	g := &Group{
		Members: []Member{{UserID: "u1"}, {UserID: "u2"}, {UserID: "u3"}},
		Ballots: voting.Ballots{
			{UserID: "u1", PlaceIDs: []string{"A"}},
			{UserID: "u2", PlaceIDs: []string{"B"}},
		},
	}

	if !g.RemoveMember("u2") {
		t.Fatal("RemoveMember(u2) = false")
	}
	if g.HasMember("u2") {
		t.Error("u2 still a member")
	}
	if len(g.Members) != 2 || g.Members[0].UserID != "u1" || g.Members[1].UserID != "u3" {
		t.Errorf("members = %+v", g.Members)
	}
	if _, ok := g.Ballots.Get("u2"); ok {
		t.Error("u2 ballot still present")
	}
	if g.RemoveMember("nobody") {
		t.Error("RemoveMember(nobody) = true")
	}
}

func TestGroup_EffectiveRadius(t *testing.T) {
	t.Parallel()

	g := &Group{SearchRadiusKm: 8}
	if got := g.EffectiveRadius(3); got != 3 {
		t.Errorf("override = %v, want 3", got)
	}
	if got := g.EffectiveRadius(0); got != 8 {
		t.Errorf("group default = %v, want 8", got)
	}
	if got := (&Group{}).EffectiveRadius(0); got != DefaultSearchRadiusKm {
		t.Errorf("fallback = %v, want %v", got, DefaultSearchRadiusKm)
	}
}

func TestMemberFromUser_Clamps(t *testing.T) {
	t.Parallel()

	m := MemberFromUser(&User{ID: "u1", DisplayName: "Sam", AdjustmentFactor: 1.7}, time.Time{})
	if m.AdjustmentFactor != 1 {
		t.Errorf("AdjustmentFactor = %v, want 1", m.AdjustmentFactor)
	}
	if m.PersonalityType != personality.Extrovert {
		t.Errorf("PersonalityType = %q, want extrovert", m.PersonalityType)
	}
}

func TestRecommendedPlace_RankingKey(t *testing.T) {
	t.Parallel()

	p := RecommendedPlace{PredictedScore: 8, ConfidenceScore: 0.5, MatchPercentage: 50}
	if got := p.RankingKey(); got != 2 {
		t.Errorf("RankingKey() = %v, want 2", got)
	}
}
