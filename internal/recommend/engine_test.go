// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/gatherly/internal/geo"
	"github.com/tomtom215/gatherly/internal/models"
)

var searchLocation = geo.Location{Lat: 40.7128, Lng: -74.0060}

// mockDataProvider implements DataProvider for testing.
type mockDataProvider struct {
	places     []models.Place
	ratings    map[string][]models.Rating
	placesErr  error
	ratingsErr map[string]error

	mu         sync.Mutex
	lastRadius float64

	placesCalls  atomic.Int32
	ratingsCalls atomic.Int32
	countCalls   atomic.Int32
}

func (m *mockDataProvider) GetPlacesNear(_ context.Context, _, _, radiusKm float64) ([]models.Place, error) {
	m.placesCalls.Add(1)
	m.mu.Lock()
	m.lastRadius = radiusKm
	m.mu.Unlock()
	if m.placesErr != nil {
		return nil, m.placesErr
	}
	return m.places, nil
}

func (m *mockDataProvider) GetRatingsForPlace(_ context.Context, placeID string) ([]models.Rating, error) {
	m.ratingsCalls.Add(1)
	if err := m.ratingsErr[placeID]; err != nil {
		return nil, err
	}
	return m.ratings[placeID], nil
}

func (m *mockDataProvider) GetRatingCountForPlace(_ context.Context, placeID string) (int, error) {
	m.countCalls.Add(1)
	return len(m.ratings[placeID]), nil
}

func (m *mockDataProvider) radius() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRadius
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestEngine(t *testing.T, cfg *Config, dp DataProvider) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.SetDataProvider(dp)
	return e
}

func testGroup(factors ...float64) *models.Group {
	g := &models.Group{
		ID:             "g1",
		SearchLocation: searchLocation,
		SearchRadiusKm: 5,
		Status:         models.GroupActive,
	}
	for i, f := range factors {
		g.Members = append(g.Members, models.Member{UserID: fmt.Sprintf("u%d", i), AdjustmentFactor: f})
	}
	return g
}

func place(id string) models.Place {
	return models.Place{ID: id, Name: "Place " + id, Location: searchLocation}
}

func sameRatings(n int, factor, score float64) []models.Rating {
	out := make([]models.Rating, n)
	for i := range out {
		out[i] = models.Rating{ID: fmt.Sprintf("r%d", i), UserAdjustmentFactor: factor, OverallScore: score}
	}
	return out
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	t.Run("nil config uses defaults", func(t *testing.T) {
		t.Parallel()
		e, err := NewEngine(nil, testLogger())
		if err != nil {
			t.Fatalf("NewEngine(nil) error = %v", err)
		}
		if e.GetConfig().TopN != DefaultConfig().TopN {
			t.Errorf("TopN = %d", e.GetConfig().TopN)
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := NewEngine(&Config{}, testLogger()); err == nil {
			t.Error("NewEngine(invalid) error = nil")
		}
	})
}

func TestGenerate_Ranking(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		places: []models.Place{place("B"), place("C"), place("A")},
		ratings: map[string][]models.Rating{
			"A": sameRatings(5, 0, 9),
			"B": sameRatings(5, 0, 4),
		},
	}
	e := newTestEngine(t, nil, dp)

	got, err := e.GenerateGroupRecommendations(context.Background(), testGroup(0, 0), 0)
	if err != nil {
		t.Fatalf("GenerateGroupRecommendations() error = %v", err)
	}

	order := make([]string, len(got))
	for i := range got {
		order[i] = got[i].PlaceID
	}
	if !reflect.DeepEqual(order, []string{"A", "B", "C"}) {
		t.Fatalf("order = %v, want [A B C]", order)
	}
	for i := range got {
		if got[i].Rank != i+1 {
			t.Errorf("%s rank = %d, want %d", got[i].PlaceID, got[i].Rank, i+1)
		}
	}

	a := got[0]
	// score 9, confidence 0.25+0.3+0.05, match round(36+30+18)
	if a.PredictedScore != 9 || a.ConfidenceScore != 0.6 || a.MatchPercentage != 84 {
		t.Errorf("A = score %v conf %v match %v, want 9/0.6/84", a.PredictedScore, a.ConfidenceScore, a.MatchPercentage)
	}
	if a.HarmonyScore != 1 || a.RatingCount != 5 || a.PlaceName != "Place A" {
		t.Errorf("A = %+v", a)
	}
	if a.Reasoning != "Excellent match for everyone in the group • Limited ratings data • Very close by" {
		t.Errorf("A reasoning = %q", a.Reasoning)
	}

	c := got[2]
	if c.PredictedScore != NewPlaceScore || c.ConfidenceScore != NewPlaceConfidence || c.MatchPercentage != NewPlaceMatch {
		t.Errorf("C = %+v, want neutral new place", c)
	}
	if c.Reasoning != NewPlaceReasoning || c.Categories != models.NeutralCategoryScores() {
		t.Errorf("C reasoning/categories = %q / %+v", c.Reasoning, c.Categories)
	}
	if dp.ratingsCalls.Load() != 2 {
		t.Errorf("ratings lookups = %d, want 2 (new place skips the lookup)", dp.ratingsCalls.Load())
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, &mockDataProvider{})
	got, err := e.GenerateGroupRecommendations(context.Background(), testGroup(0), 0)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil list", got)
	}
}

func TestGenerate_CandidateFailurePropagates(t *testing.T) {
	t.Parallel()

	upstream := errors.New("places service down")
	e := newTestEngine(t, nil, &mockDataProvider{placesErr: upstream})

	_, err := e.GenerateGroupRecommendations(context.Background(), testGroup(0), 0)
	if !errors.Is(err, upstream) {
		t.Fatalf("error = %v, want wrapped upstream error", err)
	}
	if !strings.HasPrefix(err.Error(), "get candidates:") {
		t.Errorf("error = %q, want get candidates prefix", err.Error())
	}
	if e.GetMetrics().ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", e.GetMetrics().ErrorCount)
	}
}

func TestGenerate_RatingFailurePropagates(t *testing.T) {
	t.Parallel()

	upstream := errors.New("ratings timeout")
	dp := &mockDataProvider{
		places:     []models.Place{place("A"), place("B")},
		ratings:    map[string][]models.Rating{"A": sameRatings(2, 0, 7), "B": sameRatings(2, 0, 7)},
		ratingsErr: map[string]error{"B": upstream},
	}
	e := newTestEngine(t, nil, dp)

	if _, err := e.GenerateGroupRecommendations(context.Background(), testGroup(0), 0); !errors.Is(err, upstream) {
		t.Errorf("error = %v, want wrapped ratings error", err)
	}
}

func TestGenerate_MalformedRatingSkipsPlace(t *testing.T) {
	t.Parallel()

	bad := sameRatings(3, 0, 7)
	bad[1].OverallScore = math.NaN()

	dp := &mockDataProvider{
		places:  []models.Place{place("A"), place("bad"), place("B")},
		ratings: map[string][]models.Rating{"A": sameRatings(3, 0, 8), "bad": bad, "B": sameRatings(3, 0, 6)},
	}
	e := newTestEngine(t, nil, dp)

	got, err := e.GenerateGroupRecommendations(context.Background(), testGroup(0), 0)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(got) != 2 || got[0].PlaceID != "A" || got[1].PlaceID != "B" {
		t.Errorf("got %+v, want A and B only", got)
	}
	if m := e.GetMetrics(); m.SkippedCount != 1 || m.ErrorCount != 0 {
		t.Errorf("metrics = %+v, want 1 skipped and no errors", m)
	}
}

// panickingProvider panics while loading the ratings of one place.
type panickingProvider struct {
	*mockDataProvider
	placeID string
}

func (p panickingProvider) GetRatingsForPlace(ctx context.Context, placeID string) ([]models.Rating, error) {
	if placeID == p.placeID {
		panic("ratings index corrupted")
	}
	return p.mockDataProvider.GetRatingsForPlace(ctx, placeID)
}

func TestGenerate_PanicSkipsPlace(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		places: []models.Place{place("A"), place("boom"), place("B")},
		ratings: map[string][]models.Rating{
			"A": sameRatings(3, 0, 8), "boom": sameRatings(3, 0, 9), "B": sameRatings(3, 0, 6),
		},
	}
	e := newTestEngine(t, nil, panickingProvider{mockDataProvider: dp, placeID: "boom"})

	got, err := e.GenerateGroupRecommendations(context.Background(), testGroup(0), 0)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(got) != 2 || got[0].PlaceID != "A" || got[1].PlaceID != "B" {
		t.Errorf("got %+v, want A and B only", got)
	}
	if got[1].Rank != 2 {
		t.Errorf("B rank = %d, want 2", got[1].Rank)
	}
	if m := e.GetMetrics(); m.SkippedCount != 1 || m.ErrorCount != 0 {
		t.Errorf("metrics = %+v, want 1 skipped and no errors", m)
	}
}

func TestGenerate_TopNKeepsCandidateOrderOnTies(t *testing.T) {
	t.Parallel()

	places := make([]models.Place, 15)
	for i := range places {
		places[i] = place(fmt.Sprintf("p%02d", i))
	}
	cfg := DefaultConfig()
	cfg.TopN = 3
	cfg.Workers = 4
	e := newTestEngine(t, cfg, &mockDataProvider{places: places})

	got, err := e.GenerateGroupRecommendations(context.Background(), testGroup(0.2, -0.4), 0)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"p00", "p01", "p02"} {
		if got[i].PlaceID != want {
			t.Errorf("got[%d] = %s, want %s", i, got[i].PlaceID, want)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	places := make([]models.Place, 20)
	ratings := make(map[string][]models.Rating)
	for i := range places {
		id := fmt.Sprintf("p%02d", i)
		places[i] = models.Place{ID: id, Location: geo.Location{Lat: searchLocation.Lat + float64(i)*0.005, Lng: searchLocation.Lng}}
		ratings[id] = []models.Rating{
			{ID: id + "-1", UserAdjustmentFactor: -0.6, OverallScore: float64(i % 10)},
			{ID: id + "-2", UserAdjustmentFactor: 0.4, OverallScore: float64((i * 7) % 11)},
		}
	}
	dp := &mockDataProvider{places: places, ratings: ratings}
	e := newTestEngine(t, nil, dp)
	group := testGroup(-0.5, 0.3, 0.9)

	first, err := e.GenerateGroupRecommendations(context.Background(), group, 0)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	for run := 0; run < 5; run++ {
		again, err := e.GenerateGroupRecommendations(context.Background(), group, 0)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", run)
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].RankingKey() < first[i].RankingKey() {
			t.Errorf("not sorted at %d: %v < %v", i, first[i-1].RankingKey(), first[i].RankingKey())
		}
	}
}

func TestGenerate_Radius(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		override float64
		want     float64
	}{
		{"group radius", 0, 5},
		{"explicit override", 2, 2},
		{"capped at max", 500, DefaultConfig().MaxRadiusKm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dp := &mockDataProvider{}
			e := newTestEngine(t, nil, dp)
			if _, err := e.GenerateGroupRecommendations(context.Background(), testGroup(0), tt.override); err != nil {
				t.Fatalf("error = %v", err)
			}
			if got := dp.radius(); got != tt.want {
				t.Errorf("radius = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerate_InputErrors(t *testing.T) {
	t.Parallel()

	noProvider, err := NewEngine(nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := noProvider.GenerateGroupRecommendations(context.Background(), testGroup(0), 0); !errors.Is(err, ErrNoDataProvider) {
		t.Errorf("no provider error = %v", err)
	}

	e := newTestEngine(t, nil, &mockDataProvider{})
	if _, err := e.GenerateGroupRecommendations(context.Background(), testGroup(), 0); !errors.Is(err, ErrEmptyGroup) {
		t.Errorf("empty group error = %v", err)
	}

	bad := testGroup(0)
	bad.SearchLocation = geo.Location{Lat: 95}
	if _, err := e.GenerateGroupRecommendations(context.Background(), bad, 0); !errors.Is(err, models.ErrInvalidLocation) {
		t.Errorf("bad location error = %v", err)
	}
}

func TestGenerate_CanceledContext(t *testing.T) {
	t.Parallel()

	dp := &mockDataProvider{
		places:  []models.Place{place("A")},
		ratings: map[string][]models.Rating{"A": sameRatings(1, 0, 5)},
	}
	e := newTestEngine(t, nil, dp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.GenerateGroupRecommendations(ctx, testGroup(0), 0); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
