// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/gatherly/internal/metrics"
	"github.com/tomtom215/gatherly/internal/models"
)

// Engine ranks candidate places for a group.
type Engine struct {
	config       *Config
	logger       zerolog.Logger
	dataProvider DataProvider

	runCount     atomic.Int64
	errorCount   atomic.Int64
	skippedCount atomic.Int64
}

// Metrics contains engine counters.
type Metrics struct {
	RunCount     int64 `json:"run_count"`
	ErrorCount   int64 `json:"error_count"`
	SkippedCount int64 `json:"skipped_count"`
}

// placeResult is the outcome of scoring one candidate. Results are stored by
// candidate index so the output does not depend on goroutine scheduling.
type placeResult struct {
	place models.RecommendedPlace
	err   error
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// SetDataProvider sets the source of candidate places and ratings.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// GenerateGroupRecommendations scores the places around the group's search
// location and returns the best TopN, highest first.
//
// radiusKm overrides the group's own radius when positive. A failure to list
// candidates or to read ratings aborts the run. A place whose ratings are
// malformed is logged and left out. No candidates yields an empty list.
func (e *Engine) GenerateGroupRecommendations(ctx context.Context, group *models.Group, radiusKm float64) ([]models.RecommendedPlace, error) {
	start := time.Now()
	e.runCount.Add(1)

	var candidates int
	places, err := e.generate(ctx, group, radiusKm, &candidates)
	metrics.RecordRecommendationRun(time.Since(start), candidates, len(places), err)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	e.logger.Debug().
		Str("group_id", group.ID).
		Int("candidates", candidates).
		Int("returned", len(places)).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")

	return places, nil
}

func (e *Engine) generate(ctx context.Context, group *models.Group, radiusKm float64, candidates *int) ([]models.RecommendedPlace, error) {
	if e.dataProvider == nil {
		return nil, ErrNoDataProvider
	}
	if len(group.Members) == 0 {
		return nil, ErrEmptyGroup
	}
	if !group.SearchLocation.Valid() {
		return nil, fmt.Errorf("%w: %+v", models.ErrInvalidLocation, group.SearchLocation)
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	radius := e.config.clampRadius(group.EffectiveRadius(radiusKm))
	loc := group.SearchLocation

	places, err := e.dataProvider.GetPlacesNear(ctx, loc.Lat, loc.Lng, radius)
	if err != nil {
		return nil, fmt.Errorf("get candidates: %w", err)
	}
	*candidates = len(places)

	if len(places) == 0 {
		e.logger.Debug().Str("group_id", group.ID).Float64("radius_km", radius).Msg("no candidates available")
		return []models.RecommendedPlace{}, nil
	}

	groupMetrics := ComputeGroupMetrics(group.Members)
	results := e.scorePlaces(ctx, group, places, &groupMetrics)

	ranked := make([]models.RecommendedPlace, 0, len(results))
	for i := range results {
		if err := results[i].err; err != nil {
			if errors.Is(err, ErrMalformedRating) || errors.Is(err, ErrScoringPanic) {
				e.skippedCount.Add(1)
				metrics.RecordSkippedPlace()
				e.logger.Warn().
					Str("group_id", group.ID).
					Str("place_id", places[i].ID).
					Err(err).
					Msg("skipping place that could not be scored")
				continue
			}
			return nil, fmt.Errorf("score place %s: %w", places[i].ID, err)
		}
		ranked = append(ranked, results[i].place)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankingKey() > ranked[j].RankingKey()
	})

	if len(ranked) > e.config.TopN {
		ranked = ranked[:e.config.TopN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// scorePlaces runs scorePlace over all candidates with at most
// config.Workers in flight.
func (e *Engine) scorePlaces(ctx context.Context, group *models.Group, places []models.Place, gm *GroupMetrics) []placeResult {
	results := make([]placeResult, len(places))

	workers := e.config.Workers
	if workers > len(places) {
		workers = len(places)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx].err = err
					continue
				}
				results[idx] = e.safeScorePlace(ctx, group, &places[idx], gm)
			}
		}()
	}

	for i := range places {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// safeScorePlace runs scorePlace and converts a panic into a skippable error.
func (e *Engine) safeScorePlace(ctx context.Context, group *models.Group, place *models.Place, gm *GroupMetrics) (res placeResult) {
	defer func() {
		if r := recover(); r != nil {
			res = placeResult{err: fmt.Errorf("%w: %v", ErrScoringPanic, r)}
		}
	}()
	return e.scorePlace(ctx, group, place, gm)
}

// scorePlace computes the recommendation entry for a single place.
func (e *Engine) scorePlace(ctx context.Context, group *models.Group, place *models.Place, gm *GroupMetrics) placeResult {
	distance := group.SearchLocation.DistanceTo(place.Location)

	count, err := e.dataProvider.GetRatingCountForPlace(ctx, place.ID)
	if err != nil {
		return placeResult{err: fmt.Errorf("get rating count: %w", err)}
	}

	var ratings []models.Rating
	if count > 0 {
		ratings, err = e.dataProvider.GetRatingsForPlace(ctx, place.ID)
		if err != nil {
			return placeResult{err: fmt.Errorf("get ratings: %w", err)}
		}
		if err := checkRatings(ratings); err != nil {
			return placeResult{err: err}
		}
	}

	rec := models.RecommendedPlace{
		PlaceID:     place.ID,
		PlaceName:   place.Name,
		Address:     place.Address,
		Location:    place.Location,
		DistanceKm:  models.RoundTo(distance, 2),
		RatingCount: count,
	}

	// The count and the rating list can disagree briefly after a delete.
	if len(ratings) == 0 {
		ps := ScorePlace(nil, 0, distance)
		rec.PredictedScore = ps.PredictedScore
		rec.ConfidenceScore = ps.ConfidenceScore
		rec.MatchPercentage = ps.MatchPercentage
		rec.Reasoning = NewPlaceReasoning
		rec.Categories = models.NeutralCategoryScores()
		rec.RatingCount = 0
		return placeResult{place: rec}
	}

	memberScores := make([]MemberScore, len(group.Members))
	for i := range group.Members {
		memberScores[i] = ScoreMember(group.Members[i], ratings)
	}

	ps := ScorePlace(memberScores, count, distance)
	rec.PredictedScore = ps.PredictedScore
	rec.ConfidenceScore = ps.ConfidenceScore
	rec.MatchPercentage = ps.MatchPercentage
	rec.HarmonyScore = models.RoundTo(ps.HarmonyScore, 2)
	rec.Reasoning = GenerateReasoning(ps.HarmonyScore, count, distance, *gm)
	rec.Categories = models.AverageCategories(ratings)

	return placeResult{place: rec}
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RunCount:     e.runCount.Load(),
		ErrorCount:   e.errorCount.Load(),
		SkippedCount: e.skippedCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}
