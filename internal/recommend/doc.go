// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package recommend scores candidate places for a group of people with
// different personalities.
//
// # Scoring
//
// Every rating carries a snapshot of the rater's personality adjustment factor
// in [-1, 1]. A member's predicted score for a place is built from the ratings
// of people with a similar factor:
//
//   - Ratings within 0.3 of the member's factor are weighted by (1 - d/0.3)^2
//   - With no similar raters the member falls back to the plain mean of all
//     ratings with a capped confidence
//
// The group's view of a place combines the member predictions:
//
//   - PredictedScore is the mean member prediction
//   - HarmonyScore is 1 - stddev/5, floored at 0
//   - ConfidenceScore mixes member confidence, agreement and data volume, then
//     decays linearly to zero at 15km from the search location
//   - MatchPercentage blends the three into a 0-100 figure
//
// Places with no ratings at all score a neutral 5.0 with a fixed message.
//
// # Ranking
//
// Engine.GenerateGroupRecommendations fetches candidates from a DataProvider,
// scores each place in a bounded worker pool, sorts by
// PredictedScore * ConfidenceScore * MatchPercentage/100 and keeps the top N.
// Results are deterministic for identical input.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetDataProvider(provider)
//	places, err := engine.GenerateGroupRecommendations(ctx, group, 0)
package recommend
