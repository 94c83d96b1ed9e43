// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package personality maps the continuous introversion/extroversion adjustment
// factor to discrete buckets, compares members, and scores the onboarding quiz.
//
// The adjustment factor is the only quantitative personality signal in Gatherly:
// -1 is a strong introvert, +1 a strong extrovert and 0 neutral.
package personality

import "math"

// Type is a discrete personality bucket.
type Type string

const (
	Introvert Type = "introvert"
	Ambivert  Type = "ambivert"
	Extrovert Type = "extrovert"
)

// Bucket thresholds. Both are inclusive toward the outer buckets.
const (
	IntrovertThreshold = -0.2
	ExtrovertThreshold = 0.2
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// Bucket maps an adjustment factor to its personality bucket.
// Exactly -0.2 is an introvert and exactly 0.2 an extrovert.
func Bucket(adjustmentFactor float64) Type {
	switch {
	case adjustmentFactor <= IntrovertThreshold:
		return Introvert
	case adjustmentFactor >= ExtrovertThreshold:
		return Extrovert
	default:
		return Ambivert
	}
}

// Clamp limits an adjustment factor to [-1, 1]. NaN becomes 0.
func Clamp(adjustmentFactor float64) float64 {
	if math.IsNaN(adjustmentFactor) {
		return 0
	}
	return math.Max(-1, math.Min(1, adjustmentFactor))
}

// Similarity returns how alike two members are on a 0..1 scale:
// equal factors give 1 and opposite extremes (-1 vs 1) give 0.
func Similarity(a, b float64) float64 {
	return 1 - math.Abs(Clamp(a)-Clamp(b))/2
}
