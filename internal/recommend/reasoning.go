// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package recommend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/gatherly/internal/models"
)

// NewPlaceReasoning explains a place without ratings.
const NewPlaceReasoning = "New place with no ratings yet. Be the first to rate it!"

const reasoningSeparator = " • "

// GenerateReasoning builds the explanation for a scored place from up to four
// clauses: harmony, rating volume, distance and group personality.
//
//nolint:gocritic // hugeParam: metrics is read-only
func GenerateReasoning(harmony float64, totalRatings int, distanceKm float64, metrics GroupMetrics) string {
	parts := make([]string, 0, 4)

	switch {
	case harmony > 0.8:
		parts = append(parts, "Excellent match for everyone in the group")
	case harmony > 0.6:
		parts = append(parts, "Good fit for most of the group")
	default:
		parts = append(parts, "Decent option with trade-offs")
	}

	switch {
	case totalRatings >= 20:
		parts = append(parts, fmt.Sprintf("Based on %d ratings", totalRatings))
	case totalRatings >= 10:
		parts = append(parts, fmt.Sprintf("%d ratings available", totalRatings))
	default:
		parts = append(parts, "Limited ratings data")
	}

	switch {
	case distanceKm < 2:
		parts = append(parts, "Very close by")
	case distanceKm < 5:
		parts = append(parts, strconv.FormatFloat(models.RoundTo(distanceKm, 1), 'f', 1, 64)+"km away")
	}

	switch {
	case metrics.Spread > 0.6:
		parts = append(parts, "Balances diverse personalities")
	case metrics.AvgFactor > 0.3:
		parts = append(parts, "Great for extroverted groups")
	case metrics.AvgFactor < -0.3:
		parts = append(parts, "Perfect for introverted gatherings")
	}

	return strings.Join(parts, reasoningSeparator)
}
