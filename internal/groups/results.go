// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package groups

import (
	"github.com/tomtom215/gatherly/internal/metrics"
	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/voting"
)

// Results is the current state of a group's vote.
type Results struct {
	GroupID         string              `json:"group_id"`
	Status          models.GroupStatus  `json:"status"`
	BallotCount     int                 `json:"ballot_count"`
	MemberCount     int                 `json:"member_count"`
	Leaderboard     []voting.TallyEntry `json:"leaderboard"`
	LeadingPlaceID  string              `json:"leading_place_id,omitempty"`
	SelectedPlaceID string              `json:"selected_place_id,omitempty"`
}

// tallyGroup computes results from the ballots stored on g.
func tallyGroup(g *models.Group) *Results {
	tally := voting.Tally(g.Ballots)
	metrics.RecordTally()

	r := &Results{
		GroupID:         g.ID,
		Status:          g.Status,
		BallotCount:     tally.BallotCount(),
		MemberCount:     len(g.Members),
		Leaderboard:     tally.Leaderboard(),
		SelectedPlaceID: g.SelectedPlaceID,
	}
	if winner, ok := tally.Winner(); ok {
		r.LeadingPlaceID = winner
	}
	return r
}
