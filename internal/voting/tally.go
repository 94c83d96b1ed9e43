// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package voting tallies ranked-choice ballots cast by group members.
//
// Each ballot awards 3 points to its first choice, 2 to its second and 1 to its
// third. The place with the most points wins; exact ties go to the place that
// appeared first while walking the ballots in submission order.
package voting

import "sort"

// rankPoints is indexed by ballot position.
var rankPoints = [MaxRankedChoices]int{3, 2, 1}

// PointsForPosition returns the points awarded to a 0-based ballot position.
// Positions past the last ranked choice are worth nothing.
func PointsForPosition(position int) int {
	if position < 0 || position >= len(rankPoints) {
		return 0
	}
	return rankPoints[position]
}

// VoteRecord is one member's contribution to a place's score.
// Rank is 1-based.
type VoteRecord struct {
	UserID string `json:"user_id"`
	Rank   int    `json:"rank"`
}

// TallyEntry is the accumulated result for one place.
type TallyEntry struct {
	PlaceID string       `json:"place_id"`
	Score   int          `json:"score"`
	Votes   []VoteRecord `json:"votes"`
}

// Result is a computed tally. It is derived on demand from the ballots and
// never stored on its own.
type Result struct {
	entries map[string]*TallyEntry
	order   []string // place IDs in first-seen order
	ballots int
}

// Tally accumulates points per place.
func Tally(ballots Ballots) *Result {
	r := &Result{entries: make(map[string]*TallyEntry)}

	for _, ballot := range ballots {
		r.ballots++
		for pos, placeID := range ballot.PlaceIDs {
			points := PointsForPosition(pos)
			if points == 0 {
				continue
			}

			entry, ok := r.entries[placeID]
			if !ok {
				entry = &TallyEntry{PlaceID: placeID}
				r.entries[placeID] = entry
				r.order = append(r.order, placeID)
			}
			entry.Score += points
			entry.Votes = append(entry.Votes, VoteRecord{UserID: ballot.UserID, Rank: pos + 1})
		}
	}

	return r
}

// Scores returns the tally keyed by place ID.
func (r *Result) Scores() map[string]TallyEntry {
	out := make(map[string]TallyEntry, len(r.entries))
	for id, entry := range r.entries {
		out[id] = *entry
	}
	return out
}

// Entry returns the tally for a single place.
func (r *Result) Entry(placeID string) (TallyEntry, bool) {
	entry, ok := r.entries[placeID]
	if !ok {
		return TallyEntry{}, false
	}
	return *entry, true
}

// Winner returns the highest scoring place. Ties resolve to the first-seen place.
// ok is false when no ballot ranked anything.
func (r *Result) Winner() (placeID string, ok bool) {
	best := -1
	for _, id := range r.order {
		if score := r.entries[id].Score; score > best {
			best = score
			placeID = id
		}
	}
	return placeID, best >= 0
}

// Leaderboard returns entries sorted by score, highest first. Equal scores keep
// first-seen order, so Leaderboard()[0] is always the Winner.
func (r *Result) Leaderboard() []TallyEntry {
	board := make([]TallyEntry, 0, len(r.order))
	for _, id := range r.order {
		board = append(board, *r.entries[id])
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})
	return board
}

// BallotCount returns how many ballots were tallied.
func (r *Result) BallotCount() int {
	return r.ballots
}
