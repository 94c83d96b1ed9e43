// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package voting

import (
	"errors"
	"fmt"
)

// MaxRankedChoices is the longest ballot a member may cast.
const MaxRankedChoices = 3

// ErrInvalidBallot is returned when a ballot is empty, too long or repeats a place.
var ErrInvalidBallot = errors.New("invalid ballot")

// Ballot is one member's ranked preference, most preferred first.
type Ballot struct {
	UserID   string   `json:"user_id"`
	PlaceIDs []string `json:"place_ids"`
}

// Ballots is the ordered set of ballots cast in a group. The order is the order
// of first submission and is what breaks ties in Tally, so it is a slice rather
// than a map.
type Ballots []Ballot

// Set records a ballot for userID. A resubmission replaces the previous ranking
// and keeps the member's original position.
func (b Ballots) Set(userID string, placeIDs []string) Ballots {
	ids := append([]string(nil), placeIDs...)
	for i := range b {
		if b[i].UserID == userID {
			b[i].PlaceIDs = ids
			return b
		}
	}
	return append(b, Ballot{UserID: userID, PlaceIDs: ids})
}

// Get returns the ranking cast by userID.
func (b Ballots) Get(userID string) ([]string, bool) {
	for i := range b {
		if b[i].UserID == userID {
			return b[i].PlaceIDs, true
		}
	}
	return nil, false
}

// Remove drops userID's ballot, preserving the order of the others.
func (b Ballots) Remove(userID string) Ballots {
	out := b[:0]
	for _, ballot := range b {
		if ballot.UserID != userID {
			out = append(out, ballot)
		}
	}
	return out
}

// ValidateBallot checks a ranking at cast time: 1 to MaxRankedChoices distinct,
// non-empty place IDs.
func ValidateBallot(placeIDs []string) error {
	if len(placeIDs) == 0 {
		return fmt.Errorf("%w: at least one place is required", ErrInvalidBallot)
	}
	if len(placeIDs) > MaxRankedChoices {
		return fmt.Errorf("%w: at most %d places may be ranked, got %d", ErrInvalidBallot, MaxRankedChoices, len(placeIDs))
	}

	seen := make(map[string]struct{}, len(placeIDs))
	for i, id := range placeIDs {
		if id == "" {
			return fmt.Errorf("%w: place at rank %d is empty", ErrInvalidBallot, i+1)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: place %q ranked more than once", ErrInvalidBallot, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
