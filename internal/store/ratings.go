// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/tomtom215/gatherly/internal/metrics"
	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/personality"
)

// placeIndexKey orders a place's ratings by creation time, then ID.
func placeIndexKey(r *models.Rating) []byte {
	return key(colPlaceIndex, r.PlaceID, fmt.Sprintf("%020d", r.CreatedAt.UnixNano()), r.ID)
}

func uniqueKey(userID, placeID string) []byte {
	return key(colUniqueIndex, userID, placeID)
}

// CreateRating stores a new rating. The rater's current adjustment factor is
// copied into the rating. A user can rate a place once; a second attempt
// returns ErrConflict.
func (s *Store) CreateRating(ctx context.Context, in *models.Rating) (out *models.Rating, err error) {
	defer func(start time.Time) { observe("create", colRatings, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if err := validID(in.UserID); err != nil {
		return nil, err
	}
	if err := validID(in.PlaceID); err != nil {
		return nil, err
	}

	r := *in
	if r.ID == "" {
		r.ID = uuid.New().String()
	} else if err := validID(r.ID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	err = s.update(func(txn *badger.Txn) error {
		var user models.User
		if err := getJSON(txn, key(colUsers, r.UserID), &user); err != nil {
			return fmt.Errorf("user %s: %w", r.UserID, err)
		}
		if ok, err := exists(txn, key(colPlaces, r.PlaceID)); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("place %s: %w", r.PlaceID, ErrNotFound)
		}
		if ok, err := exists(txn, uniqueKey(r.UserID, r.PlaceID)); err != nil {
			return err
		} else if ok {
			return fmt.Errorf("%w: user %s already rated place %s", ErrConflict, r.UserID, r.PlaceID)
		}

		r.UserAdjustmentFactor = personality.Clamp(user.AdjustmentFactor)
		if err := r.Validate(); err != nil {
			return err
		}

		if err := setJSON(txn, key(colRatings, r.ID), &r); err != nil {
			return err
		}
		if err := txn.Set(placeIndexKey(&r), []byte(r.ID)); err != nil {
			return err
		}
		if err := txn.Set(uniqueKey(r.UserID, r.PlaceID), []byte(r.ID)); err != nil {
			return err
		}
		return s.recomputeStats(txn, r.PlaceID, now)
	})
	if err != nil {
		return nil, fmt.Errorf("create rating: %w", err)
	}

	metrics.RecordRatingWrite("create")
	s.notifyRatingsChanged(r.PlaceID)
	return &r, nil
}

// UpdateRating replaces the overall score and categories of a rating. The
// captured adjustment factor is left untouched.
func (s *Store) UpdateRating(ctx context.Context, id string, score float64, categories models.Categories) (out *models.Rating, err error) {
	defer func(start time.Time) { observe("update", colRatings, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var r models.Rating
	now := time.Now().UTC()
	err = s.update(func(txn *badger.Txn) error {
		if err := getJSON(txn, key(colRatings, id), &r); err != nil {
			return err
		}
		r.OverallScore = score
		r.Categories = categories
		r.UpdatedAt = now
		if err := r.Validate(); err != nil {
			return err
		}
		if err := setJSON(txn, key(colRatings, id), &r); err != nil {
			return err
		}
		return s.recomputeStats(txn, r.PlaceID, now)
	})
	if err != nil {
		return nil, fmt.Errorf("update rating %s: %w", id, err)
	}

	metrics.RecordRatingWrite("update")
	s.notifyRatingsChanged(r.PlaceID)
	return &r, nil
}

// DeleteRating removes a rating and its index entries.
func (s *Store) DeleteRating(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("delete", colRatings, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return err
	}

	var r models.Rating
	err = s.update(func(txn *badger.Txn) error {
		if err := getJSON(txn, key(colRatings, id), &r); err != nil {
			return err
		}
		for _, k := range [][]byte{key(colRatings, id), placeIndexKey(&r), uniqueKey(r.UserID, r.PlaceID)} {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return s.recomputeStats(txn, r.PlaceID, time.Now().UTC())
	})
	if err != nil {
		return fmt.Errorf("delete rating %s: %w", id, err)
	}

	metrics.RecordRatingWrite("delete")
	s.notifyRatingsChanged(r.PlaceID)
	return nil
}

// GetRating loads a rating by ID.
func (s *Store) GetRating(ctx context.Context, id string) (r *models.Rating, err error) {
	defer func(start time.Time) { observe("get", colRatings, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var rating models.Rating
	err = s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key(colRatings, id), &rating)
	})
	if err != nil {
		return nil, fmt.Errorf("get rating %s: %w", id, err)
	}
	return &rating, nil
}

// GetRatingsForPlace returns a place's ratings in creation order.
func (s *Store) GetRatingsForPlace(ctx context.Context, placeID string) (ratings []models.Rating, err error) {
	defer func(start time.Time) { observe("list", colRatings, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		var err error
		ratings, err = ratingsForPlace(txn, placeID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get ratings for place %s: %w", placeID, err)
	}
	return ratings, nil
}

// GetRatingCountForPlace returns the rating count from the place aggregate.
func (s *Store) GetRatingCountForPlace(ctx context.Context, placeID string) (int, error) {
	stats, err := s.GetPlaceStats(ctx, placeID)
	if err != nil {
		return 0, err
	}
	return stats.RatingCount, nil
}

// GetPlaceStats returns the aggregate for a place. A place nobody rated has
// zero ratings and neutral categories.
func (s *Store) GetPlaceStats(ctx context.Context, placeID string) (stats *models.PlaceStats, err error) {
	defer func(start time.Time) { observe("get", colStats, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var ps models.PlaceStats
	err = s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key(colStats, placeID), &ps)
	})
	if errors.Is(err, ErrNotFound) {
		empty := models.ComputePlaceStats(placeID, nil)
		return &empty, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stats for place %s: %w", placeID, err)
	}
	return &ps, nil
}

// recomputeStats rebuilds the place aggregate inside txn so it always matches
// the ratings committed with it.
func (s *Store) recomputeStats(txn *badger.Txn, placeID string, at time.Time) error {
	ratings, err := ratingsForPlace(txn, placeID)
	if err != nil {
		return err
	}
	stats := models.ComputePlaceStats(placeID, ratings)
	stats.UpdatedAt = at
	return setJSON(txn, key(colStats, placeID), &stats)
}

func ratingsForPlace(txn *badger.Txn, placeID string) ([]models.Rating, error) {
	keys := keysWithPrefix(txn, prefix(colPlaceIndex, placeID))
	ratings := make([]models.Rating, 0, len(keys))
	for _, k := range keys {
		id := lastSegment(k)
		var r models.Rating
		if err := getJSON(txn, key(colRatings, id), &r); err != nil {
			return nil, fmt.Errorf("rating %s: %w", id, err)
		}
		ratings = append(ratings, r)
	}
	return ratings, nil
}

func lastSegment(k []byte) string {
	s := string(k)
	return s[strings.LastIndex(s, keySep)+1:]
}
