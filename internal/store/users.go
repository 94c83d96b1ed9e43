// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/personality"
)

// PutUser creates or replaces a user. CreatedAt is preserved on replace and
// the personality label is derived from the clamped adjustment factor.
func (s *Store) PutUser(ctx context.Context, u *models.User) (out *models.User, err error) {
	defer func(start time.Time) { observe("put", colUsers, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if err := validID(u.ID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := *u
	user.AdjustmentFactor = personality.Clamp(user.AdjustmentFactor)
	user.PersonalityType = personality.Bucket(user.AdjustmentFactor)
	user.UpdatedAt = now

	err = s.update(func(txn *badger.Txn) error {
		var existing models.User
		switch err := getJSON(txn, key(colUsers, user.ID), &existing); {
		case err == nil:
			user.CreatedAt = existing.CreatedAt
		case errors.Is(err, ErrNotFound):
			user.CreatedAt = now
		default:
			return err
		}
		return setJSON(txn, key(colUsers, user.ID), &user)
	})
	if err != nil {
		return nil, fmt.Errorf("put user %s: %w", user.ID, err)
	}
	return &user, nil
}

// GetUser loads a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (u *models.User, err error) {
	defer func(start time.Time) { observe("get", colUsers, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key(colUsers, id), &user)
	})
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

// SetAdjustmentFactor updates only the user's personality profile, typically
// after a quiz. Existing ratings keep the factor they were made with.
func (s *Store) SetAdjustmentFactor(ctx context.Context, userID string, factor float64) (u *models.User, err error) {
	defer func(start time.Time) { observe("update", colUsers, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var user models.User
	err = s.update(func(txn *badger.Txn) error {
		if err := getJSON(txn, key(colUsers, userID), &user); err != nil {
			return err
		}
		user.AdjustmentFactor = personality.Clamp(factor)
		user.PersonalityType = personality.Bucket(user.AdjustmentFactor)
		user.UpdatedAt = time.Now().UTC()
		return setJSON(txn, key(colUsers, userID), &user)
	})
	if err != nil {
		return nil, fmt.Errorf("set adjustment factor for %s: %w", userID, err)
	}
	return &user, nil
}
