// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/gatherly/internal/models"
)

// CreateGroup stores a new group. The ID must not be taken.
func (s *Store) CreateGroup(ctx context.Context, g *models.Group) (err error) {
	defer func(start time.Time) { observe("create", colGroups, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return err
	}
	if err := validID(g.ID); err != nil {
		return err
	}

	err = s.update(func(txn *badger.Txn) error {
		if ok, err := exists(txn, key(colGroups, g.ID)); err != nil {
			return err
		} else if ok {
			return fmt.Errorf("%w: group %s exists", ErrConflict, g.ID)
		}
		return setJSON(txn, key(colGroups, g.ID), g)
	})
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// GetGroup loads a group by ID.
func (s *Store) GetGroup(ctx context.Context, id string) (g *models.Group, err error) {
	defer func(start time.Time) { observe("get", colGroups, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var group models.Group
	err = s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key(colGroups, id), &group)
	})
	if err != nil {
		return nil, fmt.Errorf("get group %s: %w", id, err)
	}
	return &group, nil
}

// UpdateGroup applies fn to the stored group and saves the result. Writers to
// the same group are serialised, so fn always sees the latest committed state.
// If fn returns an error nothing is written and that error is returned as is.
func (s *Store) UpdateGroup(ctx context.Context, id string, fn func(g *models.Group) error) (g *models.Group, err error) {
	defer func(start time.Time) { observe("update", colGroups, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	unlock := s.lockGroup(id)
	defer unlock()

	var group models.Group
	var fnErr error
	err = s.update(func(txn *badger.Txn) error {
		group = models.Group{}
		if err := getJSON(txn, key(colGroups, id), &group); err != nil {
			return fmt.Errorf("group %s: %w", id, err)
		}
		if fnErr = fn(&group); fnErr != nil {
			return fnErr
		}
		return setJSON(txn, key(colGroups, id), &group)
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return &group, nil
}

// lockGroup takes the per-group writer lock and returns its release func.
func (s *Store) lockGroup(id string) func() {
	v, _ := s.groupLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
