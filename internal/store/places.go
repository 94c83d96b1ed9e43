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
	"github.com/goccy/go-json"

	"github.com/tomtom215/gatherly/internal/geo"
	"github.com/tomtom215/gatherly/internal/models"
)

// PutPlace creates or replaces a place and indexes its location.
func (s *Store) PutPlace(ctx context.Context, p *models.Place) (err error) {
	defer func(start time.Time) { observe("put", colPlaces, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return err
	}
	if err := validID(p.ID); err != nil {
		return err
	}
	if !p.Location.Valid() {
		return fmt.Errorf("%w: %+v", models.ErrInvalidLocation, p.Location)
	}

	err = s.update(func(txn *badger.Txn) error {
		return setJSON(txn, key(colPlaces, p.ID), p)
	})
	if err != nil {
		return fmt.Errorf("put place %s: %w", p.ID, err)
	}

	s.grid.Insert(p.ID, p.Location)
	return nil
}

// GetPlace loads a place by ID.
func (s *Store) GetPlace(ctx context.Context, id string) (p *models.Place, err error) {
	defer func(start time.Time) { observe("get", colPlaces, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var place models.Place
	err = s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key(colPlaces, id), &place)
	})
	if err != nil {
		return nil, fmt.Errorf("get place %s: %w", id, err)
	}
	return &place, nil
}

// GetPlacesNear returns the places within radiusKm of (lat, lng), nearest
// first and by ID on equal distance.
func (s *Store) GetPlacesNear(ctx context.Context, lat, lng, radiusKm float64) (places []models.Place, err error) {
	defer func(start time.Time) { observe("near", colPlaces, start, err) }(time.Now())

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	hits := s.grid.Nearby(geo.Location{Lat: lat, Lng: lng}, radiusKm)
	if len(hits) == 0 {
		return []models.Place{}, nil
	}

	places = make([]models.Place, 0, len(hits))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, hit := range hits {
			if err := ctx.Err(); err != nil {
				return err
			}
			var p models.Place
			err := getJSON(txn, key(colPlaces, hit.ID), &p)
			if errors.Is(err, ErrNotFound) {
				// Indexed but gone; the grid is only an accelerator.
				continue
			}
			if err != nil {
				return err
			}
			places = append(places, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get places near: %w", err)
	}
	return places, nil
}

// loadGrid indexes every stored place. Called once from Open.
func (s *Store) loadGrid() error {
	p := prefix(colPlaces)
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var place models.Place
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &place)
			})
			if err != nil {
				s.logger.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("skipping unreadable place")
				continue
			}
			s.grid.Insert(place.ID, place.Location)
		}
		return nil
	})
}
