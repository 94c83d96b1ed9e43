// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package provider decorates a recommend.DataProvider with caching and
// circuit breaking.
package provider

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/gatherly/internal/cache"
	"github.com/tomtom215/gatherly/internal/metrics"
	"github.com/tomtom215/gatherly/internal/models"
	"github.com/tomtom215/gatherly/internal/recommend"
)

const ratingsCacheName = "ratings"

// Cached keeps recent per-place rating lists in memory. Candidate lookups pass
// straight through.
//
// Returned slices are shared with the cache and must not be modified.
type Cached struct {
	next    recommend.DataProvider
	ratings *cache.LRU[[]models.Rating]

	// generations counts invalidations per place. A fetch that started before
	// an invalidation must not be cached.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewCached wraps next with an LRU of size entries that expire after ttl.
func NewCached(next recommend.DataProvider, size int, ttl time.Duration) *Cached {
	return &Cached{
		next:        next,
		ratings:     cache.NewLRU[[]models.Rating](size, ttl),
		generations: make(map[string]uint64),
	}
}

// GetPlacesNear implements recommend.DataProvider.
func (c *Cached) GetPlacesNear(ctx context.Context, lat, lng, radiusKm float64) ([]models.Place, error) {
	return c.next.GetPlacesNear(ctx, lat, lng, radiusKm)
}

// GetRatingsForPlace implements recommend.DataProvider.
func (c *Cached) GetRatingsForPlace(ctx context.Context, placeID string) ([]models.Rating, error) {
	if ratings, ok := c.ratings.Get(placeID); ok {
		metrics.RecordCacheLookup(ratingsCacheName, true)
		return ratings, nil
	}
	metrics.RecordCacheLookup(ratingsCacheName, false)

	gen := c.generation(placeID)
	ratings, err := c.next.GetRatingsForPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	c.storeIfCurrent(placeID, gen, ratings)
	metrics.CacheSize.WithLabelValues(ratingsCacheName).Set(float64(c.ratings.Len()))
	return ratings, nil
}

// GetRatingCountForPlace answers from the cached list when there is one.
func (c *Cached) GetRatingCountForPlace(ctx context.Context, placeID string) (int, error) {
	if ratings, ok := c.ratings.Get(placeID); ok {
		return len(ratings), nil
	}
	return c.next.GetRatingCountForPlace(ctx, placeID)
}

// Invalidate drops the cached ratings of a place. The store calls it after
// every rating write.
func (c *Cached) Invalidate(placeID string) {
	c.mu.Lock()
	c.generations[placeID]++
	c.ratings.Remove(placeID)
	c.mu.Unlock()
}

func (c *Cached) generation(placeID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[placeID]
}

// storeIfCurrent caches ratings unless the place was invalidated after gen
// was read.
func (c *Cached) storeIfCurrent(placeID string, gen uint64, ratings []models.Rating) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[placeID] != gen {
		return
	}
	c.ratings.Set(placeID, ratings)
}

// Purge drops expired entries and returns how many were removed.
func (c *Cached) Purge() int {
	n := c.ratings.CleanupExpired()
	metrics.CacheSize.WithLabelValues(ratingsCacheName).Set(float64(c.ratings.Len()))
	return n
}
