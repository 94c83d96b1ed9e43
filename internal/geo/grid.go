// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package geo

import (
	"math"
	"sort"
	"sync"
)

// kmPerDegree is the approximate length of one degree of latitude.
const kmPerDegree = 111.0

// Grid divides geographic space into square cells so proximity queries only
// visit cells around the query point instead of every indexed place.
//
// Time Complexity:
//   - Insert: O(1)
//   - Remove: O(1) amortized (swap-delete inside the cell)
//   - Nearby: O(k) where k = entries in the visited cells
type Grid struct {
	mu       sync.RWMutex
	cells    map[cellKey][]string
	points   map[string]gridEntry
	cellSize float64 // degrees
}

type cellKey struct {
	X, Y int
}

type gridEntry struct {
	loc  Location
	cell cellKey
}

// Hit is a single result of a proximity query.
type Hit struct {
	ID         string
	Location   Location
	DistanceKm float64
}

// NewGrid creates a grid whose cells are roughly cellSizeKm wide.
// Default: 5km, which keeps a typical 5-25km outing radius to a handful of cells.
func NewGrid(cellSizeKm float64) *Grid {
	if cellSizeKm <= 0 {
		cellSizeKm = 5
	}
	return &Grid{
		cells:    make(map[cellKey][]string),
		points:   make(map[string]gridEntry),
		cellSize: cellSizeKm / kmPerDegree,
	}
}

func (g *Grid) keyFor(loc Location) cellKey {
	lng := loc.Lng
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return cellKey{
		X: int(math.Floor(lng / g.cellSize)),
		Y: int(math.Floor(loc.Lat / g.cellSize)),
	}
}

// Insert adds or moves an entry.
func (g *Grid) Insert(id string, loc Location) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.points[id]; ok {
		g.removeFromCellLocked(id, existing.cell)
	}

	key := g.keyFor(loc)
	g.cells[key] = append(g.cells[key], id)
	g.points[id] = gridEntry{loc: loc, cell: key}
}

// Remove deletes an entry by ID. Returns false if the ID was not indexed.
func (g *Grid) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	existing, ok := g.points[id]
	if !ok {
		return false
	}
	g.removeFromCellLocked(id, existing.cell)
	delete(g.points, id)
	return true
}

// removeFromCellLocked must be called with mu held.
func (g *Grid) removeFromCellLocked(id string, key cellKey) {
	ids := g.cells[key]
	for i, candidate := range ids {
		if candidate == id {
			ids[i] = ids[len(ids)-1]
			ids = ids[:len(ids)-1]
			break
		}
	}
	if len(ids) == 0 {
		delete(g.cells, key)
		return
	}
	g.cells[key] = ids
}

// Nearby returns every entry within radiusKm of center, ordered by distance
// and then by ID so identical inputs always produce identical output.
func (g *Grid) Nearby(center Location, radiusKm float64) []Hit {
	if radiusKm < 0 || !center.Valid() {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	// Longitude degrees shrink toward the poles, so widen the X span by 1/cos(lat).
	spanY := int(math.Ceil(radiusKm/kmPerDegree/g.cellSize)) + 1
	cosLat := math.Cos(toRadians(center.Lat))
	var spanX int
	if cosLat > 0.01 {
		spanX = int(math.Ceil(radiusKm/(kmPerDegree*cosLat)/g.cellSize)) + 1
	} else {
		spanX = int(math.Ceil(360/g.cellSize)) + 1
	}

	centerKey := g.keyFor(center)
	var hits []Hit
	for dx := -spanX; dx <= spanX; dx++ {
		for dy := -spanY; dy <= spanY; dy++ {
			for _, id := range g.cells[cellKey{X: centerKey.X + dx, Y: centerKey.Y + dy}] {
				loc := g.points[id].loc
				d := center.DistanceTo(loc)
				if d <= radiusKm {
					hits = append(hits, Hit{ID: id, Location: loc, DistanceKm: d})
				}
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceKm != hits[j].DistanceKm {
			return hits[i].DistanceKm < hits[j].DistanceKm
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// Size returns the number of indexed entries.
func (g *Grid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.points)
}
