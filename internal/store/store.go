// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package store persists users, places, ratings and groups in BadgerDB.
//
// Documents are JSON encoded under a collection prefix. Secondary indexes
// (ratings per place, one rating per user per place) live in the same keyspace
// and are maintained in the same transaction as the document they point to.
// Place locations are also held in an in-memory geo.Grid, rebuilt on Open,
// which serves GetPlacesNear.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/gatherly/internal/geo"
	"github.com/tomtom215/gatherly/internal/metrics"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store is closed")

	// ErrInvalidID is returned for empty IDs or IDs containing the key separator.
	ErrInvalidID = errors.New("invalid id")
)

// keySep separates key segments. IDs may not contain it.
const keySep = "\x00"

// Collection prefixes.
const (
	colUsers       = "user"
	colPlaces      = "place"
	colRatings     = "rating"
	colPlaceIndex  = "place_rating"
	colUniqueIndex = "user_place"
	colStats       = "stats"
	colGroups      = "group"
)

// maxTxnRetries bounds retries of a transaction that lost a conflict.
const maxTxnRetries = 5

// Config holds BadgerDB settings.
type Config struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps everything in RAM; used by tests and ephemeral runs.
	InMemory bool `koanf:"in_memory"`

	// SyncWrites fsyncs every commit.
	SyncWrites bool `koanf:"sync_writes"`

	// GCInterval is how often the value log is garbage collected.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCRatio is the discard ratio passed to RunValueLogGC.
	GCRatio float64 `koanf:"gc_ratio"`

	// GridCellKm sizes the spatial index cells.
	GridCellKm float64 `koanf:"grid_cell_km"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Path:       "/data/gatherly",
		SyncWrites: true,
		GCInterval: 10 * time.Minute,
		GCRatio:    0.5,
		GridCellKm: 5,
	}
}

// Store is the BadgerDB backed document store.
type Store struct {
	db     *badger.DB
	cfg    Config
	logger zerolog.Logger
	grid   *geo.Grid

	// groupLocks serialises writers per group on top of badger's optimistic
	// transactions.
	groupLocks sync.Map // map[string]*sync.Mutex

	mu             sync.RWMutex
	closed         bool
	ratingsChanged []func(placeID string)
}

// Open opens (or creates) the store and loads the spatial index.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("store path is required unless in_memory is set")
	}
	if cfg.GCRatio <= 0 || cfg.GCRatio >= 1 {
		cfg.GCRatio = 0.5
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites && !cfg.InMemory

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "store").Logger(),
		grid:   geo.NewGrid(cfg.GridCellKm),
	}

	if err := s.loadGrid(); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Int("places_indexed", s.grid.Size()).
		Msg("store opened")

	return s, nil
}

// Close flushes and closes the database. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	s.logger.Info().Msg("store closed")
	return nil
}

// Ping reports whether the store can serve reads.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return nil
	})
}

// GCInterval returns the configured value log GC interval.
func (s *Store) GCInterval() time.Duration {
	return s.cfg.GCInterval
}

// RunGC reclaims value log space until nothing more can be rewritten.
func (s *Store) RunGC() error {
	if err := s.check(context.Background()); err != nil {
		return err
	}
	if s.cfg.InMemory {
		return nil
	}

	start := time.Now()
	rounds := 0
	for {
		err := s.db.RunValueLogGC(s.cfg.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			break
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
		rounds++
	}

	s.logger.Debug().Int("rounds", rounds).Dur("duration", time.Since(start)).Msg("value log GC complete")
	return nil
}

// OnRatingsChanged registers fn to be called after a committed rating write
// for the affected place.
func (s *Store) OnRatingsChanged(fn func(placeID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratingsChanged = append(s.ratingsChanged, fn)
}

func (s *Store) notifyRatingsChanged(placeID string) {
	s.mu.RLock()
	hooks := s.ratingsChanged
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(placeID)
	}
}

// check fails fast on a closed store or a cancelled context.
func (s *Store) check(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	return ctx.Err()
}

// update runs fn in a read-write transaction, retrying on badger conflicts.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

// observe records the duration and outcome of a store operation. Misses are
// not counted as errors.
func observe(operation, collection string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreOperation(operation, collection, time.Since(start), err)
}

// key joins a collection prefix and ID segments.
func key(collection string, parts ...string) []byte {
	var b strings.Builder
	b.WriteString(collection)
	for _, p := range parts {
		b.WriteString(keySep)
		b.WriteString(p)
	}
	return []byte(b.String())
}

// prefix returns the iteration prefix for keys under collection/parts.
func prefix(collection string, parts ...string) []byte {
	return append(key(collection, parts...), keySep...)
}

func validID(id string) error {
	if id == "" || strings.Contains(id, keySep) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// getJSON loads and decodes the document at k.
func getJSON(txn *badger.Txn, k []byte, v any) error {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// setJSON encodes v and stores it at k.
func setJSON(txn *badger.Txn, k []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return txn.Set(k, data)
}

// exists reports whether k is present.
func exists(txn *badger.Txn, k []byte) (bool, error) {
	_, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// keysWithPrefix collects the keys under p. Values are not fetched.
func keysWithPrefix(txn *badger.Txn, p []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = p
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}
