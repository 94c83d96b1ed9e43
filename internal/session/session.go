// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

// Package session keeps short-lived planning conversations in memory.
//
// A session ties a chat channel (or any client-chosen correlation ID) to the
// group being planned in it and the step the conversation has reached.
// Sessions are not persisted: they expire after a period of inactivity and the
// least recently used one is evicted when the store is full.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/gatherly/internal/cache"
	"github.com/tomtom215/gatherly/internal/metrics"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidSession is returned for an empty channel ID or an unknown stage.
	ErrInvalidSession = errors.New("invalid session")
)

// Stage is the step a planning conversation has reached.
type Stage string

const (
	StageOnboarding Stage = "onboarding" // members taking the quiz
	StageForming    Stage = "forming"    // members joining
	StageSearching  Stage = "searching"  // recommendations requested
	StageVoting     Stage = "voting"
	StageDecided    Stage = "decided"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageOnboarding, StageForming, StageSearching, StageVoting, StageDecided:
		return true
	}
	return false
}

// Session is the state of one planning conversation.
type Session struct {
	ChannelID string    `json:"channel_id"`
	GroupID   string    `json:"group_id,omitempty"`
	Stage     Stage     `json:"stage"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Config sizes the session store.
type Config struct {
	TTL           time.Duration `koanf:"ttl"`
	Capacity      int           `koanf:"capacity"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// DefaultConfig returns a one hour idle TTL for up to 10000 sessions.
func DefaultConfig() Config {
	return Config{
		TTL:           time.Hour,
		Capacity:      10000,
		SweepInterval: time.Minute,
	}
}

// Store holds sessions keyed by channel ID.
type Store struct {
	sessions *cache.LRU[Session]
	now      func() time.Time
}

// NewStore creates a session store. now may be nil, meaning time.Now; it
// drives both UpdatedAt and expiry.
func NewStore(cfg Config, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: cache.NewLRU[Session](cfg.Capacity, cfg.TTL, cache.WithClock(now)),
		now:      now,
	}
}

// Put creates or replaces the session for in.ChannelID and refreshes its TTL.
func (s *Store) Put(in Session) (Session, error) {
	in.ChannelID = strings.TrimSpace(in.ChannelID)
	if in.ChannelID == "" {
		return Session{}, fmt.Errorf("%w: channel id is required", ErrInvalidSession)
	}
	if in.Stage == "" {
		in.Stage = StageOnboarding
	}
	if !in.Stage.Valid() {
		return Session{}, fmt.Errorf("%w: unknown stage %q", ErrInvalidSession, in.Stage)
	}

	in.UpdatedAt = s.now().UTC()
	s.sessions.Set(in.ChannelID, in)
	metrics.SessionsActive.Set(float64(s.sessions.Len()))
	return in, nil
}

// Get returns the live session for channelID. Reading a session counts as
// activity and extends its TTL.
func (s *Store) Get(channelID string) (Session, error) {
	sess, ok := s.sessions.Get(channelID)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, channelID)
	}
	s.sessions.Touch(channelID)
	return sess, nil
}

// Delete ends a session.
func (s *Store) Delete(channelID string) error {
	if !s.sessions.Remove(channelID) {
		return fmt.Errorf("%w: %s", ErrNotFound, channelID)
	}
	metrics.SessionsActive.Set(float64(s.sessions.Len()))
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	removed := s.sessions.CleanupExpired()
	metrics.SessionsExpired.Add(float64(removed))
	metrics.SessionsActive.Set(float64(s.sessions.Len()))
	return removed
}

// Len returns the number of stored sessions, including expired ones not yet swept.
func (s *Store) Len() int {
	return s.sessions.Len()
}
