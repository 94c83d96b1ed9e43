// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package session

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(capacity int) (*Store, *clock) {
	c := &clock{t: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)}
	return NewStore(Config{TTL: 10 * time.Minute, Capacity: capacity}, c.now), c
}

func TestPutGet(t *testing.T) {
	t.Parallel()

	s, c := newTestStore(10)

	put, err := s.Put(Session{ChannelID: " chan-1 ", GroupID: "g1", Stage: StageVoting})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if put.ChannelID != "chan-1" || !put.UpdatedAt.Equal(c.now()) {
		t.Errorf("Put() = %+v", put)
	}

	got, err := s.Get("chan-1")
	if err != nil || got.GroupID != "g1" || got.Stage != StageVoting {
		t.Errorf("Get() = %+v, %v", got, err)
	}
}

func TestPut_DefaultsAndValidation(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(10)

	got, err := s.Put(Session{ChannelID: "c"})
	if err != nil || got.Stage != StageOnboarding {
		t.Errorf("Put() without stage = %+v, %v", got, err)
	}

	tests := []Session{
		{ChannelID: "", Stage: StageForming},
		{ChannelID: "   ", Stage: StageForming},
		{ChannelID: "c", Stage: "celebrating"},
	}
	for _, in := range tests {
		if _, err := s.Put(in); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Put(%+v) error = %v, want ErrInvalidSession", in, err)
		}
	}
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	s, c := newTestStore(10)
	if _, err := s.Put(Session{ChannelID: "idle", Stage: StageForming}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(Session{ChannelID: "busy", Stage: StageForming}); err != nil {
		t.Fatal(err)
	}

	c.advance(8 * time.Minute)
	if _, err := s.Get("busy"); err != nil {
		t.Fatalf("Get(busy) error = %v", err)
	}

	c.advance(5 * time.Minute)
	if _, err := s.Get("idle"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(idle) after TTL error = %v, want ErrNotFound", err)
	}
	if _, err := s.Get("busy"); err != nil {
		t.Errorf("Get(busy) within refreshed TTL error = %v", err)
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()

	s, c := newTestStore(10)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Put(Session{ChannelID: id}); err != nil {
			t.Fatal(err)
		}
	}
	c.advance(5 * time.Minute)
	if _, err := s.Put(Session{ChannelID: "d"}); err != nil {
		t.Fatal(err)
	}

	c.advance(6 * time.Minute)
	if removed := s.Sweep(); removed != 3 {
		t.Errorf("Sweep() = %d, want 3", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestCapacityEvictsLeastRecent(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(2)
	for _, id := range []string{"a", "b"} {
		if _, err := s.Put(Session{ChannelID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Get("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put(Session{ChannelID: "c"}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(b) error = %v, want evicted", err)
	}
	if _, err := s.Get("a"); err != nil {
		t.Errorf("Get(a) error = %v", err)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(10)
	if _, err := s.Put(Session{ChannelID: "c"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("c"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := s.Delete("c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStageValid(t *testing.T) {
	t.Parallel()

	for _, st := range []Stage{StageOnboarding, StageForming, StageSearching, StageVoting, StageDecided} {
		if !st.Valid() {
			t.Errorf("%q.Valid() = false", st)
		}
	}
	if Stage("").Valid() {
		t.Error(`"".Valid() = true`)
	}
}
