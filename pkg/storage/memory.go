// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"sync"
	"time"
)

// timedEntry wraps a stored value with its expiry for TTL tracking.
type timedEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-memory Store implementation. Each store
// has its own lock so unrelated flows (pending requests vs. codes vs.
// refresh records) never contend with each other.
//
// Expiry is enforced twice: at read time, so a stale entry is unusable the
// instant its TTL passes, and by Sweep, which bounds memory growth from
// abandoned flows.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]timedEntry[T]
	ttl     time.Duration

	// now is replaceable in tests to exercise expiry without sleeping.
	now func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption[T any] func(*MemoryStore[T])

// WithClock overrides the store's time source. Intended for tests.
func WithClock[T any](now func() time.Time) MemoryOption[T] {
	return func(s *MemoryStore[T]) {
		s.now = now
	}
}

// NewMemoryStore creates a MemoryStore whose entries expire ttl after Put.
func NewMemoryStore[T any](ttl time.Duration, opts ...MemoryOption[T]) *MemoryStore[T] {
	s := &MemoryStore[T]{
		entries: make(map[string]timedEntry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores value under key, replacing any existing entry.
func (s *MemoryStore[T]) Put(_ context.Context, key string, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = timedEntry[T]{
		value:     value,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Get returns the entry under key if present and not expired. Expired
// entries are left for the sweeper; an expired hit is indistinguishable
// from a miss.
func (s *MemoryStore[T]) Get(_ context.Context, key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Consume atomically looks up and deletes the entry under key. Under
// concurrent calls with the same key exactly one caller receives the value;
// every other caller sees a miss, the same as for a never-stored key.
func (s *MemoryStore[T]) Consume(_ context.Context, key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(s.entries, key)
	if s.now().After(entry.expiresAt) {
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Delete removes the entry under key if present.
func (s *MemoryStore[T]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len returns the number of entries currently held, expired or not.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes every expired entry and returns how many were evicted.
// Expired keys are collected under the read lock first so the write lock is
// held only for the deletions themselves.
func (s *MemoryStore[T]) Sweep() int {
	now := s.now()

	s.mu.RLock()
	var expired []string
	for k, v := range s.entries {
		if now.After(v.expiresAt) {
			expired = append(expired, k)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, k := range expired {
		// Re-check: the entry may have been consumed and re-put between
		// the two lock acquisitions.
		if v, ok := s.entries[k]; ok && now.After(v.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// NewMemoryStores creates the three in-memory stores with the given TTLs.
func NewMemoryStores(pendingTTL, codeTTL, refreshTTL time.Duration) (*Stores, []Sweepable) {
	pending := NewMemoryStore[*PendingAuthRequest](pendingTTL)
	codes := NewMemoryStore[*IssuedAuthCode](codeTTL)
	refresh := NewMemoryStore[*RefreshRecord](refreshTTL)

	stores := &Stores{
		Pending: pending,
		Codes:   codes,
		Refresh: refresh,
	}
	return stores, []Sweepable{
		namedSweepable{"pending_requests", pending.Sweep},
		namedSweepable{"issued_codes", codes.Sweep},
		namedSweepable{"refresh_records", refresh.Sweep},
	}
}
