// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"time"

	"github.com/relaykit/authrelay/pkg/logger"
)

// DefaultSweepInterval is how often the sweeper scans the stores.
const DefaultSweepInterval = 10 * time.Minute

// Sweepable is a store the sweeper can evict expired entries from.
type Sweepable interface {
	Name() string
	Sweep() int
}

// namedSweepable adapts a sweep function to the Sweepable interface.
type namedSweepable struct {
	name  string
	sweep func() int
}

func (n namedSweepable) Name() string { return n.name }
func (n namedSweepable) Sweep() int   { return n.sweep() }

// Sweeper periodically evicts expired entries from a set of stores. It runs
// on its own goroutine with an explicit lifecycle: Start launches it, and it
// stops when the context passed to Start is cancelled. Sweeping never blocks
// request handling; each store is locked only for its own scan-and-delete
// pass.
type Sweeper struct {
	stores   []Sweepable
	interval time.Duration
	done     chan struct{}
}

// NewSweeper creates a Sweeper over the given stores. A non-positive
// interval falls back to DefaultSweepInterval.
func NewSweeper(stores []Sweepable, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		stores:   stores,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. It returns immediately; the loop exits when
// ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce()
			}
		}
	}()
}

// Wait blocks until the sweep loop has fully stopped.
func (s *Sweeper) Wait() {
	<-s.done
}

// RunOnce performs a single sweep pass over every store. Exposed so tests
// can drive the sweeper directly instead of waiting on the ticker.
func (s *Sweeper) RunOnce() {
	for _, store := range s.stores {
		if removed := store.Sweep(); removed > 0 {
			logger.Debugw("swept expired entries",
				"store", store.Name(),
				"removed", removed,
			)
		}
	}
}
