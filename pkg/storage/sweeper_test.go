// SPDX-FileCopyrightText: Copyright 2026 The authrelay Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperRunOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newFakeClock()

	pending := NewMemoryStore[*PendingAuthRequest](10*time.Minute, WithClock[*PendingAuthRequest](clock.Now))
	codes := NewMemoryStore[*IssuedAuthCode](10*time.Minute, WithClock[*IssuedAuthCode](clock.Now))
	refresh := NewMemoryStore[*RefreshRecord](30*24*time.Hour, WithClock[*RefreshRecord](clock.Now))

	require.NoError(t, pending.Put(ctx, "s", &PendingAuthRequest{}))
	require.NoError(t, codes.Put(ctx, "c", &IssuedAuthCode{}))
	require.NoError(t, refresh.Put(ctx, "r", &RefreshRecord{}))

	sweeper := NewSweeper([]Sweepable{
		namedSweepable{"pending_requests", pending.Sweep},
		namedSweepable{"issued_codes", codes.Sweep},
		namedSweepable{"refresh_records", refresh.Sweep},
	}, time.Minute)

	// Pending requests and codes age out; the refresh record survives.
	clock.Advance(11 * time.Minute)
	sweeper.RunOnce()

	assert.Equal(t, 0, pending.Len())
	assert.Equal(t, 0, codes.Len())
	assert.Equal(t, 1, refresh.Len())

	clock.Advance(31 * 24 * time.Hour)
	sweeper.RunOnce()
	assert.Equal(t, 0, refresh.Len())
}

func TestSweeperLifecycle(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore[string](time.Minute)
	sweeper := NewSweeper([]Sweepable{namedSweepable{"test", store.Sweep}}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		sweeper.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
