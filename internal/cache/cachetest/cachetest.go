// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cachetest holds the behavior every cache.Store backend must share.
package cachetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/rcachego/internal/cache"
)

// Key is a valid SHA1 cache key used by the suite.
const Key = "8177013172195f03dbcedcd7ddc0fa65f1e30d04"

// OtherKey is a second valid key that never receives entries.
const OtherKey = "45c76c2a65dbbc0e77af529f305a29d3285e3a9f"

// NewEntry returns a valid entry for Key.
func NewEntry(id, cachedAt string) cache.Entry {
	return cache.Entry{
		ID:        id,
		LeadID:    "lead-1",
		CacheKey:  Key,
		QueryType: "demographics",
		Topic:     "Phoenix AZ",
		Result:    json.RawMessage(fmt.Sprintf(`{"run":%q}`, id)),
		CachedAt:  cachedAt,
	}
}

// Run exercises a fresh store returned by newStore for every subtest.
func Run(t *testing.T, newStore func(t *testing.T) cache.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("lookup missing key", func(t *testing.T) {
		s := newStore(t)
		_, ok, err := s.LookupLatest(ctx, OtherKey)
		require.NoError(t, err)
		assert.False(t, ok)

		h, err := s.History(ctx, OtherKey)
		require.NoError(t, err)
		assert.Empty(t, h)
	})

	t.Run("put then lookup round trips", func(t *testing.T) {
		s := newStore(t)
		e := NewEntry("a", "2025-06-01T00:00:00Z")
		require.NoError(t, s.Put(ctx, e))

		got, ok, err := s.LookupLatest(ctx, Key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, e.LeadID, got.LeadID)
		assert.Equal(t, e.QueryType, got.QueryType)
		assert.Equal(t, e.Topic, got.Topic)
		assert.Equal(t, e.CachedAt, got.CachedAt)
		assert.JSONEq(t, string(e.Result), string(got.Result))
	})

	t.Run("append keeps history", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewEntry("a", "2025-06-01T00:00:00Z")))
		require.NoError(t, s.Put(ctx, NewEntry("b", "2025-06-16T00:00:00Z")))

		h, err := s.History(ctx, Key)
		require.NoError(t, err)
		require.Len(t, h, 2)
		assert.Equal(t, "a", h[0].ID)
		assert.Equal(t, "b", h[1].ID)

		got, ok, err := s.LookupLatest(ctx, Key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "b", got.ID)
	})

	t.Run("greatest timestamp wins over insertion order", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewEntry("new", "2025-06-16T00:00:00Z")))
		require.NoError(t, s.Put(ctx, NewEntry("old", "2025-06-01T00:00:00Z")))

		got, ok, err := s.LookupLatest(ctx, Key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "new", got.ID)
	})

	t.Run("tie goes to later insertion", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewEntry("first", "2025-06-16T00:00:00Z")))
		require.NoError(t, s.Put(ctx, NewEntry("second", "2025-06-16T00:00:00Z")))

		got, ok, err := s.LookupLatest(ctx, Key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "second", got.ID)
	})

	t.Run("corrupt timestamp ranks oldest", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Put(ctx, NewEntry("good", "2025-06-01T00:00:00Z")))
		require.NoError(t, s.Put(ctx, NewEntry("bad", "not-a-date")))

		got, ok, err := s.LookupLatest(ctx, Key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "good", got.ID)
	})

	t.Run("invalid entry rejected", func(t *testing.T) {
		s := newStore(t)
		e := NewEntry("a", "2025-06-01T00:00:00Z")
		e.CacheKey = "../escape"
		assert.ErrorIs(t, s.Put(ctx, e), cache.ErrInvalidArgument)
	})

	t.Run("invalid key rejected on read", func(t *testing.T) {
		s := newStore(t)
		_, _, err := s.LookupLatest(ctx, "../escape")
		assert.ErrorIs(t, err, cache.ErrInvalidArgument)
	})

	t.Run("concurrent puts", func(t *testing.T) {
		s := newStore(t)
		const n = 16
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.Put(ctx, NewEntry(fmt.Sprintf("w%02d", i), "2025-06-01T00:00:00Z"))
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		h, err := s.History(ctx, Key)
		require.NoError(t, err)
		assert.Len(t, h, n)
		for _, e := range h {
			assert.True(t, json.Valid(e.Result))
		}
	})
}
