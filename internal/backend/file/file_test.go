// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/cache/cachetest"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestStore(t *testing.T) {
	cachetest.Run(t, func(t *testing.T) cache.Store { return newStore(t) })
}

func TestStore_Layout(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Put(context.Background(), cachetest.NewEntry("a", "2025-06-01T00:00:00Z")))

	p := filepath.Join(s.Dir(), EntriesDir, cachetest.Key[:2], cachetest.Key+".jsonl")
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"cached_at":"2025-06-01T00:00:00Z"`)
}

func TestStore_SkipsTornAndCorruptLines(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, cachetest.NewEntry("a", "2025-06-01T00:00:00Z")))

	p := s.path(cachetest.Key)
	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("{not json}\n" + `{"id":"torn","cache_key":"` + cachetest.Key + `","cached_at":"2025-07`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	h, err := s.History(ctx, cachetest.Key)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "a", h[0].ID)

	got, ok, err := s.LookupLatest(ctx, cachetest.Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestStore_PutAfterTornTail(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, cachetest.NewEntry("a", "2025-06-01T00:00:00Z")))

	p := s.path(cachetest.Key)
	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(`{"id":"torn","cache_key":"` + cachetest.Key + `","cached_at":"2025-07`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, s.Put(ctx, cachetest.NewEntry("b", "2025-06-02T00:00:00Z")))

	got, ok, err := s.LookupLatest(ctx, cachetest.Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	h, err := s.History(ctx, cachetest.Key)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "a", h[0].ID)
	assert.Equal(t, "b", h[1].ID)

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), "}\n"))
}

func TestStore_Unreadable(t *testing.T) {
	s := newStore(t)
	p := s.path(cachetest.Key)
	require.NoError(t, os.MkdirAll(p, 0o750), "a directory where the log should be")

	_, _, err := s.LookupLatest(context.Background(), cachetest.Key)
	assert.ErrorIs(t, err, cache.ErrStoreUnavailable)

	err = s.Put(context.Background(), cachetest.NewEntry("a", "2025-06-01T00:00:00Z"))
	assert.ErrorIs(t, err, cache.ErrStoreUnavailable)
}

func TestStore_Purge(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Put(context.Background(), cachetest.NewEntry("a", "2025-06-01T00:00:00Z")))
	stale := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(s.path(cachetest.Key), stale, stale))

	n, err := s.Purge(24)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, err := s.LookupLatest(context.Background(), cachetest.Key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, cache.ErrInvalidArgument)
}
