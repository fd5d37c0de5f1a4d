// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/cache/cachetest"
)

func TestStore(t *testing.T) {
	cachetest.Run(t, func(t *testing.T) cache.Store { return New() })
}

func TestStore_ResultIsCopied(t *testing.T) {
	s := New()
	e := cachetest.NewEntry("a", "2025-06-01T00:00:00Z")
	require.NoError(t, s.Put(context.Background(), e))
	e.Result[2] = 'X'

	got, ok, err := s.LookupLatest(context.Background(), cachetest.Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"run":"a"}`, string(got.Result))
	assert.Equal(t, 1, s.Len(cachetest.Key))
}
