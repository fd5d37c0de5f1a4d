// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Setenv("RCACHE_CACHE_DIR", "/tmp/rcache-test")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/rcache-test", dir)
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"1", true},
		{"true", true},
		{"0", false},
		{"false", false},
	}
	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Setenv("RCACHE_CACHE", tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestEnsureBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "cache")
	t.Setenv("RCACHE_CACHE_DIR", base)
	t.Setenv("RCACHE_CACHE", "")

	got, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, got)
	assert.DirExists(t, base)

	t.Setenv("RCACHE_CACHE", "false")
	_, ok, err = EnsureBaseDir()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLogPath(t *testing.T) {
	key := "3f786850e387550fdab836ed7e6dc881de23001b"
	assert.Equal(t, filepath.Join("/base", "entries", key+LogExt), LogPath("/base", []string{"entries"}, key))

	// Non-hex keys are hashed so they stay inside base.
	p := LogPath("/base", nil, "../../etc/passwd")
	assert.Equal(t, "/base", filepath.Dir(p))
	assert.Equal(t, EncodeKey("../../etc/passwd")+LogExt, filepath.Base(p))
}

func TestIsHexKey(t *testing.T) {
	assert.True(t, IsHexKey("0123456789abcdef"))
	assert.False(t, IsHexKey(""))
	assert.False(t, IsHexKey("ABCDEF"))
	assert.False(t, IsHexKey("abc/def"))
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	oldLog := filepath.Join(base, "old"+LogExt)
	newLog := filepath.Join(base, "new"+LogExt)
	other := filepath.Join(base, "notes.txt")
	for _, p := range []string{oldLog, newLog, other} {
		require.NoError(t, os.WriteFile(p, []byte("{}\n"), 0o600))
	}
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldLog, stale, stale))
	require.NoError(t, os.Chtimes(other, stale, stale))

	n, err := Purge(base, 24)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, oldLog)
	assert.FileExists(t, newLog)
	assert.FileExists(t, other, "only append logs are purged")

	n, err = Purge(base, 0)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestEncodeKey(t *testing.T) {
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", EncodeKey("hello"))
}
