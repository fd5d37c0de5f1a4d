// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "8177013172195f03dbcedcd7ddc0fa65f1e30d04"

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func entryAt(id, cachedAt string) Entry {
	return Entry{
		ID:        id,
		CacheKey:  testKey,
		QueryType: "demographics",
		Topic:     "Phoenix AZ",
		Result:    json.RawMessage(`{"population":1608139}`),
		CachedAt:  cachedAt,
	}
}

func TestFormatTimestamp(t *testing.T) {
	local := time.FixedZone("MST", -7*3600)
	ts := time.Date(2025, 6, 15, 5, 0, 0, 999, local)
	assert.Equal(t, "2025-06-15T12:00:00Z", FormatTimestamp(ts))
}

func TestEntry_Timestamp(t *testing.T) {
	tests := []struct {
		name     string
		cachedAt string
		want     time.Time
		wantErr  bool
	}{
		{"persisted layout", "2025-06-15T12:00:00Z", now, false},
		{"offset", "2025-06-15T05:00:00-07:00", now, false},
		{"fractional", "2025-06-15T12:00:00.5Z", now.Add(500 * time.Millisecond), false},
		{"naive", "2025-06-15T12:00:00", now, false},
		{"naive with space", "2025-06-15 12:00:00", now, false},
		{"missing", "", time.Time{}, true},
		{"garbage", "yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := entryAt("x", tt.cachedAt).Timestamp()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestIsFresh(t *testing.T) {
	maxAge := 14 * 24 * time.Hour

	tests := []struct {
		name     string
		cachedAt string
		maxAge   time.Duration
		want     bool
	}{
		{"just cached", FormatTimestamp(now), maxAge, true},
		{"exactly max age", FormatTimestamp(now.Add(-maxAge)), maxAge, true},
		{"one second past", FormatTimestamp(now.Add(-maxAge - time.Second)), maxAge, false},
		{"zero window same second", FormatTimestamp(now), 0, true},
		{"zero window older", FormatTimestamp(now.Add(-time.Second)), 0, false},
		{"future timestamp", FormatTimestamp(now.Add(time.Hour)), maxAge, true},
		{"corrupt", "not-a-date", maxAge, false},
		{"missing", "", maxAge, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsFresh(entryAt("x", tt.cachedAt), tt.maxAge, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsFresh_NegativeMaxAge(t *testing.T) {
	_, err := IsFresh(entryAt("x", FormatTimestamp(now)), -time.Second, now)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFreshnessDays(t *testing.T) {
	d, err := FreshnessDays(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxAge, d)

	d, err = FreshnessDays(3)
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, d)

	_, err = FreshnessDays(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLatest(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantID  string
		wantOK  bool
	}{
		{
			name:   "empty",
			wantOK: false,
		},
		{
			name: "greatest timestamp wins regardless of order",
			entries: []Entry{
				entryAt("a", "2025-06-10T00:00:00Z"),
				entryAt("b", "2025-06-14T00:00:00Z"),
				entryAt("c", "2025-06-12T00:00:00Z"),
			},
			wantID: "b",
			wantOK: true,
		},
		{
			name: "tie goes to later insertion",
			entries: []Entry{
				entryAt("a", "2025-06-14T00:00:00Z"),
				entryAt("b", "2025-06-14T00:00:00Z"),
			},
			wantID: "b",
			wantOK: true,
		},
		{
			name: "corrupt timestamp ranks oldest",
			entries: []Entry{
				entryAt("a", "2025-06-01T00:00:00Z"),
				entryAt("b", "garbage"),
			},
			wantID: "a",
			wantOK: true,
		},
		{
			name: "all corrupt falls back to insertion order",
			entries: []Entry{
				entryAt("a", "garbage"),
				entryAt("b", ""),
			},
			wantID: "b",
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Latest(tt.entries)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestEntry_Validate(t *testing.T) {
	e := entryAt("x", FormatTimestamp(now))
	assert.NoError(t, e.Validate())

	sha256Key := entryAt("x", FormatTimestamp(now))
	sha256Key.CacheKey = "9e461be6efabb57ef0990c49c067a484b0a814726c47b4d7834ff64f7f8070a6"
	assert.NoError(t, sha256Key.Validate())

	tests := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"missing key", func(e *Entry) { e.CacheKey = "" }},
		{"uppercase key", func(e *Entry) { e.CacheKey = "8177013172195F03DBCEDCD7DDC0FA65F1E30D04" }},
		{"short key", func(e *Entry) { e.CacheKey = "abc123" }},
		{"path in key", func(e *Entry) { e.CacheKey = "../../../../../../../../../../etc/passwd" }},
		{"0x prefixed key", func(e *Entry) { e.CacheKey = "0x77013172195f03dbcedcd7ddc0fa65f1e30d04" }},
		{"missing result", func(e *Entry) { e.Result = nil }},
		{"invalid result", func(e *Entry) { e.Result = json.RawMessage(`{"a":`) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entryAt("x", FormatTimestamp(now))
			tt.mutate(&e)
			assert.ErrorIs(t, e.Validate(), ErrInvalidArgument)
		})
	}
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey(testKey))
	assert.ErrorIs(t, ValidateKey("nope"), ErrInvalidArgument)
	assert.ErrorIs(t, ValidateKey(""), ErrInvalidArgument)
	assert.ErrorIs(t, ValidateKey("0x77013172195f03dbcedcd7ddc0fa65f1e30d04"), ErrInvalidArgument)
	assert.ErrorIs(t, ValidateKey("0x"+"9e461be6efabb57ef0990c49c067a484b0a814726c47b4d7834ff64f7f8070"), ErrInvalidArgument)
}

func TestEntry_JSONShape(t *testing.T) {
	b, err := json.Marshal(entryAt("id-1", "2025-06-15T12:00:00Z"))
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"id", "lead_id", "cache_key", "query_type", "topic", "result", "cached_at"}, keys)
	assert.JSONEq(t, `{"population":1608139}`, string(m["result"]))
}
