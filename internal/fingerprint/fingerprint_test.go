// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fingerprint

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phoenixSHA1 = "8177013172195f03dbcedcd7ddc0fa65f1e30d04"

func TestOf_KnownDigests(t *testing.T) {
	q := map[string]any{"type": "demographics", "topic": "Phoenix AZ"}

	tests := []struct {
		algorithm Algorithm
		want      string
	}{
		{SHA1, phoenixSHA1},
		{SHA256, "9e461be6efabb57ef0990c49c067a484b0a814726c47b4d7834ff64f7f8070a6"},
		{BLAKE2b, "f88896efb789ef1eda14f7ac840d9d3a696c82248722683b66ad013753569112"},
	}
	for _, tt := range tests {
		t.Run(string(tt.algorithm), func(t *testing.T) {
			got, err := New(WithAlgorithm(tt.algorithm)).Of(q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := Of(q)
	require.NoError(t, err)
	assert.Equal(t, phoenixSHA1, got)
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "sorted nested keys",
			input: map[string]any{"b": []any{true, nil, "x"}, "a": 1},
			want:  `{"a":1,"b":[true,null,"x"]}`,
		},
		{
			name:  "uuid rendered as string",
			input: map[string]any{"lead": uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")},
			want:  `{"lead":"6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`,
		},
		{
			name:  "time rendered as RFC3339",
			input: map[string]any{"since": time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
			want:  `{"since":"2025-03-01T00:00:00Z"}`,
		},
		{
			name:  "no html escaping",
			input: map[string]string{"q": "a<b & c>d"},
			want:  `{"q":"a<b & c>d"}`,
		},
		{
			name:  "integer map keys",
			input: map[int]string{10: "ten", 2: "two"},
			want:  `{"10":"ten","2":"two"}`,
		},
		{
			name:  "raw json is re-sorted",
			input: json.RawMessage(`{ "z": 1.50, "a": {"y": 2, "x": 1} }`),
			want:  `{"a":{"x":1,"y":2},"z":1.50}`,
		},
		{
			name: "struct uses json names",
			input: struct {
				Topic string `json:"topic"`
				Type  string `json:"type"`
			}{"Phoenix AZ", "demographics"},
			want: `{"topic":"Phoenix AZ","type":"demographics"}`,
		},
		{
			name:  "floats",
			input: []float64{1, 0.5, 1e21},
			want:  `[1,0.5,1e+21]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestOf_KeyOrderIndependent(t *testing.T) {
	a := json.RawMessage(`{"type":"demographics","topic":"Phoenix AZ","params":{"radius":10,"units":"mi"}}`)
	b := map[string]any{
		"params": map[string]any{"units": "mi", "radius": 10},
		"topic":  "Phoenix AZ",
		"type":   "demographics",
	}

	ka, err := Of(a)
	require.NoError(t, err)
	kb, err := Of(b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
}

func TestOf_DistinctInputs(t *testing.T) {
	samples := []any{
		map[string]any{"type": "demographics", "topic": "Phoenix AZ"},
		map[string]any{"type": "demographics", "topic": "Phoenix, AZ"},
		map[string]any{"type": "demographics", "topic": "phoenix az"},
		map[string]any{"type": "market", "topic": "Phoenix AZ"},
		map[string]any{"type": "demographics", "topic": "Phoenix AZ", "entity": "Maricopa"},
		map[string]any{"type": "demographics", "topic": "Phoenix AZ", "params": map[string]any{"year": 2024}},
		map[string]any{"type": "demographics", "topic": "Phoenix AZ", "params": map[string]any{"year": "2024"}},
		map[string]any{"type": "demographics", "topic": []string{"Phoenix AZ"}},
	}

	seen := map[string]int{}
	for i, s := range samples {
		k, err := Of(s)
		require.NoError(t, err)
		assert.Len(t, k, 40)
		if j, dup := seen[k]; dup {
			t.Fatalf("samples %d and %d share key %s", j, i, k)
		}
		seen[k] = i
	}
}

func TestOf_SerializationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"nil", nil},
		{"channel", map[string]any{"c": make(chan int)}},
		{"func", map[string]any{"f": func() {}}},
		{"complex", map[string]any{"z": complex(1, 2)}},
		{"nan", map[string]any{"n": math.NaN()}},
		{"inf", []any{math.Inf(1)}},
		{"struct map key", map[struct{ A int }]string{{1}: "x"}},
		{"bad raw json", json.RawMessage(`{"a":`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Of(tt.input)
			assert.ErrorIs(t, err, ErrSerialization)
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, SHA1, a)

	a, err = ParseAlgorithm("blake2b")
	require.NoError(t, err)
	assert.Equal(t, BLAKE2b, a)

	_, err = ParseAlgorithm("md5")
	assert.Error(t, err)
}
