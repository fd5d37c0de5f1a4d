// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/rcachego/internal/config"
)

const setsConfig = `
get:
  sets:
    defaults:
      - --backend memory
    remote:
      - --backend s3 --bucket research-cache
      - --max-age 7d
`

func TestExpandArgSets(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rcache.yaml")
	require.NoError(t, os.WriteFile(p, []byte(setsConfig), 0o600))
	t.Setenv("RCACHE_CFG", p)
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults applied",
			args: []string{"rcache", "get", "-q", "q.json"},
			want: []string{"rcache", "get", "--backend", "memory", "-q", "q.json"},
		},
		{
			name: "named set replaces defaults",
			args: []string{"rcache", "get", "@remote", "-q", "q.json"},
			want: []string{"rcache", "get", "--backend", "s3", "--bucket", "research-cache", "--max-age", "7d", "-q", "q.json"},
		},
		{
			name: "unknown set adds nothing",
			args: []string{"rcache", "get", "-q", "q.json", "@missing"},
			want: []string{"rcache", "get", "-q", "q.json"},
		},
		{
			name: "no sets for command",
			args: []string{"rcache", "lookup", "abc"},
			want: []string{"rcache", "lookup", "abc"},
		},
		{
			name: "help untouched",
			args: []string{"rcache", "get", "@remote", "--help"},
			want: []string{"rcache", "get", "@remote", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandArgSets(tt.args))
		})
	}
}
