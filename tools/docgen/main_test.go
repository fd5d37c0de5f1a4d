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
)

const lookupDoc = "# rcache lookup\n\n" +
	"## Short description\n\n" +
	"Check the cache for a key without computing anything.\n\n" +
	"## Quick examples\n\n" +
	"```sh\n" +
	"# Look up a key with the default window\n" +
	"rcache lookup 8177013172195f03dbcedcd7ddc0fa65f1e30d04\n" +
	"# Only accept entries from the last 3 days\n" +
	"rcache   lookup KEY -d 3\n" +
	"```\n"

func TestExtractTitleAndShortDesc(t *testing.T) {
	title, short := extractTitleAndShortDesc(lookupDoc)
	assert.Equal(t, "rcache lookup", title)
	assert.Equal(t, "Check the cache for a key without computing anything.", short)

	title, short = extractTitleAndShortDesc("# rcache purge\n\nNo sections here.\n")
	assert.Equal(t, "rcache purge", title)
	assert.Equal(t, "rcache purge.", short)
}

func TestExtractQuickExamples(t *testing.T) {
	exs := extractQuickExamples(lookupDoc)
	require.Len(t, exs, 2)
	assert.Equal(t, example{"Look up a key with the default window", "rcache lookup 8177013172195f03dbcedcd7ddc0fa65f1e30d04"}, exs[0])
	assert.Equal(t, example{"Only accept entries from the last 3 days", "rcache lookup KEY -d 3"}, exs[1])

	assert.Nil(t, extractQuickExamples("# nothing\n"))
}

func TestBuildTLDR(t *testing.T) {
	got := buildTLDR("rcache", "lookup", "rcache lookup", "Check a key.", []example{{"Look up", "rcache lookup KEY"}})
	assert.Equal(t, "# rcache-lookup\n\n> Check a key.\n> More information: "+repoURL+".\n\n- Look up:\n\n`rcache lookup KEY`\n", got)

	got = buildTLDR("rcache", "purge", "", "", nil)
	assert.Contains(t, got, "`rcache purge --help`")
}

func TestGenerator_Run(t *testing.T) {
	root := t.TempDir()
	g := generator{
		bin:           "rcache",
		commandsDir:   filepath.Join(root, "commands"),
		manOutDir:     filepath.Join(root, "man"),
		tldrOutDir:    filepath.Join(root, "tldr"),
		onlyIfChanged: true,
	}
	require.NoError(t, os.MkdirAll(g.commandsDir, 0o755))

	_, err := g.run()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(g.commandsDir, "lookup.md"), []byte(lookupDoc), 0o600))
	n, err := g.run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.FileExists(t, filepath.Join(g.manOutDir, "rcache-lookup.1"))
	tldr, err := os.ReadFile(filepath.Join(g.tldrOutDir, "rcache-lookup.md"))
	require.NoError(t, err)
	assert.Contains(t, string(tldr), "# rcache-lookup")

	// A second run leaves unchanged files alone.
	info, err := os.Stat(filepath.Join(g.tldrOutDir, "rcache-lookup.md"))
	require.NoError(t, err)
	_, err = g.run()
	require.NoError(t, err)
	again, err := os.Stat(filepath.Join(g.tldrOutDir, "rcache-lookup.md"))
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime())
}
