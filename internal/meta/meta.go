// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/staranto/rcachego/internal/config"
)

// Meta are the meta-options that are available on all commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// CacheDir is the resolved base directory of the file backend.
	CacheDir string
	// Stdin and Stdout default to the process streams; tests replace them.
	IO
}
