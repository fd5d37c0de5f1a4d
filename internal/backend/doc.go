// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package backend opens the cache.Store implementations (memory, file, s3
// and postgres) from a single set of options.
package backend
