// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package output renders cache entries as text tables, JSON, YAML or raw
// documents, and diffs stored payloads.
package output
