// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package invoker is the cache-aware research entry point. It fingerprints a
// query, serves a fresh stored result when one exists and otherwise runs the
// supplied compute and appends its result to the store.
//
// Cache failures degrade to recomputation: a lookup error is a miss and a
// store error after a successful compute is logged and reported alongside
// the result.
package invoker
