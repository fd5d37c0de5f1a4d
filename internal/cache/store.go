// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import "context"

//go:generate mockgen -destination=../mocks/cachemock/store.go -package=cachemock github.com/staranto/rcachego/internal/cache Store

// Store is an append-only collection of entries grouped by cache key.
// Implementations must be safe for concurrent use and must never return a
// partially written entry.
type Store interface {
	// Put appends e. Several entries may share a cache key.
	Put(ctx context.Context, e Entry) error
	// LookupLatest returns the entry with the greatest cached_at for key,
	// the most recently inserted one on ties.
	LookupLatest(ctx context.Context, key string) (Entry, bool, error)
	// History returns every entry for key in insertion order.
	History(ctx context.Context, key string) ([]Entry, error)
	// Close releases the backend.
	Close() error
}
