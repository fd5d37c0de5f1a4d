// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package memory is a process-local cache.Store.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/staranto/rcachego/internal/cache"
)

type Store struct {
	mu      sync.RWMutex
	entries map[string][]cache.Entry
}

func New() *Store {
	return &Store{entries: map[string][]cache.Entry{}}
}

func (s *Store) Put(_ context.Context, e cache.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	// Result is copied so later changes by the caller cannot reach the store.
	e.Result = slices.Clone(e.Result)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.CacheKey] = append(s.entries[e.CacheKey], e)
	return nil
}

func (s *Store) LookupLatest(ctx context.Context, key string) (cache.Entry, bool, error) {
	h, err := s.History(ctx, key)
	if err != nil {
		return cache.Entry{}, false, err
	}
	e, ok := cache.Latest(h)
	return e, ok, nil
}

func (s *Store) History(_ context.Context, key string) ([]cache.Entry, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries[key]), nil
}

// Len returns the number of entries stored for key.
func (s *Store) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[key])
}

func (s *Store) Close() error { return nil }
