// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package file is a cache.Store kept as one append-only JSON Lines file per
// cache key beneath a base directory.
package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/apex/log"

	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/cacheutil"
)

// EntriesDir is the directory beneath the base that holds the key logs.
const EntriesDir = "entries"

// maxLine bounds a single persisted entry.
const maxLine = 64 << 20

type Store struct {
	base string
	// mu orders writers within this process; appends from other processes
	// rely on O_APPEND.
	mu sync.Mutex
}

// New opens a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: cache directory cannot be empty", cache.ErrInvalidArgument)
	}
	if err := os.MkdirAll(filepath.Join(dir, EntriesDir), 0o750); err != nil {
		return nil, fmt.Errorf("%w: failed to create cache directory: %v", cache.ErrStoreUnavailable, err)
	}
	log.Debugf("file store at %s", dir)
	return &Store{base: dir}, nil
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.base
}

func (s *Store) path(key string) string {
	return cacheutil.LogPath(filepath.Join(s.base, EntriesDir), []string{key[:2]}, key)
}

// Put appends e as one line. The line is written with a single write call
// so readers never see a torn entry.
func (s *Store) Put(ctx context.Context, e cache.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if buf.Len() > maxLine {
		return fmt.Errorf("%w: entry exceeds %d bytes", cache.ErrInvalidArgument, maxLine)
	}

	p := s.path(e.CacheKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("%w: %v", cache.ErrStoreUnavailable, err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", cache.ErrStoreUnavailable, p, err)
	}
	line := buf.Bytes()
	torn, err := hasTornTail(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: failed to inspect %s: %v", cache.ErrStoreUnavailable, p, err)
	}
	if torn {
		// Terminate the dead writer's partial line so this entry starts on
		// its own line.
		line = append([]byte{'\n'}, line...)
		log.WithField("key", e.CacheKey).Warnf("terminating torn line in %s", p)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: failed to append to %s: %v", cache.ErrStoreUnavailable, p, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %v", cache.ErrStoreUnavailable, p, err)
	}

	log.WithFields(log.Fields{"key": e.CacheKey, "id": e.ID}).Debug("appended cache entry")
	return nil
}

// hasTornTail reports whether f is non-empty and its last byte is not a
// newline.
func hasTornTail(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

func (s *Store) LookupLatest(ctx context.Context, key string) (cache.Entry, bool, error) {
	h, err := s.History(ctx, key)
	if err != nil {
		return cache.Entry{}, false, err
	}
	e, ok := cache.Latest(h)
	return e, ok, nil
}

// History reads the log for key. A trailing line without a newline is an
// append in progress and is skipped, as are lines that do not decode.
func (s *Store) History(ctx context.Context, key string) ([]cache.Entry, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := s.path(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to open %s: %v", cache.ErrStoreUnavailable, p, err)
	}
	defer f.Close()

	var entries []cache.Entry
	r := bufio.NewReaderSize(f, 64<<10)
	for lineNo := 1; ; lineNo++ {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			if len(bytes.TrimSpace(line)) > 0 {
				log.Debugf("skipping partial line %d in %s", lineNo, p)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s: %v", cache.ErrStoreUnavailable, p, err)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var e cache.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			log.WithError(err).Warnf("skipping corrupt line %d in %s", lineNo, p)
			continue
		}
		if e.CacheKey != key {
			log.Warnf("skipping line %d in %s: key %s does not match", lineNo, p, e.CacheKey)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Purge removes key logs that have not been appended to for hours.
func (s *Store) Purge(hours int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cacheutil.Purge(filepath.Join(s.base, EntriesDir), hours)
}

func (s *Store) Close() error { return nil }
