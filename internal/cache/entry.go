// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TimestampLayout is the persisted cached_at format: UTC, second precision,
// Z suffix.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Entry is one stored research result. Entries are never mutated; a new run
// for the same query appends another Entry with the same CacheKey.
type Entry struct {
	ID        string          `json:"id" yaml:"id"`
	LeadID    string          `json:"lead_id" yaml:"lead_id"`
	CacheKey  string          `json:"cache_key" yaml:"cache_key" validate:"required,hexadecimal,lowercase,excludes=x,len=40|len=64"`
	QueryType string          `json:"query_type" yaml:"query_type"`
	Topic     string          `json:"topic" yaml:"topic"`
	Result    json.RawMessage `json:"result" yaml:"-" validate:"required"`
	// CachedAt is kept verbatim so a corrupt value survives a round trip and
	// is judged by the freshness policy rather than the decoder.
	CachedAt string `json:"cached_at" yaml:"cached_at"`
}

var validate = validator.New()

// Validate checks the fields a Store needs before persisting e.
func (e Entry) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: entry: %v", ErrInvalidArgument, err)
	}
	if !json.Valid(e.Result) {
		return fmt.Errorf("%w: entry result is not valid JSON", ErrInvalidArgument)
	}
	return nil
}

// ValidateKey checks that key has the shape of a cache key.
func ValidateKey(key string) error {
	if err := validate.Var(key, "required,hexadecimal,lowercase,excludes=x,len=40|len=64"); err != nil {
		return fmt.Errorf("%w: cache key %q", ErrInvalidArgument, key)
	}
	return nil
}

// FormatTimestamp renders t in the persisted cached_at layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Timestamp parses CachedAt. RFC3339 values with any offset are accepted, as
// are zone-less values which are taken as UTC.
func (e Entry) Timestamp() (time.Time, error) {
	s := strings.TrimSpace(e.CachedAt)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing cached_at")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable cached_at %q", e.CachedAt)
}

// Age returns how long ago the entry was cached, or false when the timestamp
// cannot be parsed.
func (e Entry) Age(now time.Time) (time.Duration, bool) {
	ts, err := e.Timestamp()
	if err != nil {
		return 0, false
	}
	return now.Sub(ts), true
}

// Latest returns the most recent entry of entries, which must be in insertion
// order. Ties go to the later insertion; unparseable timestamps rank as
// infinitely old.
func Latest(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}

	best := -1
	var bestTS time.Time
	for i, e := range entries {
		ts, err := e.Timestamp()
		if err != nil {
			ts = time.Time{}
		}
		if best < 0 || !ts.Before(bestTS) {
			best, bestTS = i, ts
		}
	}
	return entries[best], true
}
