// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"errors"
	"fmt"
	"time"
)

// DefaultMaxAge is the freshness window used when the caller does not supply
// one.
const DefaultMaxAge = 14 * 24 * time.Hour

var (
	// ErrInvalidArgument marks a malformed freshness window, key or entry.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreUnavailable marks a backend that could not be read or written.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsFresh reports whether now - e.CachedAt <= maxAge. The boundary is
// inclusive. An entry whose timestamp is missing or unparseable is never
// fresh.
func IsFresh(e Entry, maxAge time.Duration, now time.Time) (bool, error) {
	if err := ValidateMaxAge(maxAge); err != nil {
		return false, err
	}
	age, ok := e.Age(now)
	if !ok {
		return false, nil
	}
	return age <= maxAge, nil
}

// ValidateMaxAge rejects negative freshness windows.
func ValidateMaxAge(maxAge time.Duration) error {
	if maxAge < 0 {
		return fmt.Errorf("%w: max age must not be negative, got %s", ErrInvalidArgument, maxAge)
	}
	return nil
}

// FreshnessDays converts a whole number of days to a freshness window. Zero
// selects DefaultMaxAge, negative values are rejected.
func FreshnessDays(days int) (time.Duration, error) {
	if days < 0 {
		return 0, fmt.Errorf("%w: freshness_days must not be negative, got %d", ErrInvalidArgument, days)
	}
	if days == 0 {
		return DefaultMaxAge, nil
	}
	return time.Duration(days) * 24 * time.Hour, nil
}
