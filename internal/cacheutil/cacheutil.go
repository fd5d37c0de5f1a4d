// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
)

// LogExt is the extension of the per-key append logs written by the file
// backend.
const LogExt = ".jsonl"

// Dir resolves the base cache directory.
// Precedence:
//  1. RCACHE_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/rcache
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("RCACHE_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "rcache"), true
	}
	return "", false
}

// Enabled returns true unless RCACHE_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("RCACHE_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// LogPath returns the path of the append log for key beneath base and
// subdirs. Keys that are already lowercase hex digests are used verbatim so
// the file name matches the cache key; anything else is hashed so it can
// never escape base.
func LogPath(base string, subdirs []string, key string) string {
	name := key
	if !IsHexKey(key) {
		name = EncodeKey(key)
	}
	return filepath.Join(append([]string{base}, append(subdirs, name+LogExt)...)...)
}

// IsHexKey reports whether k is a non-empty lowercase hex string.
func IsHexKey(k string) bool {
	if k == "" {
		return false
	}
	return strings.IndexFunc(k, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f')
	}) < 0
}

// Purge removes log files under base that have not been written for the
// provided number of hours. If hours <= 0 it is a no-op. It returns the
// number of files removed.
func Purge(base string, hours int) (int, error) {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return 0, nil
	}
	if base == "" {
		return 0, nil
	}
	maxAge := time.Duration(hours) * time.Hour

	removed := 0
	if err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if info.IsDir() || filepath.Ext(path) != LogExt {
			return nil
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed cache file %s", path)
				removed++
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	}); err != nil {
		return removed, fmt.Errorf("failed to purge cache: %w", err)
	}
	return removed, nil
}

// EncodeKey hashes k with MD5 and returns the hex string.
func EncodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}
