// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cache defines the research cache entry, the append-only Store
// contract implemented by the backends, and the freshness policy used to
// decide whether a stored result can be reused.
package cache
