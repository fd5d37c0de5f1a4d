// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// rcache is a content-addressed cache for research results. Queries are
// fingerprinted into cache keys, results are appended to a pluggable store,
// and answers are served from the cache while they are fresh.
package main
