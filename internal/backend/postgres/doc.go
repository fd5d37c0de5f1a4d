// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package postgres is a cache.Store backed by a PostgreSQL research_cache
// table. Queries are generated by sqlc from queries/ and the schema is kept in
// migrations/, applied with goose.
package postgres
