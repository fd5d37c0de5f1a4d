// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package fingerprint derives stable cache keys from research queries. A
// query is canonicalized (map keys sorted recursively, identifiers rendered
// as strings, compact JSON) and hashed into a lowercase hex digest.
package fingerprint
