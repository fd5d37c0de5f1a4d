// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package invoker

import "sync/atomic"

type counters struct {
	hits         atomic.Int64
	misses       atomic.Int64
	computes     atomic.Int64
	lookupErrors atomic.Int64
	putErrors    atomic.Int64
}

// Stats is a snapshot of what an Invoker has done.
type Stats struct {
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	Computes     int64 `json:"computes"`
	LookupErrors int64 `json:"lookup_errors"`
	PutErrors    int64 `json:"put_errors"`
}

func (inv *Invoker) Stats() Stats {
	return Stats{
		Hits:         inv.stats.hits.Load(),
		Misses:       inv.stats.misses.Load(),
		Computes:     inv.stats.computes.Load(),
		LookupErrors: inv.stats.lookupErrors.Load(),
		PutErrors:    inv.stats.putErrors.Load(),
	}
}
