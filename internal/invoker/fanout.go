// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package invoker

import (
	"context"
	"encoding/json"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/rcachego/internal/research"
)

// QueryComputeFunc computes the payload of one query of a fanout.
type QueryComputeFunc func(ctx context.Context, q research.Query) (json.RawMessage, error)

// Result pairs a fanout query with its outcome. Err is the query's own
// failure and does not affect the other queries.
type Result struct {
	Query   research.Query
	Outcome Outcome
	Err     error
}

// Fanout answers every query with GetOrCompute, at most limit at a time
// (unbounded when limit < 1). Results keep the order of queries.
func (inv *Invoker) Fanout(ctx context.Context, queries []research.Query, compute QueryComputeFunc, limit int, opts ...CallOption) []Result {
	results := make([]Result, len(queries))

	// The group context is not used: one failed query must not cancel the
	// rest.
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, q := range queries {
		g.Go(func() error {
			out, err := inv.GetOrCompute(ctx, q, func(ctx context.Context) (json.RawMessage, error) {
				return compute(ctx, q)
			}, opts...)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{"query": q.ID, "topic": q.Topic}).Warn("research query failed")
			}
			results[i] = Result{Query: q, Outcome: out, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
