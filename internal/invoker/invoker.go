// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/fingerprint"
	"github.com/staranto/rcachego/internal/research"
)

// ComputeFunc performs the research for a query and returns its JSON
// payload.
type ComputeFunc func(ctx context.Context) (json.RawMessage, error)

// Invoker answers research queries from a Store, computing and appending a
// new entry on a miss.
type Invoker struct {
	store  cache.Store
	gen    *fingerprint.Generator
	maxAge time.Duration
	now    func() time.Time
	newID  func() string
	group  *singleflight.Group

	stats counters
}

type Option func(*Invoker)

// WithMaxAge sets the default freshness window.
func WithMaxAge(d time.Duration) Option {
	return func(inv *Invoker) { inv.maxAge = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(inv *Invoker) { inv.now = now }
}

// WithIDs replaces the entry id generator.
func WithIDs(newID func() string) Option {
	return func(inv *Invoker) { inv.newID = newID }
}

// WithGenerator selects the fingerprint generator.
func WithGenerator(g *fingerprint.Generator) Option {
	return func(inv *Invoker) { inv.gen = g }
}

// WithSingleFlight coalesces concurrent misses for the same key into one
// compute. Without it two concurrent misses may both compute and both
// append.
func WithSingleFlight() Option {
	return func(inv *Invoker) { inv.group = &singleflight.Group{} }
}

// New returns an Invoker over store. The store stays owned by the caller.
func New(store cache.Store, opts ...Option) (*Invoker, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", cache.ErrInvalidArgument)
	}
	inv := &Invoker{
		store:  store,
		gen:    fingerprint.New(),
		maxAge: cache.DefaultMaxAge,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(inv)
	}
	if err := cache.ValidateMaxAge(inv.maxAge); err != nil {
		return nil, err
	}
	return inv, nil
}

// Outcome describes how a query was answered.
type Outcome struct {
	Key     string          `json:"cache_key"`
	Hit     bool            `json:"hit"`
	Entry   cache.Entry     `json:"entry"`
	Payload json.RawMessage `json:"result"`
	// PutErr is set when a fresh result could not be stored. The payload is
	// still valid.
	PutErr error `json:"-"`
}

type callConfig struct {
	maxAge  time.Duration
	timeout time.Duration
}

type CallOption func(*callConfig)

// MaxAge overrides the freshness window for one call.
func MaxAge(d time.Duration) CallOption {
	return func(c *callConfig) { c.maxAge = d }
}

// ComputeTimeout bounds the compute of one call.
func ComputeTimeout(d time.Duration) CallOption {
	return func(c *callConfig) { c.timeout = d }
}

// Key returns the cache key of q.
func (inv *Invoker) Key(q research.Query) (string, error) {
	return q.FingerprintWith(inv.gen)
}

// GetOrCompute returns the stored payload for q when a fresh entry exists.
// Otherwise it runs compute once, appends the result and returns it. A
// compute error is returned unchanged and nothing is stored. Store failures
// never fail the call: a failed lookup is a miss and a failed put is
// reported in Outcome.PutErr.
func (inv *Invoker) GetOrCompute(ctx context.Context, q research.Query, compute ComputeFunc, opts ...CallOption) (Outcome, error) {
	cfg := callConfig{maxAge: inv.maxAge}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cache.ValidateMaxAge(cfg.maxAge); err != nil {
		return Outcome{}, err
	}
	if compute == nil {
		return Outcome{}, fmt.Errorf("%w: compute is required", cache.ErrInvalidArgument)
	}

	key, err := inv.Key(q)
	if err != nil {
		return Outcome{}, err
	}

	if e, ok := inv.fresh(ctx, key, cfg.maxAge); ok {
		return inv.hit(key, e), nil
	}

	if inv.group == nil {
		return inv.computeAndStore(ctx, q, key, compute, cfg)
	}

	// The shared compute runs detached from whichever caller started it so a
	// cancelled leader does not fail the callers waiting on the same key.
	sctx := context.WithoutCancel(ctx)
	ch := inv.group.DoChan(key, func() (any, error) {
		// Another caller may have stored the result while this one waited.
		if e, ok := inv.fresh(sctx, key, cfg.maxAge); ok {
			return inv.hit(key, e), nil
		}
		return inv.computeAndStore(sctx, q, key, compute, cfg)
	})
	select {
	case <-ctx.Done():
		return Outcome{Key: key}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			log.WithField("key", key).Debug("shared in-flight result")
		}
		if res.Err != nil {
			return Outcome{Key: key}, res.Err
		}
		return res.Val.(Outcome), nil
	}
}

// fresh looks up key and reports whether the latest entry is usable. Store
// errors are logged and count as a miss.
func (inv *Invoker) fresh(ctx context.Context, key string, maxAge time.Duration) (cache.Entry, bool) {
	e, ok, err := inv.store.LookupLatest(ctx, key)
	if err != nil {
		inv.stats.lookupErrors.Add(1)
		log.WithError(err).WithField("key", key).Warn("cache lookup failed, recomputing")
		return cache.Entry{}, false
	}
	if !ok {
		return cache.Entry{}, false
	}
	isFresh, err := cache.IsFresh(e, maxAge, inv.now())
	if err != nil || !isFresh {
		log.WithFields(log.Fields{"key": key, "cached_at": e.CachedAt}).Debug("cached entry is stale")
		return cache.Entry{}, false
	}
	return e, true
}

func (inv *Invoker) hit(key string, e cache.Entry) Outcome {
	inv.stats.hits.Add(1)
	log.WithFields(log.Fields{"key": key, "cached_at": e.CachedAt}).Debug("cache hit")
	return Outcome{Key: key, Hit: true, Entry: e, Payload: e.Result}
}

func (inv *Invoker) computeAndStore(ctx context.Context, q research.Query, key string, compute ComputeFunc, cfg callConfig) (Outcome, error) {
	inv.stats.misses.Add(1)

	cctx := ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	inv.stats.computes.Add(1)
	payload, err := compute(cctx)
	if err != nil {
		return Outcome{Key: key}, err
	}
	if !json.Valid(payload) {
		return Outcome{Key: key}, fmt.Errorf("%w: compute returned invalid JSON", cache.ErrInvalidArgument)
	}

	e := inv.newEntry(q, key, payload)
	out := Outcome{Key: key, Entry: e, Payload: payload}
	if err := inv.store.Put(ctx, e); err != nil {
		inv.stats.putErrors.Add(1)
		log.WithError(err).WithField("key", key).Error("failed to store research result")
		out.PutErr = err
	}
	return out, nil
}

func (inv *Invoker) newEntry(q research.Query, key string, payload json.RawMessage) cache.Entry {
	return cache.Entry{
		ID:        inv.newID(),
		LeadID:    q.LeadID,
		CacheKey:  key,
		QueryType: q.Type,
		Topic:     q.Topic,
		Result:    payload,
		CachedAt:  cache.FormatTimestamp(inv.now()),
	}
}

// LookupResult is the answer to a lookup: Row is the latest entry for the
// key whether or not it is fresh, and nil when the key has never been
// stored.
type LookupResult struct {
	Hit bool         `json:"hit"`
	Row *cache.Entry `json:"row"`
}

// MarshalJSON renders a missing row as an empty object.
func (r LookupResult) MarshalJSON() ([]byte, error) {
	row := json.RawMessage(`{}`)
	if r.Row != nil {
		b, err := json.Marshal(r.Row)
		if err != nil {
			return nil, err
		}
		row = b
	}
	return json.Marshal(struct {
		Hit bool            `json:"hit"`
		Row json.RawMessage `json:"row"`
	}{r.Hit, row})
}

// Lookup checks key without computing. A store failure is logged and
// answered as a miss with no row.
func (inv *Invoker) Lookup(ctx context.Context, key string, maxAge time.Duration) (LookupResult, error) {
	if err := cache.ValidateKey(key); err != nil {
		return LookupResult{}, err
	}
	if err := cache.ValidateMaxAge(maxAge); err != nil {
		return LookupResult{}, err
	}

	e, ok, err := inv.store.LookupLatest(ctx, key)
	if err != nil {
		inv.stats.lookupErrors.Add(1)
		log.WithError(err).WithField("key", key).Warn("cache lookup failed")
		return LookupResult{}, nil
	}
	if !ok {
		return LookupResult{}, nil
	}

	isFresh, _ := cache.IsFresh(e, maxAge, inv.now())
	if isFresh {
		inv.stats.hits.Add(1)
	}
	return LookupResult{Hit: isFresh, Row: &e}, nil
}

// Save stores payload as a new entry for q. Unlike GetOrCompute a store
// failure is returned.
func (inv *Invoker) Save(ctx context.Context, q research.Query, payload json.RawMessage) (cache.Entry, error) {
	if !json.Valid(payload) {
		return cache.Entry{}, fmt.Errorf("%w: result is not valid JSON", cache.ErrInvalidArgument)
	}
	key, err := inv.Key(q)
	if err != nil {
		return cache.Entry{}, err
	}
	e := inv.newEntry(q, key, payload)
	if err := inv.store.Put(ctx, e); err != nil {
		return cache.Entry{}, fmt.Errorf("failed to save %s: %w", key, err)
	}
	return e, nil
}
