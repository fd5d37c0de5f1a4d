// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/staranto/rcachego/internal/cache"
)

//go:generate mockgen -destination=../../mocks/postgresmock/querier.go -package=postgresmock github.com/staranto/rcachego/internal/backend/postgres Querier

//go:embed migrations/*.sql
var migrations embed.FS

// Store keeps entries in the research_cache table.
type Store struct {
	pool *pgxpool.Pool
	q    Querier
}

// Open connects to dsn. The schema is not touched; run Migrate first.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", cache.ErrInvalidArgument)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open pool: %v", cache.ErrStoreUnavailable, err)
	}
	return &Store{pool: pool, q: New(pool)}, nil
}

// NewWithQuerier wraps q without a pool.
func NewWithQuerier(q Querier) *Store {
	return &Store{q: q}
}

// Migrate brings the schema up to date with the embedded goose migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("migrate needs a connection pool")
	}
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", classify(err))
	}
	return nil
}

func (s *Store) Put(ctx context.Context, e cache.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	var ts pgtype.Timestamptz
	if t, err := e.Timestamp(); err == nil {
		ts = pgtype.Timestamptz{Time: t, Valid: true}
	}

	err := s.q.InsertEntry(ctx, InsertEntryParams{
		ID:        e.ID,
		LeadID:    e.LeadID,
		CacheKey:  e.CacheKey,
		QueryType: e.QueryType,
		Topic:     e.Topic,
		Result:    e.Result,
		CachedAt:  e.CachedAt,
		CachedTs:  ts,
	})
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", classify(err))
	}
	log.WithFields(log.Fields{"key": e.CacheKey, "id": e.ID}).Debug("inserted cache entry")
	return nil
}

// LookupLatest lets the index order rows: parsed timestamp descending with
// unparseable ones last, then insertion sequence.
func (s *Store) LookupLatest(ctx context.Context, key string) (cache.Entry, bool, error) {
	if err := cache.ValidateKey(key); err != nil {
		return cache.Entry{}, false, err
	}
	row, err := s.q.LatestEntry(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cache.Entry{}, false, nil
		}
		return cache.Entry{}, false, fmt.Errorf("failed to look up %s: %w", key, classify(err))
	}
	return toEntry(row), true, nil
}

func (s *Store) History(ctx context.Context, key string) ([]cache.Entry, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, err
	}
	rows, err := s.q.ListEntries(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", key, classify(err))
	}
	out := make([]cache.Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, toEntry(r))
	}
	return out, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func toEntry(r ResearchCache) cache.Entry {
	return cache.Entry{
		ID:        r.ID,
		LeadID:    r.LeadID,
		CacheKey:  r.CacheKey,
		QueryType: r.QueryType,
		Topic:     r.Topic,
		Result:    r.Result,
		CachedAt:  r.CachedAt,
	}
}

// classify maps driver errors onto the cache error taxonomy. Bad input
// reported by the server is an invalid argument; everything else means the
// store could not serve the request.
func classify(err error) error {
	var e *pgconn.PgError
	if errors.As(err, &e) {
		switch {
		case e.Code == pgerrcode.UndefinedTable:
			return fmt.Errorf("%w: research_cache table missing, run `rcache migrate`: %v", cache.ErrStoreUnavailable, err)
		case pgerrcode.IsDataException(e.Code):
			return fmt.Errorf("%w: %v", cache.ErrInvalidArgument, err)
		case pgerrcode.IsConnectionException(e.Code):
			log.Debugf("postgres connection exception %s", e.Code)
		}
	}
	return fmt.Errorf("%w: %v", cache.ErrStoreUnavailable, err)
}
