// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package postgres_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/staranto/rcachego/internal/backend/postgres"
	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/cache/cachetest"
	"github.com/staranto/rcachego/internal/mocks/postgresmock"
)

func TestStore_Put(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		cachedAt string
		wantTs   pgtype.Timestamptz
	}{
		{
			name:     "parsed timestamp",
			cachedAt: "2025-06-01T00:00:00Z",
			wantTs:   pgtype.Timestamptz{Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		},
		{
			name:     "unparseable timestamp stored as null",
			cachedAt: "last tuesday",
			wantTs:   pgtype.Timestamptz{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			q := postgresmock.NewMockQuerier(ctrl)
			s := postgres.NewWithQuerier(q)

			e := cachetest.NewEntry("a", tc.cachedAt)
			var got postgres.InsertEntryParams
			q.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, arg postgres.InsertEntryParams) error {
					got = arg
					return nil
				})

			require.NoError(t, s.Put(ctx, e))
			assert.Equal(t, e.ID, got.ID)
			assert.Equal(t, e.LeadID, got.LeadID)
			assert.Equal(t, e.CacheKey, got.CacheKey)
			assert.Equal(t, e.QueryType, got.QueryType)
			assert.Equal(t, e.Topic, got.Topic)
			assert.JSONEq(t, string(e.Result), string(got.Result))
			assert.Equal(t, tc.cachedAt, got.CachedAt)
			assert.Equal(t, tc.wantTs.Valid, got.CachedTs.Valid)
			assert.True(t, tc.wantTs.Time.Equal(got.CachedTs.Time))
		})
	}
}

func TestStore_PutKeepsPayloadBytes(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := postgresmock.NewMockQuerier(ctrl)
	s := postgres.NewWithQuerier(q)

	payload := json.RawMessage(`{"topic": "Phoenix AZ",  "population":1608139, "a":1}`)
	e := cachetest.NewEntry("a", "2025-06-01T00:00:00Z")
	e.Result = payload
	q.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, arg postgres.InsertEntryParams) error {
			assert.Equal(t, []byte(payload), arg.Result)
			return nil
		})
	require.NoError(t, s.Put(context.Background(), e))
}

func TestMigrations_ResultColumnIsJSON(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("migrations", "00002_result_json.sql"))
	require.NoError(t, err)
	up, _, found := strings.Cut(string(raw), "-- +goose Down")
	require.True(t, found)
	assert.Contains(t, up, "ALTER COLUMN result TYPE JSON USING")
}

func TestStore_PutRejectsInvalidEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := postgresmock.NewMockQuerier(ctrl)
	s := postgres.NewWithQuerier(q)

	e := cachetest.NewEntry("a", "2025-06-01T00:00:00Z")
	e.CacheKey = "nope"
	assert.ErrorIs(t, s.Put(context.Background(), e), cache.ErrInvalidArgument)
}

func TestStore_ErrorClassification(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing table",
			err:     &pgconn.PgError{Code: pgerrcode.UndefinedTable},
			wantErr: cache.ErrStoreUnavailable,
			wantMsg: "rcache migrate",
		},
		{
			name:    "connection failure",
			err:     &pgconn.PgError{Code: pgerrcode.ConnectionFailure},
			wantErr: cache.ErrStoreUnavailable,
		},
		{
			name:    "bad json",
			err:     &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation},
			wantErr: cache.ErrInvalidArgument,
		},
		{
			name:    "driver error",
			err:     assert.AnError,
			wantErr: cache.ErrStoreUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			q := postgresmock.NewMockQuerier(ctrl)
			s := postgres.NewWithQuerier(q)

			q.EXPECT().InsertEntry(gomock.Any(), gomock.Any()).Return(tc.err)
			err := s.Put(context.Background(), cachetest.NewEntry("a", "2025-06-01T00:00:00Z"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestStore_LookupLatest(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := postgresmock.NewMockQuerier(ctrl)
		s := postgres.NewWithQuerier(q)

		q.EXPECT().LatestEntry(gomock.Any(), cachetest.Key).Return(postgres.ResearchCache{
			Seq:       7,
			ID:        "b",
			LeadID:    "lead-1",
			CacheKey:  cachetest.Key,
			QueryType: "demographics",
			Topic:     "Phoenix AZ",
			Result:    []byte(`{"run":"b"}`),
			CachedAt:  "2025-06-16T00:00:00Z",
		}, nil)

		e, ok, err := s.LookupLatest(ctx, cachetest.Key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "b", e.ID)
		assert.Equal(t, json.RawMessage(`{"run":"b"}`), e.Result)
		assert.Equal(t, "2025-06-16T00:00:00Z", e.CachedAt)
	})

	t.Run("miss", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := postgresmock.NewMockQuerier(ctrl)
		s := postgres.NewWithQuerier(q)

		q.EXPECT().LatestEntry(gomock.Any(), cachetest.Key).Return(postgres.ResearchCache{}, pgx.ErrNoRows)

		_, ok, err := s.LookupLatest(ctx, cachetest.Key)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := postgresmock.NewMockQuerier(ctrl)
		s := postgres.NewWithQuerier(q)

		q.EXPECT().LatestEntry(gomock.Any(), cachetest.Key).Return(postgres.ResearchCache{}, &pgconn.PgError{Code: pgerrcode.AdminShutdown})

		_, _, err := s.LookupLatest(ctx, cachetest.Key)
		assert.ErrorIs(t, err, cache.ErrStoreUnavailable)
	})

	t.Run("invalid key never queries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		q := postgresmock.NewMockQuerier(ctrl)
		s := postgres.NewWithQuerier(q)

		_, _, err := s.LookupLatest(ctx, "DROP TABLE")
		assert.ErrorIs(t, err, cache.ErrInvalidArgument)
	})
}

func TestStore_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := postgresmock.NewMockQuerier(ctrl)
	s := postgres.NewWithQuerier(q)

	q.EXPECT().ListEntries(gomock.Any(), cachetest.Key).Return([]postgres.ResearchCache{
		{Seq: 1, ID: "a", CacheKey: cachetest.Key, Result: []byte(`{}`), CachedAt: "2025-06-01T00:00:00Z"},
		{Seq: 2, ID: "b", CacheKey: cachetest.Key, Result: []byte(`{}`), CachedAt: "2025-06-16T00:00:00Z"},
	}, nil)

	h, err := s.History(context.Background(), cachetest.Key)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "a", h[0].ID)
	assert.Equal(t, "b", h[1].ID)
	assert.NoError(t, s.Close())
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := postgres.Open(context.Background(), "")
	assert.ErrorIs(t, err, cache.ErrInvalidArgument)
}

func TestStore_MigrateNeedsPool(t *testing.T) {
	s := postgres.NewWithQuerier(nil)
	assert.Error(t, s.Migrate(context.Background()))
}
