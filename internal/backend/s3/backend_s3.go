// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package s3 is a cache.Store that writes one object per entry to an S3 (or
// S3-compatible) bucket. Objects live at <prefix>/<cache_key>/<ulid>.json so
// a lexical listing of a key is its insertion order.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	awsx "github.com/staranto/rcachego/internal/aws"
	"github.com/staranto/rcachego/internal/cache"
)

// fetchLimit bounds concurrent GetObject calls while reading a key.
const fetchLimit = 8

// ObjectAPI is the subset of the S3 client the store needs.
type ObjectAPI interface {
	s3v2.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// Config describes where entries are kept.
type Config struct {
	Bucket      string
	Prefix      string
	Region      string
	Profile     string
	Endpoint    string
	PathStyle   bool
	MaxAttempts int
}

type Store struct {
	api    ObjectAPI
	bucket string
	prefix string
}

// New builds an S3 client from the shell's AWS setup plus cfg overrides.
func New(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := awsx.LoadAWSConfig(ctx,
		awsx.WithProfile(cfg.Profile),
		awsx.WithRegion(cfg.Region),
		awsx.WithMaxAttempts(cfg.MaxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %v", cache.ErrStoreUnavailable, err)
	}

	client := awsx.NewS3(awsCfg,
		awsx.WithS3Endpoint(cfg.Endpoint),
		awsx.WithS3PathStyle(cfg.PathStyle),
	)
	return NewWithClient(client, cfg.Bucket, cfg.Prefix)
}

// NewWithClient wraps an existing client.
func NewWithClient(api ObjectAPI, bucket, prefix string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", cache.ErrInvalidArgument)
	}
	return &Store{
		api:    api,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (s *Store) keyPrefix(key string) string {
	return path.Join(s.prefix, key) + "/"
}

func (s *Store) String() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}

// Put writes e as a new object. Object names are ULIDs so no two entries
// collide and listing order follows write order.
func (s *Store) Put(ctx context.Context, e cache.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	objectKey := s.keyPrefix(e.CacheKey) + ulid.Make().String() + ".json"
	_, err = s.api.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(s.bucket),
		Key:         awsv2.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: awsv2.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to put s3://%s/%s: %v", cache.ErrStoreUnavailable, s.bucket, objectKey, err)
	}

	log.WithFields(log.Fields{"bucket": s.bucket, "object": objectKey}).Debug("stored cache entry")
	return nil
}

func (s *Store) LookupLatest(ctx context.Context, key string) (cache.Entry, bool, error) {
	h, err := s.History(ctx, key)
	if err != nil {
		return cache.Entry{}, false, err
	}
	e, ok := cache.Latest(h)
	return e, ok, nil
}

// History lists every object under the key prefix and fetches them.
func (s *Store) History(ctx context.Context, key string) ([]cache.Entry, error) {
	if err := cache.ValidateKey(key); err != nil {
		return nil, err
	}

	objectKeys, err := s.list(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(objectKeys) == 0 {
		return nil, nil
	}

	entries := make([]*cache.Entry, len(objectKeys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, k := range objectKeys {
		g.Go(func() error {
			e, err := s.fetch(gctx, k)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]cache.Entry, 0, len(entries))
	for _, e := range entries {
		if e != nil && e.CacheKey == key {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *Store) list(ctx context.Context, key string) ([]string, error) {
	var keys []string
	p := s3v2.NewListObjectsV2Paginator(s.api, &s3v2.ListObjectsV2Input{
		Bucket: awsv2.String(s.bucket),
		Prefix: awsv2.String(s.keyPrefix(key)),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list s3://%s/%s: %v", cache.ErrStoreUnavailable, s.bucket, s.keyPrefix(key), err)
		}
		for _, obj := range page.Contents {
			if k := awsv2.ToString(obj.Key); strings.HasSuffix(k, ".json") {
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// fetch returns nil without error when the object vanished or does not
// decode.
func (s *Store) fetch(ctx context.Context, objectKey string) (*cache.Entry, error) {
	out, err := s.api.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(objectKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Debugf("object %s vanished", objectKey)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to get s3://%s/%s: %v", cache.ErrStoreUnavailable, s.bucket, objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read s3://%s/%s: %v", cache.ErrStoreUnavailable, s.bucket, objectKey, err)
	}

	var e cache.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		log.WithError(err).Warnf("skipping corrupt object %s", objectKey)
		return nil, nil
	}
	return &e, nil
}

func (s *Store) Close() error { return nil }
