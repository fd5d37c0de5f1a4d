// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/go-playground/validator/v10"

	"github.com/staranto/rcachego/internal/backend/file"
	"github.com/staranto/rcachego/internal/backend/memory"
	"github.com/staranto/rcachego/internal/backend/postgres"
	"github.com/staranto/rcachego/internal/backend/s3"
	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/cacheutil"
)

const (
	TypeMemory   = "memory"
	TypeFile     = "file"
	TypeS3       = "s3"
	TypePostgres = "postgres"
)

// Types lists the selectable backends, default first.
var Types = []string{TypeFile, TypeMemory, TypeS3, TypePostgres}

// Options selects and configures a backend.
type Options struct {
	Type string `validate:"required,oneof=memory file s3 postgres"`

	// Dir is the file backend base directory. Empty resolves through
	// cacheutil.
	Dir string

	Bucket      string `validate:"required_if=Type s3"`
	Prefix      string
	Region      string
	Profile     string
	Endpoint    string `validate:"omitempty,url"`
	PathStyle   bool
	MaxAttempts int `validate:"gte=0"`

	DSN string `validate:"required_if=Type postgres"`
}

var validate = validator.New()

// Validate checks o before a backend is opened.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: backend options: %v", cache.ErrInvalidArgument, err)
	}
	return nil
}

// New opens the backend named by opts.Type. The caller owns the returned
// Store and must Close it.
func New(ctx context.Context, opts Options) (cache.Store, error) {
	if opts.Type == "" {
		opts.Type = TypeFile
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	log.WithField("backend", opts.Type).Debug("opening cache store")

	switch opts.Type {
	case TypeMemory:
		return memory.New(), nil
	case TypeFile:
		dir := opts.Dir
		if dir == "" {
			base, ok, err := cacheutil.EnsureBaseDir()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", cache.ErrStoreUnavailable, err)
			}
			if !ok {
				// RCACHE_CACHE=0 or no resolvable cache dir.
				log.Warn("file cache disabled, using a process-local store")
				return memory.New(), nil
			}
			dir = base
		}
		return file.New(dir)
	case TypeS3:
		return s3.New(ctx, s3.Config{
			Bucket:      opts.Bucket,
			Prefix:      opts.Prefix,
			Region:      opts.Region,
			Profile:     opts.Profile,
			Endpoint:    opts.Endpoint,
			PathStyle:   opts.PathStyle,
			MaxAttempts: opts.MaxAttempts,
		})
	case TypePostgres:
		return postgres.Open(ctx, opts.DSN)
	}

	// This is a fail-safe.  Validate rejects unknown types.
	return nil, fmt.Errorf("%w: unknown backend %q", cache.ErrInvalidArgument, opts.Type)
}
