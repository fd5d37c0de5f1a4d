// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/attrs"
	"github.com/staranto/rcachego/internal/backend"
	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/config"
	"github.com/staranto/rcachego/internal/fingerprint"
	"github.com/staranto/rcachego/internal/invoker"
	"github.com/staranto/rcachego/internal/meta"
	"github.com/staranto/rcachego/internal/output"
	"github.com/staranto/rcachego/internal/research"
)

// entryAttrs are the default columns for entry listings.
var entryAttrs = []string{"id", "query_type", "topic", "cached_at:age:h"}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr rcache-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if !cmd.Bool("tldr") {
		return false
	}
	if _, err := exec.LookPath("tldr"); err == nil {
		c := exec.CommandContext(ctx, "tldr", "rcache-"+subcmd)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		_ = c.Run()
	}
	return true
}

// DumpSchemaIfRequested prints the entry attributes when --schema is set and
// reports whether it did.
func DumpSchemaIfRequested(cmd *cli.Command, w io.Writer) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(w, reflect.TypeOf(cache.Entry{}))
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	var al attrs.AttrList
	for _, d := range defaults {
		if err := al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	al.SetGlobalTransformSpec()
	return al, nil
}

// OutputOptions collects the rendering flags of cmd.
func OutputOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Color:  cmd.Bool("color"),
		Titles: cmd.Bool("titles"),
		Local:  cmd.Bool("local"),
	}
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// BackendOptions collects the backend flags of cmd.
func BackendOptions(cmd *cli.Command) backend.Options {
	return backend.Options{
		Type:        cmd.String("backend"),
		Dir:         cmd.String("dir"),
		Bucket:      cmd.String("bucket"),
		Prefix:      cmd.String("prefix"),
		Region:      cmd.String("region"),
		Profile:     cmd.String("profile"),
		Endpoint:    cmd.String("endpoint"),
		PathStyle:   cmd.Bool("path-style"),
		MaxAttempts: int(cmd.Int("max-attempts")),
		DSN:         cmd.String("dsn"),
	}
}

// OpenStore opens the store selected by the backend flags. The caller must
// Close it.
func OpenStore(ctx context.Context, cmd *cli.Command) (cache.Store, error) {
	opts := BackendOptions(cmd)
	store, err := backend.New(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", opts.Type, err)
	}
	return store, nil
}

// Generator returns the fingerprint generator selected by --algorithm.
func Generator(cmd *cli.Command) (*fingerprint.Generator, error) {
	alg, err := fingerprint.ParseAlgorithm(cmd.String("algorithm"))
	if err != nil {
		return nil, err
	}
	return fingerprint.New(fingerprint.WithAlgorithm(alg)), nil
}

// NewInvoker wires store to an Invoker configured from cmd.
func NewInvoker(cmd *cli.Command, store cache.Store) (*invoker.Invoker, error) {
	gen, err := Generator(cmd)
	if err != nil {
		return nil, err
	}
	maxAge, err := config.ParseDuration(cmd.String("max-age"))
	if err != nil {
		return nil, fmt.Errorf("%w: --max-age: %v", cache.ErrInvalidArgument, err)
	}

	opts := []invoker.Option{
		invoker.WithGenerator(gen),
		invoker.WithMaxAge(maxAge),
	}
	if cmd.Bool("single-flight") {
		opts = append(opts, invoker.WithSingleFlight())
	}
	return invoker.New(store, opts...)
}

// CallOptions returns the per-call options of cmd.
func CallOptions(cmd *cli.Command) ([]invoker.CallOption, error) {
	timeout, err := config.ParseDuration(cmd.String("timeout"))
	if err != nil {
		return nil, fmt.Errorf("%w: --timeout: %v", cache.ErrInvalidArgument, err)
	}
	var opts []invoker.CallOption
	if timeout > 0 {
		opts = append(opts, invoker.ComputeTimeout(timeout))
	}
	return opts, nil
}

func isStdin(path string) bool {
	return path == "" || path == "-"
}

// ReadInput reads path, or the command's stdin when path is "-" or empty.
func ReadInput(cmd *cli.Command, path string) ([]byte, error) {
	if isStdin(path) {
		b, err := io.ReadAll(GetMeta(cmd).In())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return b, nil
}

// ReadQuery decodes the --query input.
func ReadQuery(cmd *cli.Command) (research.Query, error) {
	b, err := ReadInput(cmd, cmd.String("query"))
	if err != nil {
		return research.Query{}, err
	}
	q, err := research.QueryFromJSON(b)
	if err != nil {
		return research.Query{}, err
	}
	if lead := cmd.String("lead"); lead != "" {
		q.LeadID = lead
	}
	log.WithFields(log.Fields{"type": q.Type, "topic": q.Topic}).Debug("read query")
	return q, nil
}

// closeStore closes store and logs a failure.
func closeStore(store cache.Store) {
	if err := store.Close(); err != nil {
		log.WithError(err).Warn("failed to close cache store")
	}
}

// requireArgs fails unless cmd has between lo and hi positional args.
func requireArgs(cmd *cli.Command, lo, hi int) error {
	n := cmd.Args().Len()
	if n < lo || n > hi {
		return fmt.Errorf("%w: %s expects %s", cache.ErrInvalidArgument, cmd.Name, cmd.ArgsUsage)
	}
	return nil
}
