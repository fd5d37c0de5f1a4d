// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/cacheutil"
	"github.com/staranto/rcachego/internal/config"
	"github.com/staranto/rcachego/internal/meta"
)

// InitApp builds the rcache command tree for args.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	return InitAppWithIO(ctx, args, meta.IO{})
}

// InitAppWithIO is InitApp with the command streams replaced by streams.
func InitAppWithIO(ctx context.Context, args []string, streams meta.IO) (*cli.Command, error) {
	// The arg[1] immediately following the binary (arg[0]) is the rcache
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, _ := config.Load(ns)
	dir, _ := cacheutil.Dir()
	meta := meta.Meta{
		Args:     args,
		Config:   cfg,
		Context:  ctx,
		CacheDir: dir,
		IO:       streams,
	}

	app := &cli.Command{
		Name:      "rcache",
		Usage:     "content-addressed research cache",
		Writer:    meta.Out(),
		ErrWriter: meta.Err(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "rcache version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		DiffCommandBuilder(app, meta),
		FingerprintCommandBuilder(app, meta),
		GetCommandBuilder(app, meta),
		HistoryCommandBuilder(app, meta),
		LookupCommandBuilder(app, meta),
		MigrateCommandBuilder(app, meta),
		PlanCommandBuilder(app, meta),
		PurgeCommandBuilder(app, meta),
		SaveCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
