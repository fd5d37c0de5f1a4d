// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/meta"
	"github.com/staranto/rcachego/internal/output"
)

// resolveKey returns the KEY argument, or the fingerprint of --query when no
// argument was given.
func resolveKey(cmd *cli.Command) (string, error) {
	if key := cmd.Args().First(); key != "" {
		return key, cache.ValidateKey(key)
	}
	if cmd.String("query") == "" {
		return "", fmt.Errorf("%w: %s needs KEY or --query", cache.ErrInvalidArgument, cmd.Name)
	}
	q, err := ReadQuery(cmd)
	if err != nil {
		return "", err
	}
	gen, err := Generator(cmd)
	if err != nil {
		return "", err
	}
	return q.FingerprintWith(gen)
}

// HistoryCommandAction lists every entry stored for a key.
func HistoryCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s", cmd.FullName())

	if ShortCircuitTLDR(ctx, cmd, "history") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, m.Out()) {
		return nil
	}
	if err := requireArgs(cmd, 0, 1); err != nil {
		return err
	}

	key, err := resolveKey(cmd)
	if err != nil {
		return err
	}

	al, err := BuildAttrs(cmd, entryAttrs...)
	if err != nil {
		return err
	}

	store, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(store)

	entries, err := store.History(ctx, key)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"key": key, "entries": len(entries)}).Debug("history")

	if entries == nil {
		entries = []cache.Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return output.SliceDiceSpit(raw, al, OutputOptions(cmd), m.Out())
}

// HistoryCommandBuilder constructs the cli.Command for "history".
func HistoryCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Aliases:   []string{"hist"},
		Usage:     "list every entry stored for a key",
		UsageText: `rcache history [KEY | -q FILE] [options]`,
		ArgsUsage: "[KEY]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "query JSON file, - for stdin. Used when KEY is omitted",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			algorithmFlag("history"),
			schemaFlag(),
			tldrFlag(),
		}, NewGlobalFlags("history")...), NewBackendFlags("history")...),
		Action: HistoryCommandAction,
	}
}
