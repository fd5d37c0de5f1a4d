// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/meta"
	"github.com/staranto/rcachego/internal/output"
)

// pickDiffEntries selects the two entries to compare. With no ids they are
// the two most recent by cached_at, older first.
func pickDiffEntries(entries []cache.Entry, ids []string) (cache.Entry, cache.Entry, error) {
	if len(ids) == 2 {
		var picked [2]cache.Entry
		for i, id := range ids {
			idx := slices.IndexFunc(entries, func(e cache.Entry) bool { return e.ID == id })
			if idx < 0 {
				return cache.Entry{}, cache.Entry{}, fmt.Errorf("%w: no entry with id %s", cache.ErrInvalidArgument, id)
			}
			picked[i] = entries[idx]
		}
		return picked[0], picked[1], nil
	}

	if len(entries) < 2 {
		return cache.Entry{}, cache.Entry{}, fmt.Errorf("need two entries to diff, found %d", len(entries))
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b cache.Entry) int {
		return tsOrZero(a).Compare(tsOrZero(b))
	})
	return sorted[len(sorted)-2], sorted[len(sorted)-1], nil
}

func tsOrZero(e cache.Entry) time.Time {
	ts, err := e.Timestamp()
	if err != nil {
		return time.Time{}
	}
	return ts
}

// DiffCommandAction compares the results of two entries of a key.
func DiffCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s", cmd.FullName())

	if ShortCircuitTLDR(ctx, cmd, "diff") {
		return nil
	}
	if cmd.Args().Len() != 1 && cmd.Args().Len() != 3 {
		return fmt.Errorf("%w: diff expects %s", cache.ErrInvalidArgument, cmd.ArgsUsage)
	}
	key := cmd.Args().First()
	if err := cache.ValidateKey(key); err != nil {
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
	left, right, err := pickDiffEntries(entries, cmd.Args().Tail())
	if err != nil {
		return err
	}

	fmt.Fprintf(m.Out(), "--- %s %s\n+++ %s %s\n", left.ID, left.CachedAt, right.ID, right.CachedAt)
	changed, err := output.Diff(m.Out(), left.Result, right.Result, cmd.Bool("color") && output.ColorEnabled(m.Out()))
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(m.Out(), "results are identical")
	}
	return nil
}

// DiffCommandBuilder constructs the cli.Command for "diff".
func DiffCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "compare two stored results of a key",
		UsageText: `rcache diff KEY [ID ID]`,
		ArgsUsage: "KEY [ID ID]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolWithInverseFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "enable colored diff output",
				Sources: cli.NewValueSourceChain(yamlChain("diff", "color")...),
				Value:   false,
			},
			tldrFlag(),
		}, NewBackendFlags("diff")...),
		Action: DiffCommandAction,
	}
}
