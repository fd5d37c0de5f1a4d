// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/invoker"
	"github.com/staranto/rcachego/internal/meta"
	"github.com/staranto/rcachego/internal/output"
)

// LookupCommandAction answers {"hit": bool, "row": {...}} for a key without
// computing anything.
func LookupCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s", cmd.FullName())

	if ShortCircuitTLDR(ctx, cmd, "lookup") {
		return nil
	}
	if err := requireArgs(cmd, 1, 1); err != nil {
		return err
	}

	maxAge, err := cache.FreshnessDays(int(cmd.Int("freshness-days")))
	if err != nil {
		return err
	}

	store, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(store)

	inv, err := invoker.New(store)
	if err != nil {
		return err
	}
	res, err := inv.Lookup(ctx, cmd.Args().First(), maxAge)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	return output.WriteJSON(m.Out(), res)
}

// LookupCommandBuilder constructs the cli.Command for "lookup".
func LookupCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "check the cache for a key",
		UsageText: `rcache lookup KEY [--freshness-days N]`,
		ArgsUsage: "KEY",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "freshness-days",
				Aliases: []string{"d"},
				Usage:   "maximum age in days of a hit, 0 for the default of 14",
				Sources: cli.NewValueSourceChain(yamlChain("lookup", "freshness_days")...),
				Value:   0,
			},
			tldrFlag(),
		}, NewBackendFlags("lookup")...),
		Action: LookupCommandAction,
	}
}
