// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/cache"
	"github.com/staranto/rcachego/internal/meta"
)

// Purger is a store that can drop key logs nobody has written to lately.
type Purger interface {
	Purge(hours int) (int, error)
}

// PurgeCommandAction removes stale key logs from a purgeable backend.
func PurgeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s", cmd.FullName())

	if ShortCircuitTLDR(ctx, cmd, "purge") {
		return nil
	}

	store, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(store)

	p, ok := store.(Purger)
	if !ok {
		return fmt.Errorf("%w: the %s backend cannot be purged", cache.ErrInvalidArgument, cmd.String("backend"))
	}
	n, err := p.Purge(int(cmd.Int("hours")))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(m.Out(), "removed %d key logs\n", n)
	return err
}

// PurgeCommandBuilder constructs the cli.Command for "purge".
func PurgeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "purge",
		Usage:     "remove key logs not written for a while",
		UsageText: `rcache purge [--hours N]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "hours",
				Usage:   "age in hours past which a key log is removed, 0 to keep everything",
				Sources: cli.NewValueSourceChain(yamlChain("", "cache.clean")...),
				Value:   336,
			},
			tldrFlag(),
		}, NewBackendFlags("purge")...),
		Action: PurgeCommandAction,
	}
}
