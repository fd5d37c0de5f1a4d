// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/meta"
	"github.com/staranto/rcachego/internal/output"
)

// GetCommandAction answers a query from the cache, running --exec on a miss
// and storing its result.
func GetCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s", cmd.FullName())

	if ShortCircuitTLDR(ctx, cmd, "get") {
		return nil
	}

	q, err := ReadQuery(cmd)
	if err != nil {
		return err
	}
	callOpts, err := CallOptions(cmd)
	if err != nil {
		return err
	}

	store, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(store)

	inv, err := NewInvoker(cmd, store)
	if err != nil {
		return err
	}
	key, err := inv.Key(q)
	if err != nil {
		return err
	}

	command := cmd.String("exec")
	out, err := inv.GetOrCompute(ctx, q, func(ctx context.Context) (json.RawMessage, error) {
		return ShellCompute(ctx, command, q, key, m.Err())
	}, callOpts...)
	if err != nil {
		return err
	}
	if out.PutErr != nil {
		fmt.Fprintf(m.Err(), "warning: result not cached: %v\n", out.PutErr)
	}
	log.WithFields(log.Fields{"key": out.Key, "hit": out.Hit}).Info("answered")

	if cmd.Bool("envelope") {
		return output.WriteJSON(m.Out(), out)
	}
	_, err = fmt.Fprintln(m.Out(), string(out.Payload))
	return err
}

// GetCommandBuilder constructs the cli.Command for "get".
func GetCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "answer a query from the cache, computing on a miss",
		UsageText: `rcache get -q FILE --exec CMD [--max-age D] [--envelope]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(append([]cli.Flag{
			queryFlag(),
			leadFlag(),
			&cli.BoolFlag{
				Name:    "envelope",
				Aliases: []string{"e"},
				Usage:   "print cache_key, hit and entry along with the result",
			},
			tldrFlag(),
		}, invokerFlags("get")...), NewBackendFlags("get")...),
		Action: GetCommandAction,
	}
}
