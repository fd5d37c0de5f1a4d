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

// SaveCommandAction stores a computed result for a query and prints the new
// entry.
func SaveCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s", cmd.FullName())

	if ShortCircuitTLDR(ctx, cmd, "save") {
		return nil
	}

	if isStdin(cmd.String("query")) && isStdin(cmd.String("result")) {
		return fmt.Errorf("%w: --query and --result cannot both read stdin", cache.ErrInvalidArgument)
	}

	q, err := ReadQuery(cmd)
	if err != nil {
		return err
	}
	payload, err := ReadInput(cmd, cmd.String("result"))
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
	e, err := inv.Save(ctx, q, json.RawMessage(payload))
	if err != nil {
		return err
	}
	return output.WriteJSON(m.Out(), e)
}

// SaveCommandBuilder constructs the cli.Command for "save".
func SaveCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "store a result for a query",
		UsageText: `rcache save -q FILE -r FILE [--lead ID]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			queryFlag(),
			&cli.StringFlag{
				Name:     "result",
				Aliases:  []string{"r"},
				Usage:    "result JSON file, - for stdin",
				Required: true,
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			leadFlag(),
			algorithmFlag("save"),
			maxAgeFlag("save"),
			tldrFlag(),
		}, NewBackendFlags("save")...),
		Action: SaveCommandAction,
	}
}

func leadFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "lead",
		Usage:   "lead id recorded with new entries",
		Sources: cli.NewValueSourceChain(cli.EnvVar("RCACHE_LEAD_ID")),
	}
}
