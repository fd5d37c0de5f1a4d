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

// Migrator is a store with a schema to bring up to date.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// MigrateCommandAction applies pending schema migrations.
func MigrateCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s", cmd.FullName())

	if ShortCircuitTLDR(ctx, cmd, "migrate") {
		return nil
	}

	store, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore(store)

	mg, ok := store.(Migrator)
	if !ok {
		return fmt.Errorf("%w: the %s backend has no schema", cache.ErrInvalidArgument, cmd.String("backend"))
	}
	if err := mg.Migrate(ctx); err != nil {
		return err
	}
	_, err = fmt.Fprintln(m.Out(), "schema is up to date")
	return err
}

// MigrateCommandBuilder constructs the cli.Command for "migrate".
func MigrateCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "create or upgrade the postgres schema",
		UsageText: `rcache migrate --backend postgres --dsn DSN`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			tldrFlag(),
		}, NewBackendFlags("migrate")...),
		Action: MigrateCommandAction,
	}
}
