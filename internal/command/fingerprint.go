// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/fingerprint"
	"github.com/staranto/rcachego/internal/meta"
	"github.com/staranto/rcachego/internal/output"
)

// FingerprintCommandAction prints the cache key of the --query document.
func FingerprintCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s", cmd.FullName())

	if ShortCircuitTLDR(ctx, cmd, "fingerprint") {
		return nil
	}

	q, err := ReadQuery(cmd)
	if err != nil {
		return err
	}
	gen, err := Generator(cmd)
	if err != nil {
		return err
	}
	key, err := q.FingerprintWith(gen)
	if err != nil {
		return err
	}

	if !cmd.Bool("canonical") {
		_, err = fmt.Fprintln(m.Out(), key)
		return err
	}

	canon, err := q.Canonical()
	if err != nil {
		return err
	}
	doc, err := fingerprint.Canonical(canon)
	if err != nil {
		return err
	}
	return output.WriteJSON(m.Out(), struct {
		Key       string          `json:"cache_key"`
		Algorithm string          `json:"algorithm"`
		Canonical json.RawMessage `json:"canonical"`
	}{key, string(gen.Algorithm()), doc})
}

// FingerprintCommandBuilder constructs the cli.Command for "fingerprint".
func FingerprintCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "fingerprint",
		Aliases:   []string{"fp"},
		Usage:     "print the cache key of a query",
		UsageText: `rcache fingerprint [-q FILE] [--algorithm ALG] [--canonical]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			queryFlag(),
			algorithmFlag("fingerprint"),
			&cli.BoolFlag{
				Name:  "canonical",
				Usage: "also print the canonical form that is hashed",
			},
			tldrFlag(),
		},
		Action: FingerprintCommandAction,
	}
}
