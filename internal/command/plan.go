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
	"github.com/staranto/rcachego/internal/config"
	"github.com/staranto/rcachego/internal/meta"
	"github.com/staranto/rcachego/internal/output"
	"github.com/staranto/rcachego/internal/research"
)

// planResult is one line of plan output.
type planResult struct {
	ID       string          `json:"id"`
	Type     string          `json:"query_type"`
	Topic    string          `json:"topic"`
	CacheKey string          `json:"cache_key"`
	Hit      bool            `json:"hit"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// PlanCommandAction answers every query of a research plan, computing misses
// concurrently. With --check it only reports which queries would hit.
func PlanCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s", cmd.FullName())

	if ShortCircuitTLDR(ctx, cmd, "plan") {
		return nil
	}

	doc, err := ReadInput(cmd, cmd.String("plan"))
	if err != nil {
		return err
	}
	gen, err := Generator(cmd)
	if err != nil {
		return err
	}
	p, err := research.ParsePlan(doc, gen)
	if err != nil {
		return err
	}
	if lead := cmd.String("lead"); lead != "" {
		for i := range p.Queries {
			p.Queries[i].LeadID = lead
		}
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

	results := make([]planResult, len(p.Queries))

	if cmd.Bool("check") {
		maxAge, err := config.ParseDuration(cmd.String("max-age"))
		if err != nil {
			return fmt.Errorf("%w: --max-age: %v", cache.ErrInvalidArgument, err)
		}
		for i, q := range p.Queries {
			res, err := inv.Lookup(ctx, q.CacheKey, maxAge)
			results[i] = planResult{ID: q.ID, Type: q.Type, Topic: q.Topic, CacheKey: q.CacheKey, Hit: res.Hit}
			if err != nil {
				results[i].Error = err.Error()
			}
		}
		return output.WriteJSON(m.Out(), results)
	}

	callOpts, err := CallOptions(cmd)
	if err != nil {
		return err
	}
	command := cmd.String("exec")
	compute := func(ctx context.Context, q research.Query) (json.RawMessage, error) {
		return ShellCompute(ctx, command, q, q.CacheKey, m.Err())
	}

	failed := 0
	for i, r := range inv.Fanout(ctx, p.Queries, compute, int(cmd.Int("concurrency")), callOpts...) {
		results[i] = planResult{
			ID:       r.Query.ID,
			Type:     r.Query.Type,
			Topic:    r.Query.Topic,
			CacheKey: r.Query.CacheKey,
			Hit:      r.Outcome.Hit,
			Result:   r.Outcome.Payload,
		}
		if r.Err != nil {
			failed++
			results[i].Error = r.Err.Error()
		}
	}

	st := inv.Stats()
	log.WithFields(log.Fields{"hits": st.Hits, "computes": st.Computes, "failed": failed}).Info("plan answered")

	if err := output.WriteJSON(m.Out(), results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(results))
	}
	return nil
}

// PlanCommandBuilder constructs the cli.Command for "plan".
func PlanCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "answer every query of a research plan",
		UsageText: `rcache plan -p FILE --exec CMD [--concurrency N] [--check]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{
				Name:    "plan",
				Aliases: []string{"p"},
				Usage:   "plan JSON file, - for stdin",
				Value:   "-",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"n"},
				Usage:   "queries computed at once, 0 for unbounded",
				Sources: cli.NewValueSourceChain(yamlChain("plan", "concurrency")...),
				Value:   4,
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "only report which queries are fresh in the cache",
			},
			leadFlag(),
			tldrFlag(),
		}, invokerFlags("plan")...), NewBackendFlags("plan")...),
		Action: PlanCommandAction,
	}
}
