// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/rcachego/internal/command"
	"github.com/staranto/rcachego/internal/config"
	mylog "github.com/staranto/rcachego/internal/log"
	"github.com/staranto/rcachego/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = expandArgSets(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// expandArgSets replaces an @name argument with the args listed under
// <command>.sets.<name> in the config file. Without an @name the
// <command>.sets.defaults list, if any, is inserted after the command.
func expandArgSets(args []string) []string {
	// Help never picks up a set.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return args
		}
	}

	out := make([]string, 2, len(args)+4)
	copy(out, args[:2])

	set := "defaults"
	rest := make([]string, 0, len(args))
	for _, a := range args[2:] {
		if name, ok := strings.CutPrefix(a, "@"); ok && name != "" {
			set = name
			continue
		}
		rest = append(rest, a)
	}

	setArgs, _ := config.GetStringSlice(args[1] + ".sets." + set)
	for _, arg := range setArgs {
		out = append(out, strings.Fields(arg)...)
	}
	out = append(out, rest...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
