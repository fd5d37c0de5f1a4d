// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/rcachego/internal/research"
)

// ErrNoExec is returned when a miss needs computing and no --exec was given.
var ErrNoExec = errors.New("no --exec command to compute a miss")

// shell is the interpreter used for --exec.
func shell() string {
	if s := os.Getenv("RCACHE_SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}

// ShellCompute runs command through the shell with the query JSON on stdin
// and returns its stdout as the result payload. The query fields are also
// exported as RCACHE_QUERY_TYPE, RCACHE_QUERY_TOPIC and RCACHE_CACHE_KEY.
func ShellCompute(ctx context.Context, command string, q research.Query, key string, stderr io.Writer) (json.RawMessage, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrNoExec
	}

	input, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	c := exec.CommandContext(ctx, shell(), "-c", command)
	c.Stdin = bytes.NewReader(input)
	c.Stderr = stderr
	c.Env = append(os.Environ(),
		"RCACHE_QUERY_TYPE="+q.Type,
		"RCACHE_QUERY_TOPIC="+q.Topic,
		"RCACHE_CACHE_KEY="+key,
	)

	log.WithFields(log.Fields{"exec": command, "key": key}).Debug("computing")
	out, err := c.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("compute %q: %w", command, ctx.Err())
		}
		return nil, fmt.Errorf("compute %q failed: %w", command, err)
	}

	out = bytes.TrimSpace(out)
	if !json.Valid(out) {
		return nil, fmt.Errorf("compute %q did not write a JSON document", command)
	}
	return json.RawMessage(out), nil
}
