// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"io"
	"os"
)

// IO holds the streams a command reads queries from and writes results to.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// In returns Stdin or os.Stdin.
func (s IO) In() io.Reader {
	if s.Stdin == nil {
		return os.Stdin
	}
	return s.Stdin
}

// Out returns Stdout or os.Stdout.
func (s IO) Out() io.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}
	return s.Stdout
}

// Err returns Stderr or os.Stderr.
func (s IO) Err() io.Writer {
	if s.Stderr == nil {
		return os.Stderr
	}
	return s.Stderr
}
