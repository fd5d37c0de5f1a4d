// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler_HandleLog(t *testing.T) {
	var buf bytes.Buffer
	h := NewCustomHandler(&buf)

	logger := &log.Logger{Handler: h, Level: log.DebugLevel}
	logger.WithFields(log.Fields{"key": "abc", "backend": "file"}).Warn("store unavailable")

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, " W store unavailable")
	// Fields are emitted in name order.
	assert.Contains(t, line, "backend=file key=abc")
}

func TestInitLogger_Level(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want log.Level
	}{
		{name: "default", env: "", want: log.ErrorLevel},
		{name: "debug", env: "debug", want: log.DebugLevel},
		{name: "upper case", env: "WARN", want: log.WarnLevel},
		{name: "garbage", env: "chatty", want: log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RCACHE_LOG", tt.env)
			InitLogger()
			l, ok := log.Log.(*log.Logger)
			assert.True(t, ok)
			assert.Equal(t, tt.want, l.Level)
		})
	}
}
