// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
}

func TestLoadAWSConfig(t *testing.T) {
	isolate(t)

	cfg, err := LoadAWSConfig(context.Background(), WithRegion("us-west-2"), WithMaxAttempts(7))
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", cfg.Region)
	require.NotNil(t, cfg.Retryer)
	assert.Equal(t, 7, cfg.Retryer().MaxAttempts())
}

func TestWithMaxAttempts_IgnoresNonPositive(t *testing.T) {
	var o options
	WithMaxAttempts(0)(&o)
	assert.Nil(t, o.retryer)
}

func TestNewS3_Options(t *testing.T) {
	isolate(t)

	cfg, err := LoadAWSConfig(context.Background(), WithRegion("us-east-1"))
	require.NoError(t, err)

	client := NewS3(cfg, WithS3Endpoint("http://localhost:9000"), WithS3PathStyle(true))
	opts := client.Options()
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	client = NewS3(cfg, WithS3Endpoint(""))
	assert.Nil(t, client.Options().BaseEndpoint)
}
