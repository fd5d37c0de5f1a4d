// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/backend"
	"github.com/staranto/rcachego/internal/config"
	"github.com/staranto/rcachego/internal/fingerprint"
)

func init() {
	cfg, _ = config.Load()
}

var cfg config.Type

func schemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "list the attributes available to --attrs",
		HideDefault: true,
	}
}

func tldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

func queryFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "query JSON file, - for stdin",
		Value:   "-",
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}
}

// yamlChain returns config file sources for key, namespaced first.
func yamlChain(ns string, keys ...string) []cli.ValueSource {
	var chain []cli.ValueSource
	for _, k := range keys {
		if ns != "" {
			chain = append(chain, yaml.YAML(ns+"."+k, altsrc.StringSourcer(cfg.Source)))
		}
		chain = append(chain, yaml.YAML(k, altsrc.StringSourcer(cfg.Source)))
	}
	return chain
}

// NewGlobalFlags returns the output flags shared by every command that
// renders entries.
func NewGlobalFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(yamlChain(ns, "color")...),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show timestamps in RCACHE_TZ or TZ",
			Sources: cli.NewValueSourceChain(yamlChain(ns, "local")...),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("RCACHE_OUTPUT")}, yamlChain(ns, "output")...)...,
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(yamlChain(ns, "sort")...),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(yamlChain(ns, "titles")...),
			Value:   false,
		},
	}
}

// NewBackendFlags returns the flags that select and configure the store.
func NewBackendFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "cache backend (file, memory, s3, postgres)",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("RCACHE_BACKEND")}, yamlChain(ns, "backend")...)...,
			),
			Value: backend.TypeFile,
			Validator: func(value string) error {
				return FlagValidators(value, BackendValidator)
			},
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "file backend directory. Defaults to the user cache dir",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("RCACHE_CACHE_DIR")}, yamlChain("", "file.dir")...)...,
			),
		},
		&cli.StringFlag{
			Name:  "bucket",
			Usage: "s3 backend bucket",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("RCACHE_BUCKET")}, yamlChain("", "s3.bucket")...)...,
			),
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "s3 backend key prefix",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("RCACHE_PREFIX")}, yamlChain("", "s3.prefix")...)...,
			),
			Value: "research_cache",
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "s3 backend region",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("RCACHE_REGION")}, yamlChain("", "s3.region")...)...,
			),
		},
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "aws shared config profile",
			Sources: cli.NewValueSourceChain(yamlChain("", "s3.profile")...),
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "s3 compatible endpoint URL",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("RCACHE_S3_ENDPOINT")}, yamlChain("", "s3.endpoint")...)...,
			),
		},
		&cli.BoolFlag{
			Name:    "path-style",
			Usage:   "use path-style s3 addressing",
			Sources: cli.NewValueSourceChain(yamlChain("", "s3.path_style")...),
		},
		&cli.IntFlag{
			Name:    "max-attempts",
			Usage:   "s3 request attempts, 0 for the sdk default",
			Sources: cli.NewValueSourceChain(yamlChain("", "s3.max_attempts")...),
			Value:   0,
		},
		&cli.StringFlag{
			Name:  "dsn",
			Usage: "postgres backend connection string",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("RCACHE_DSN"), cli.EnvVar("DATABASE_URL")}, yamlChain("", "postgres.dsn")...)...,
			),
		},
	}
}

func algorithmFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "algorithm",
		Usage: "cache key digest (sha1, sha256, blake2b)",
		Sources: cli.NewValueSourceChain(
			append([]cli.ValueSource{cli.EnvVar("RCACHE_ALGORITHM")}, yamlChain(ns, "algorithm")...)...,
		),
		Value: string(fingerprint.SHA1),
		Validator: func(value string) error {
			return FlagValidators(value, AlgorithmValidator)
		},
	}
}

func maxAgeFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "max-age",
		Aliases: []string{"m"},
		Usage:   "freshness window, e.g. 14d or 36h",
		Sources: cli.NewValueSourceChain(
			append([]cli.ValueSource{cli.EnvVar("RCACHE_MAX_AGE")}, yamlChain(ns, "max_age")...)...,
		),
		Value: "14d",
		Validator: func(value string) error {
			return FlagValidators(value, DurationValidator)
		},
	}
}

func execFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "exec",
		Aliases: []string{"x"},
		Usage:   "command run on a miss; reads the query on stdin, writes the JSON result",
		Sources: cli.NewValueSourceChain(yamlChain(ns, "exec")...),
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator)
		},
	}
}

func invokerFlags(ns string) []cli.Flag {
	return []cli.Flag{
		algorithmFlag(ns),
		maxAgeFlag(ns),
		execFlag(ns),
		&cli.StringFlag{
			Name:  "timeout",
			Usage: "bound on each compute, e.g. 2m. 0 for none",
			Sources: cli.NewValueSourceChain(
				yamlChain(ns, "timeout")...,
			),
			Value: "0s",
			Validator: func(value string) error {
				return FlagValidators(value, DurationValidator)
			},
		},
		&cli.BoolFlag{
			Name:    "single-flight",
			Usage:   "share one compute between concurrent misses of the same key",
			Sources: cli.NewValueSourceChain(yamlChain(ns, "single_flight")...),
		},
	}
}

// pathHas reports whether target is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
