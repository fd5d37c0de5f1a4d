// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/rcachego/internal/meta"
)

const bashCompletionScript = `# bash completion for rcache
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_rcache()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "diff fingerprint get history lookup migrate plan purge save completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local backend="--backend -b --dir --bucket --prefix --region --profile --endpoint --path-style --max-attempts --dsn"
    local invoke="--algorithm --max-age -m --exec -x --timeout --single-flight"
    local common="--attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --tldr"

    case "$cmd" in
        diff)
            local opts="$backend --color -c --tldr"
            ;;
        fingerprint|fp)
            local opts="--query -q --algorithm --canonical --tldr"
            ;;
        get)
            local opts="$backend $invoke --query -q --lead --envelope -e --tldr"
            ;;
        history|hist)
            local opts="$backend $common --query -q --algorithm --schema"
            ;;
        lookup)
            local opts="$backend --freshness-days -d --tldr"
            ;;
        migrate)
            local opts="$backend --tldr"
            ;;
        plan)
            local opts="$backend $invoke --plan -p --concurrency -n --check --lead --tldr"
            ;;
        purge)
            local opts="$backend --hours --tldr"
            ;;
        save)
            local opts="$backend --query -q --result -r --lead --algorithm --max-age -m --tldr"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="--help"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --backend|-b)
            COMPREPLY=( $(compgen -W "file memory s3 postgres" -- "$cur") )
            return 0
            ;;
        --algorithm)
            COMPREPLY=( $(compgen -W "sha1 sha256 blake2b" -- "$cur") )
            return 0
            ;;
        --query|-q|--result|-r|--plan|-p|--dir)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _rcache rcache
`

const zshCompletionScript = `#compdef rcache

_rcache() {
  local -a cmds
  cmds=(
    'diff:compare two stored results of a key'
    'fingerprint:print the cache key of a query'
    'get:answer a query from the cache, computing on a miss'
    'history:list every entry stored for a key'
    'lookup:check the cache for a key'
    'migrate:create or upgrade the postgres schema'
    'plan:answer every query of a research plan'
    'purge:remove key logs not written for a while'
    'save:store a result for a query'
    'completion:generate shell completion script'
  )

  local -a backend
  backend=(
  '(-b --backend)'{-b,--backend}'[cache backend]:backend:(file memory s3 postgres)'
  '--dir[file backend directory]:dir:_directories'
  '--bucket[s3 bucket]:bucket'
  '--prefix[s3 key prefix]:prefix'
  '--region[s3 region]:region'
  '--profile[aws profile]:profile'
  '--endpoint[s3 endpoint]:url'
  '--path-style[path-style s3 addressing]'
  '--max-attempts[s3 request attempts]:n'
  '--dsn[postgres connection string]:dsn'
  )

  local -a invoke
  invoke=(
  '--algorithm[cache key digest]:alg:(sha1 sha256 blake2b)'
  '(-m --max-age)'{-m,--max-age}'[freshness window]:duration'
  '(-x --exec)'{-x,--exec}'[command run on a miss]:command'
  '--timeout[bound on each compute]:duration'
  '--single-flight[share concurrent computes]'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'rcache commands' cmds
    return
  fi

  case $words[2] in
    diff)
      _arguments -C $backend '(-c --color)'{-c,--color}'[colored diff]' '--tldr[show tldr page]' ':key' '::id' '::id'
      ;;
    fingerprint|fp)
      _arguments -C \
        '(-q --query)'{-q,--query}'[query file]:file:_files' \
        '--algorithm[cache key digest]:alg:(sha1 sha256 blake2b)' \
        '--canonical[print canonical form]' \
        '--tldr[show tldr page]'
      ;;
    get)
      _arguments -C $backend $invoke \
        '(-q --query)'{-q,--query}'[query file]:file:_files' \
        '--lead[lead id]:lead' \
        '(-e --envelope)'{-e,--envelope}'[print the envelope]' \
        '--tldr[show tldr page]'
      ;;
    history|hist)
      _arguments -C $backend $common \
        '(-q --query)'{-q,--query}'[query file]:file:_files' \
        '--algorithm[cache key digest]:alg:(sha1 sha256 blake2b)' \
        '--schema[list attributes]' \
        '--tldr[show tldr page]' \
        '::key'
      ;;
    lookup)
      _arguments -C $backend '(-d --freshness-days)'{-d,--freshness-days}'[max age in days]:days' '--tldr[show tldr page]' ':key'
      ;;
    migrate)
      _arguments -C $backend '--tldr[show tldr page]'
      ;;
    plan)
      _arguments -C $backend $invoke \
        '(-p --plan)'{-p,--plan}'[plan file]:file:_files' \
        '(-n --concurrency)'{-n,--concurrency}'[queries at once]:n' \
        '--check[only report freshness]' \
        '--lead[lead id]:lead' \
        '--tldr[show tldr page]'
      ;;
    purge)
      _arguments -C $backend '--hours[age in hours]:hours' '--tldr[show tldr page]'
      ;;
    save)
      _arguments -C $backend \
        '(-q --query)'{-q,--query}'[query file]:file:_files' \
        '(-r --result)'{-r,--result}'[result file]:file:_files' \
        '--lead[lead id]:lead' \
        '--algorithm[cache key digest]:alg:(sha1 sha256 blake2b)' \
        '(-m --max-age)'{-m,--max-age}'[freshness window]:duration' \
        '--tldr[show tldr page]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _rcache rcache
`

// CompletionCommandAction prints the completion script for the requested
// shell, falling back to $SHELL.
func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)

	shell := cmd.Args().First()
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(m.Out(), bashCompletionScript)
	case "zsh":
		fmt.Fprint(m.Out(), zshCompletionScript)
	default:
		fmt.Fprintln(m.Err(), "usage: rcache completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "rcache completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
