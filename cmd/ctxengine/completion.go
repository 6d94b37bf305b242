// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"

	"github.com/kraklabs/ctxengine/internal/errors"
)

const bashCompletion = `# bash completion for ctxengine
#   source <(ctxengine completion bash)

_ctxengine() {
    local cur cmd i
    cur="${COMP_WORDS[COMP_CWORD]}"

    cmd=""
    for ((i = 1; i < COMP_CWORD; i++)); do
        case "${COMP_WORDS[i]}" in
            --config|--root) ((i++)) ;;
            -*) ;;
            *) cmd="${COMP_WORDS[i]}"; break ;;
        esac
    done

    if [[ -z ${cmd} ]]; then
        if [[ ${cur} == -* ]]; then
            COMPREPLY=( $(compgen -W "--config --root --json --no-color --quiet --debug --version --help" -- "${cur}") )
        else
            COMPREPLY=( $(compgen -W "init context stats related similar watch completion" -- "${cur}") )
        fi
        return 0
    fi

    case "${cmd}" in
        init)
            [[ ${cur} == -* ]] && COMPREPLY=( $(compgen -W "--force --no-scan --mode --model --max-tokens --exclude --refresh" -- "${cur}") )
            ;;
        context)
            if [[ ${cur} == -* ]]; then
                COMPREPLY=( $(compgen -W "--file --type --model --selection --max-tokens --compress --no-compress --list" -- "${cur}") )
            fi
            ;;
        related|similar)
            if [[ ${cur} == -* ]]; then
                COMPREPLY=( $(compgen -W "--limit" -- "${cur}") )
            else
                COMPREPLY=( $(compgen -f -- "${cur}") )
            fi
            ;;
        watch)
            [[ ${cur} == -* ]] && COMPREPLY=( $(compgen -W "--interval --metrics-addr" -- "${cur}") )
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )
            ;;
    esac
}

complete -F _ctxengine ctxengine
`

const zshCompletion = `#compdef ctxengine
# zsh completion for ctxengine
#   ctxengine completion zsh > "${fpath[1]}/_ctxengine"

_ctxengine() {
    local -a commands
    commands=(
        'init:Create .ctxengine/engine.yaml and scan the project'
        'context:Print the context window for a request'
        'stats:Show project statistics'
        'related:Show the relationships of a file'
        'similar:List files similar to a file'
        'watch:Keep the graph in sync with the file system'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '--config[Path to engine.yaml]:config file:_files -g "*.yaml"' \
        '--root[Project root]:directory:_directories' \
        '--json[Machine readable output]' \
        '--no-color[Disable colored output]' \
        '(-q --quiet)'{-q,--quiet}'[Hide progress output]' \
        '--debug[Enable debug logging]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                init)
                    _arguments \
                        '--force[Overwrite an existing configuration]' \
                        '--no-scan[Only write the configuration]' \
                        '--mode[Import detection]:mode:(regex treesitter)' \
                        '--model[Default model]:model:' \
                        '--max-tokens[Fallback token budget]:tokens:' \
                        '*--exclude[Extra exclude glob]:glob:' \
                        '--refresh[Rescan interval]:duration:' \
                        '1:directory:_directories'
                    ;;
                context)
                    _arguments \
                        '(-f --file)'{-f,--file}'[Current file]:file:_files' \
                        '(-t --type)'{-t,--type}'[Request type]:type:(chat edit review)' \
                        '(-m --model)'{-m,--model}'[Target model]:model:' \
                        '--selection[Selected text]:text:' \
                        '--max-tokens[Explicit token budget]:tokens:' \
                        '--compress[Allow truncation]' \
                        '--no-compress[Never truncate]' \
                        '(-l --list)'{-l,--list}'[List files only]' \
                        '*:request text:'
                    ;;
                related)
                    _arguments '1:file:_files'
                    ;;
                similar)
                    _arguments \
                        '(-n --limit)'{-n,--limit}'[Maximum results]:count:' \
                        '1:file:_files'
                    ;;
                watch)
                    _arguments \
                        '--interval[Full rescan interval]:duration:' \
                        '--metrics-addr[Prometheus metrics address]:address:'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_ctxengine
`

const fishCompletion = `# fish completion for ctxengine
#   ctxengine completion fish > ~/.config/fish/completions/ctxengine.fish

complete -c ctxengine -f -n "__fish_use_subcommand" -a "init" -d "Create .ctxengine/engine.yaml and scan"
complete -c ctxengine -f -n "__fish_use_subcommand" -a "context" -d "Print the context window for a request"
complete -c ctxengine -f -n "__fish_use_subcommand" -a "stats" -d "Show project statistics"
complete -c ctxengine -f -n "__fish_use_subcommand" -a "related" -d "Show the relationships of a file"
complete -c ctxengine -f -n "__fish_use_subcommand" -a "similar" -d "List files similar to a file"
complete -c ctxengine -f -n "__fish_use_subcommand" -a "watch" -d "Keep the graph in sync"
complete -c ctxengine -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

complete -c ctxengine -l version -d "Show version and exit"
complete -c ctxengine -l config -d "Path to engine.yaml" -r
complete -c ctxengine -l root -d "Project root" -r
complete -c ctxengine -l json -d "Machine readable output"
complete -c ctxengine -l no-color -d "Disable colored output"
complete -c ctxengine -s q -l quiet -d "Hide progress output"
complete -c ctxengine -l debug -d "Enable debug logging"

complete -c ctxengine -n "__fish_seen_subcommand_from init" -l force -d "Overwrite an existing configuration"
complete -c ctxengine -n "__fish_seen_subcommand_from init" -l no-scan -d "Only write the configuration"
complete -c ctxengine -n "__fish_seen_subcommand_from init" -l mode -d "Import detection" -xa "regex treesitter"
complete -c ctxengine -n "__fish_seen_subcommand_from init" -l model -d "Default model" -r
complete -c ctxengine -n "__fish_seen_subcommand_from init" -l max-tokens -d "Fallback token budget" -r
complete -c ctxengine -n "__fish_seen_subcommand_from init" -l exclude -d "Extra exclude glob" -r
complete -c ctxengine -n "__fish_seen_subcommand_from init" -l refresh -d "Rescan interval" -r

complete -c ctxengine -n "__fish_seen_subcommand_from context" -s f -l file -d "Current file" -r
complete -c ctxengine -n "__fish_seen_subcommand_from context" -s t -l type -d "Request type" -xa "chat edit review"
complete -c ctxengine -n "__fish_seen_subcommand_from context" -s m -l model -d "Target model" -r
complete -c ctxengine -n "__fish_seen_subcommand_from context" -l selection -d "Selected text" -r
complete -c ctxengine -n "__fish_seen_subcommand_from context" -l max-tokens -d "Explicit token budget" -r
complete -c ctxengine -n "__fish_seen_subcommand_from context" -l compress -d "Allow truncation"
complete -c ctxengine -n "__fish_seen_subcommand_from context" -l no-compress -d "Never truncate"
complete -c ctxengine -n "__fish_seen_subcommand_from context" -s l -l list -d "List files only"

complete -c ctxengine -n "__fish_seen_subcommand_from related similar" -F
complete -c ctxengine -n "__fish_seen_subcommand_from similar" -s n -l limit -d "Maximum results" -r

complete -c ctxengine -n "__fish_seen_subcommand_from watch" -l interval -d "Full rescan interval" -r
complete -c ctxengine -n "__fish_seen_subcommand_from watch" -l metrics-addr -d "Prometheus metrics address" -r

complete -c ctxengine -n "__fish_seen_subcommand_from completion" -f -a "bash zsh fish"
`

var completionScripts = map[string]string{
	"bash": bashCompletion,
	"zsh":  zshCompletion,
	"fish": fishCompletion,
}

// runCompletion prints a completion script for bash, zsh or fish.
//
// Examples:
//
//	source <(ctxengine completion bash)
//	ctxengine completion zsh > "${fpath[1]}/_ctxengine"
//	ctxengine completion fish | source
func (a *app) runCompletion(args []string) error {
	fs := newFlagSet(a, "completion", `Usage: ctxengine completion <bash|zsh|fish>

Prints a shell completion script to stdout.

  bash:  source <(ctxengine completion bash)
  zsh:   ctxengine completion zsh > "${fpath[1]}/_ctxengine"
  fish:  ctxengine completion fish > ~/.config/fish/completions/ctxengine.fish
`)
	if done, err := parseFlags(fs, args); done {
		return err
	}
	if fs.NArg() != 1 {
		return errors.NewInputError(
			"Invalid arguments",
			"completion takes exactly one argument: the shell name",
			"Run 'ctxengine completion bash', 'ctxengine completion zsh' or 'ctxengine completion fish'",
		)
	}

	script, ok := completionScripts[fs.Arg(0)]
	if !ok {
		return errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("shell %q is not supported; valid options: bash, zsh, fish", fs.Arg(0)),
			"Run 'ctxengine completion bash', 'ctxengine completion zsh' or 'ctxengine completion fish'",
		)
	}
	_, err := fmt.Fprint(a.stdout, script)
	return err
}
