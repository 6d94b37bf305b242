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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ctxengine/internal/errors"
	enginetest "github.com/kraklabs/ctxengine/internal/testing"
	"github.com/kraklabs/ctxengine/pkg/engine"
	"github.com/kraklabs/ctxengine/pkg/selector"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func sampleProject(t *testing.T) string {
	t.Helper()
	clearEnv(t)
	return enginetest.WriteProject(t, map[string]string{
		"a.ts":         "import { b } from './b'\nexport function login() { return b }\n",
		"b.ts":         "export const b = 1\n",
		"web/index.ts": "import { login } from '../a'\n",
		"README.md":    "# sample\n",
	})
}

func TestRun_Version(t *testing.T) {
	r := runCLI(t, "", "--version")
	assert.Equal(t, errors.ExitSuccess, r.code)
	assert.Contains(t, r.stdout, "ctxengine version dev")
}

func TestRun_UsageAndUnknownCommand(t *testing.T) {
	r := runCLI(t, "")
	assert.Equal(t, errors.ExitInput, r.code)
	assert.Contains(t, r.stderr, "Commands:")

	r = runCLI(t, "", "--no-color", "explode")
	assert.Equal(t, errors.ExitInput, r.code)
	assert.Contains(t, r.stderr, "Unknown command: explode")

	r = runCLI(t, "", "--help")
	assert.Equal(t, errors.ExitSuccess, r.code)
}

func TestRun_Init(t *testing.T) {
	root := sampleProject(t)

	r := runCLI(t, "", "--no-color", "init", "--model", "gpt-4", "--exclude", "docs/**", root)
	require.Equal(t, errors.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Scanned 4 files")

	cfg, err := LoadConfig(ConfigPath(root))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), cfg.ProjectID)
	assert.Equal(t, "gpt-4", cfg.Context.DefaultModel)
	assert.Equal(t, []string{"docs/**"}, cfg.Scan.Exclude)

	r = runCLI(t, "", "init", root)
	assert.Equal(t, errors.ExitInput, r.code)
	assert.Contains(t, r.stderr, "Configuration already exists")

	r = runCLI(t, "", "--json", "init", "--force", "--no-scan", root)
	require.Equal(t, errors.ExitSuccess, r.code, r.stderr)
	var res initResult
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &res))
	assert.Equal(t, ConfigPath(root), res.ConfigPath)
	assert.Nil(t, res.Report)
}

func TestRun_InitRejectsBadMode(t *testing.T) {
	root := sampleProject(t)
	r := runCLI(t, "", "init", "--mode", "ast", root)
	assert.Equal(t, errors.ExitInput, r.code)
	_, err := os.Stat(ConfigPath(root))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_ContextJSON(t *testing.T) {
	root := sampleProject(t)

	r := runCLI(t, "", "--root", root, "--json", "context", "-f", "a.ts", "--max-tokens", "1000", "login")
	require.Equal(t, errors.ExitSuccess, r.code, r.stderr)

	var w selector.ContextWindow
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &w))
	require.NotEmpty(t, w.Files)
	assert.Equal(t, "a.ts", w.Files[0].Path)
	assert.Contains(t, w.Paths(), "b.ts")
	assert.Contains(t, w.Paths(), "web/index.ts")
	assert.Equal(t, 1000, w.Budget)
}

func TestRun_ContextFromStdin(t *testing.T) {
	root := sampleProject(t)

	r := runCLI(t, "where is login defined", "--root", root, "--no-color", "context", "--list", "-")
	require.Equal(t, errors.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "a.ts")
	assert.Contains(t, r.stdout, "compression 100%")
}

func TestRun_ContextText(t *testing.T) {
	root := sampleProject(t)

	r := runCLI(t, "", "--root", root, "context", "-f", "b.ts")
	require.Equal(t, errors.ExitSuccess, r.code, r.stderr)
	assert.True(t, strings.HasPrefix(r.stdout, "==> b.ts [typescript]"), r.stdout)
}

func TestRun_Stats(t *testing.T) {
	root := sampleProject(t)

	r := runCLI(t, "", "--root", root, "--json", "stats")
	require.Equal(t, errors.ExitSuccess, r.code, r.stderr)

	var stats struct {
		engine.ProjectStats
		Scan struct {
			FileCount int `json:"file_count"`
		} `json:"scan"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &stats))
	assert.Equal(t, 4, stats.FileCount)
	assert.Equal(t, 4, stats.Scan.FileCount)
	assert.Equal(t, 1, stats.ClusterCount)
	assert.Equal(t, []string{"web/index.ts"}, stats.EntryPoints)

	r = runCLI(t, "", "--root", root, "--no-color", "stats")
	require.Equal(t, errors.ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Languages")
}

func TestRun_Related(t *testing.T) {
	root := sampleProject(t)

	r := runCLI(t, "", "--root", root, "--json", "related", "a.ts")
	require.Equal(t, errors.ExitSuccess, r.code, r.stderr)
	var rels engine.FileRelationships
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &rels))
	require.NotEmpty(t, rels.Outgoing)
	assert.Equal(t, "b.ts", rels.Outgoing[0].Target)
	require.NotEmpty(t, rels.Incoming)
	assert.Equal(t, "web/index.ts", rels.Incoming[0].Source)

	r = runCLI(t, "", "--root", root, "related", "nope.ts")
	assert.Equal(t, errors.ExitNotFound, r.code)

	r = runCLI(t, "", "--root", root, "related")
	assert.Equal(t, errors.ExitInput, r.code)
}

func TestRun_Similar(t *testing.T) {
	root := sampleProject(t)

	r := runCLI(t, "", "--root", root, "--json", "similar", "-n", "1", "a.ts")
	require.Equal(t, errors.ExitSuccess, r.code, r.stderr)
	var similar []engine.SimilarFile
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &similar))
	require.Len(t, similar, 1)
	assert.Equal(t, "b.ts", similar[0].Path)

	r = runCLI(t, "", "--root", root, "similar", "--limit", "0", "a.ts")
	assert.Equal(t, errors.ExitInput, r.code)
}

func TestRun_Errors(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing")
	r := runCLI(t, "", "--root", missing, "stats")
	assert.Equal(t, errors.ExitNotFound, r.code)

	root := sampleProject(t)
	enginetest.WriteFile(t, root, ".ctxengine/engine.yaml", "extract: [")
	r = runCLI(t, "", "--root", root, "--json", "stats")
	assert.Equal(t, errors.ExitConfig, r.code)
	assert.Contains(t, r.stderr, `"exit_code": 1`)

	r = runCLI(t, "", "--root", root, "context", "--bogus")
	assert.Equal(t, errors.ExitInput, r.code)
}

func TestRun_Completion(t *testing.T) {
	for shell, marker := range map[string]string{
		"bash": "complete -F _ctxengine ctxengine",
		"zsh":  "#compdef ctxengine",
		"fish": "complete -c ctxengine",
	} {
		r := runCLI(t, "", "completion", shell)
		assert.Equal(t, errors.ExitSuccess, r.code, shell)
		assert.Contains(t, r.stdout, marker, shell)
	}

	r := runCLI(t, "", "completion", "tcsh")
	assert.Equal(t, errors.ExitInput, r.code)
	r = runCLI(t, "", "completion")
	assert.Equal(t, errors.ExitInput, r.code)
}
