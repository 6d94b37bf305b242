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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ctxengine/pkg/engine"
	"github.com/kraklabs/ctxengine/pkg/project"
	"github.com/kraklabs/ctxengine/pkg/relations"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(envModel, "")
	t.Setenv(envMaxTokens, "")
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/p", ".ctxengine", "engine.yaml"), ConfigPath("/p"))
	assert.Equal(t, filepath.Join("/p", ".ctxengine"), ConfigDir("/p"))
}

func TestSaveLoadConfig(t *testing.T) {
	clearEnv(t)
	path := ConfigPath(t.TempDir())

	cfg := DefaultConfig("svc")
	cfg.Scan.Exclude = []string{"vendor/**"}
	cfg.Extract.Mode = "treesitter"
	cfg.Context.DefaultModel = "gpt-4o"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project_id: web\ncontext:\n  max_tokens: 4000\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "web", cfg.ProjectID)
	assert.Equal(t, 4000, cfg.Context.MaxTokens)
	assert.Equal(t, engine.DefaultCacheSize, cfg.Context.CacheSize)
	assert.Equal(t, project.MaxFileSize, cfg.Scan.MaxFileSize)
	assert.Equal(t, "regex", cfg.Extract.Mode)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, SaveConfig(DefaultConfig("x"), path))

	t.Setenv(envModel, "claude-3-opus")
	t.Setenv(envMaxTokens, "12000")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-opus", cfg.Context.DefaultModel)
	assert.Equal(t, 12000, cfg.Context.MaxTokens)

	t.Setenv(envMaxTokens, "lots")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	tests := map[string]string{
		"bad yaml":     "context: [",
		"bad mode":     "extract:\n  mode: ast\n",
		"bad interval": "refresh:\n  interval: soon\n",
		"negative":     "context:\n  max_tokens: -1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "engine.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRefreshInterval(t *testing.T) {
	cfg := DefaultConfig("x")
	d, err := cfg.RefreshInterval()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	cfg.Refresh.Interval = ""
	d, err = cfg.RefreshInterval()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestEngineConfig(t *testing.T) {
	cfg := DefaultConfig("x")
	cfg.Scan.Exclude = []string{"gen/**"}
	cfg.Scan.Workers = 2
	cfg.Extract.Mode = "treesitter"
	cfg.Context.DefaultModel = "gpt-4"
	cfg.Context.MaxTokens = 3000
	cfg.Context.CacheSize = 7

	ec := cfg.EngineConfig()
	assert.Equal(t, []string{"gen/**"}, ec.ExcludeGlobs)
	assert.Equal(t, 2, ec.Workers)
	assert.Equal(t, relations.ModeTreeSitter, ec.ExtractMode)
	assert.Equal(t, "gpt-4", ec.DefaultModel)
	assert.Equal(t, 3000, ec.DefaultMaxTokens)
	assert.Equal(t, 7, ec.CacheSize)
}
