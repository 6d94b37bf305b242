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
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/ctxengine/pkg/engine"
	"github.com/kraklabs/ctxengine/pkg/project"
	"github.com/kraklabs/ctxengine/pkg/relations"
	"github.com/kraklabs/ctxengine/pkg/selector"
)

const (
	configDirName  = ".ctxengine"
	configFileName = "engine.yaml"

	envModel     = "CTXENGINE_MODEL"
	envMaxTokens = "CTXENGINE_MAX_TOKENS"
)

// Config is the content of .ctxengine/engine.yaml.
type Config struct {
	ProjectID string        `yaml:"project_id"`
	Scan      ScanConfig    `yaml:"scan"`
	Extract   ExtractConfig `yaml:"extract"`
	Context   ContextConfig `yaml:"context"`
	Refresh   RefreshConfig `yaml:"refresh"`
}

// ScanConfig controls which files are tracked.
type ScanConfig struct {
	Exclude     []string `yaml:"exclude,omitempty"`
	MaxFileSize int64    `yaml:"max_file_size"`
	Workers     int      `yaml:"workers"`
}

// ExtractConfig selects how imports are detected: "regex" or "treesitter".
type ExtractConfig struct {
	Mode string `yaml:"mode"`
}

// ContextConfig holds context window defaults.
type ContextConfig struct {
	DefaultModel string `yaml:"default_model,omitempty"`
	MaxTokens    int    `yaml:"max_tokens"`
	Compression  bool   `yaml:"compression"`
	CacheSize    int    `yaml:"cache_size"`
}

// RefreshConfig schedules full rescans while watching. An empty interval
// disables them.
type RefreshConfig struct {
	Interval string `yaml:"interval,omitempty"`
}

// DefaultConfig returns the configuration written by 'ctxengine init'.
func DefaultConfig(projectID string) *Config {
	return &Config{
		ProjectID: projectID,
		Scan: ScanConfig{
			MaxFileSize: project.MaxFileSize,
			Workers:     8,
		},
		Extract: ExtractConfig{Mode: string(relations.ModeRegex)},
		Context: ContextConfig{
			MaxTokens:   selector.DefaultMaxTokens,
			Compression: true,
			CacheSize:   engine.DefaultCacheSize,
		},
		Refresh: RefreshConfig{Interval: "5m"},
	}
}

// ConfigDir returns the configuration directory of a project root.
func ConfigDir(root string) string {
	return filepath.Join(root, configDirName)
}

// ConfigPath returns the configuration file of a project root.
func ConfigPath(root string) string {
	return filepath.Join(ConfigDir(root), configFileName)
}

// LoadConfig reads a configuration file and applies environment overrides.
// Fields missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating the directory if needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	header := []byte("# ctxengine configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if model := os.Getenv(envModel); model != "" {
		c.Context.DefaultModel = model
	}
	if raw := os.Getenv(envMaxTokens); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", envMaxTokens, raw)
		}
		c.Context.MaxTokens = n
	}
	return nil
}

// Validate checks values that the engine would otherwise reject late.
func (c *Config) Validate() error {
	if _, err := relations.ParseMode(c.Extract.Mode); err != nil {
		return err
	}
	if c.Scan.MaxFileSize < 0 {
		return fmt.Errorf("scan.max_file_size must not be negative")
	}
	if c.Context.MaxTokens < 0 {
		return fmt.Errorf("context.max_tokens must not be negative")
	}
	if _, err := c.RefreshInterval(); err != nil {
		return err
	}
	return nil
}

// RefreshInterval parses refresh.interval. Zero means disabled.
func (c *Config) RefreshInterval() (time.Duration, error) {
	if c.Refresh.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Refresh.Interval)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("refresh.interval: invalid duration %q", c.Refresh.Interval)
	}
	return d, nil
}

// EngineConfig converts the file configuration for engine.New.
func (c *Config) EngineConfig() engine.Config {
	mode, _ := relations.ParseMode(c.Extract.Mode)
	return engine.Config{
		ExcludeGlobs:     c.Scan.Exclude,
		MaxFileSize:      c.Scan.MaxFileSize,
		Workers:          c.Scan.Workers,
		ExtractMode:      mode,
		DefaultModel:     c.Context.DefaultModel,
		DefaultMaxTokens: c.Context.MaxTokens,
		CacheSize:        c.Context.CacheSize,
	}
}
