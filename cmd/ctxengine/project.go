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
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kraklabs/ctxengine/internal/errors"
	"github.com/kraklabs/ctxengine/pkg/engine"
	"github.com/kraklabs/ctxengine/pkg/scanner"
)

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logLevel is Warn unless --debug is set, so command output stays readable.
func (a *app) logLevel(base slog.Level) slog.Level {
	if a.globals.Debug {
		return slog.LevelDebug
	}
	return base
}

// projectRoot resolves the root from --root, the location of --config, or
// the working directory, in that order.
func (a *app) projectRoot() (string, error) {
	root := a.root
	if root == "" && a.configPath != "" {
		root = filepath.Dir(filepath.Dir(a.configPath))
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.NewInternalError("Cannot determine the working directory", "", "", err)
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.NewInputError("Invalid project root", err.Error(), "Pass an existing directory with --root")
	}
	return abs, nil
}

// loadConfig reads the project configuration. A missing default config is
// not an error: the defaults are used. A missing explicit --config is.
func (a *app) loadConfig(root string) (*Config, error) {
	path := a.configPath
	if path == "" {
		path = ConfigPath(root)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			cfg := DefaultConfig(filepath.Base(root))
			if err := cfg.applyEnv(); err != nil {
				return nil, errors.NewConfigError("Invalid environment override", err.Error(), "Fix or unset the variable", err)
			}
			return cfg, nil
		}
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot load configuration",
			err.Error(),
			"Fix "+path+" or recreate it with 'ctxengine init --force'",
			err,
		)
	}
	return cfg, nil
}

// openProject loads the configuration and scans the project root into a
// fresh Manager.
func (a *app) openProject(level slog.Level) (*engine.Manager, *Config, *scanner.Report, error) {
	root, err := a.projectRoot()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := a.loadConfig(root)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(a.stderr, a.logLevel(level))
	progress := newScanProgress(NewProgressConfig(a.globals), "Scanning")
	ecfg := cfg.EngineConfig()
	ecfg.OnFile = progress.onFile

	mgr, err := engine.New(ecfg, logger)
	if err != nil {
		return nil, nil, nil, errors.NewConfigError("Invalid engine configuration", err.Error(), "Check extract.mode in the configuration", err)
	}
	report, err := mgr.InitializeProject(a.ctx, root)
	progress.finish()
	if err != nil {
		return nil, nil, nil, err
	}
	return mgr, cfg, report, nil
}
