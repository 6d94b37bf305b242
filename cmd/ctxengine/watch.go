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
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/ctxengine/internal/errors"
	"github.com/kraklabs/ctxengine/internal/ui"
	"github.com/kraklabs/ctxengine/pkg/watch"
)

// runWatch keeps a graph in memory, feeds file system changes into it and
// rescans on the configured interval until interrupted.
//
// Examples:
//
//	ctxengine watch
//	ctxengine watch --interval 1m --metrics-addr 127.0.0.1:9100
func (a *app) runWatch(args []string) error {
	fs := newFlagSet(a, "watch", `Usage: ctxengine watch [options]

Watches the project for changes. File writes update the graph immediately;
relationships are recomputed by periodic full rescans.
`)
	interval := fs.Duration("interval", 0, "Full rescan interval (default: refresh.interval from the configuration)")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	if done, err := parseFlags(fs, args); done {
		return err
	}
	if *interval < 0 {
		return errors.NewInputError("Invalid --interval", "the interval must not be negative", "Pass a duration such as 5m")
	}

	mgr, cfg, report, err := a.openProject(slog.LevelInfo)
	if err != nil {
		return err
	}
	defer mgr.Close()

	logger := newLogger(a.stderr, a.logLevel(slog.LevelInfo))
	g, err := mgr.Graph()
	if err != nil {
		return err
	}

	every := *interval
	if every == 0 {
		if every, err = cfg.RefreshInterval(); err != nil {
			return errors.NewConfigError("Invalid refresh interval", err.Error(), "Fix refresh.interval", err)
		}
	}
	if every > 0 {
		if err := mgr.StartAutoRefresh(a.ctx, every); err != nil {
			return errors.NewInputError("Invalid refresh interval", err.Error(), "Pass a positive --interval")
		}
	}

	if *metricsAddr != "" {
		srv := startMetricsServer(*metricsAddr, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	syncer, err := watch.New(g.Root, mgr.Scanner(), mgr, logger)
	if err != nil {
		return errors.NewInternalError("Cannot watch the project", err.Error(), "Check the inotify watch limit (fs.inotify.max_user_watches)", err)
	}

	if !a.globals.Quiet {
		printReport(a, report)
		ui.Infof(a.stdout, "Watching %s (rescan every %s, Ctrl+C to stop)", g.Root, intervalText(every))
	}

	if err := syncer.Run(a.ctx); err != nil {
		return err
	}
	logger.Info("watch.stopped", "root", g.Root)
	return nil
}

func intervalText(d time.Duration) string {
	if d == 0 {
		return "never"
	}
	return d.String()
}

func startMetricsServer(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics.http.start", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics.http.error", "err", err)
		}
	}()
	return srv
}
