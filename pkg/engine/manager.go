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

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kraklabs/ctxengine/pkg/graph"
	"github.com/kraklabs/ctxengine/pkg/project"
	"github.com/kraklabs/ctxengine/pkg/relations"
	"github.com/kraklabs/ctxengine/pkg/scanner"
	"github.com/kraklabs/ctxengine/pkg/selector"
)

// Manager owns the current project snapshot and the window cache, and is
// the entry point for every query.
//
// Queries load the snapshot pointer once and never block on mutations. A
// query racing a refresh sees either the old or the new snapshot, never a
// mix. Mutations and refreshes are serialized with each other.
type Manager struct {
	cfg       Config
	logger    *slog.Logger
	scanner   *scanner.Scanner
	extractor *relations.Extractor
	selector  *selector.Selector
	cache     *windowCache
	now       func() time.Time

	// afterLoad, when set, runs between the snapshot load and selection.
	afterLoad func()

	snapshot   atomic.Pointer[graph.ProjectGraph]
	lastReport atomic.Pointer[scanner.Report]

	mu   sync.Mutex // serializes builds and file mutations
	root string

	refreshMu   sync.Mutex
	stopRefresh context.CancelFunc
	refreshDone chan struct{}
}

// New creates a Manager. It fails only on an invalid extract mode.
func New(cfg Config, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	extractor, err := relations.New(cfg.ExtractMode, logger)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:    cfg,
		logger: logger,
		scanner: scanner.New(scanner.Options{
			ExcludeGlobs: cfg.ExcludeGlobs,
			MaxFileSize:  cfg.MaxFileSize,
			Workers:      cfg.Workers,
			OnFile:       cfg.OnFile,
		}, logger),
		extractor: extractor,
		selector:  selector.New(cfg.DefaultMaxTokens),
		cache:     newWindowCache(cfg.CacheSize),
		now:       time.Now,
	}, nil
}

// Scanner exposes the manager's scanner so that watchers apply the same
// filters as full scans.
func (m *Manager) Scanner() *scanner.Scanner {
	return m.scanner
}

// Graph returns the current snapshot.
func (m *Manager) Graph() (*graph.ProjectGraph, error) {
	g := m.snapshot.Load()
	if g == nil {
		return nil, ErrNotInitialized
	}
	return g, nil
}

// LastReport returns the report of the most recent successful scan, or nil.
func (m *Manager) LastReport() *scanner.Report {
	return m.lastReport.Load()
}

// InitializeProject scans root and installs a fresh snapshot. On failure the
// previous snapshot, if any, stays in place.
func (m *Manager) InitializeProject(ctx context.Context, root string) (*scanner.Report, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	report, err := m.build(ctx, absRoot)
	if err != nil {
		return nil, err
	}
	m.root = absRoot
	return report, nil
}

// RefreshProject rescans the project given to InitializeProject.
func (m *Manager) RefreshProject(ctx context.Context) (*scanner.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.root == "" {
		return nil, ErrNotInitialized
	}
	return m.build(ctx, m.root)
}

// build runs scan, extraction and graph construction. Callers hold m.mu.
func (m *Manager) build(ctx context.Context, root string) (*scanner.Report, error) {
	start := time.Now()
	m.logger.Info("engine.build.start", "root", root, "mode", m.extractor.Mode())

	files, report, err := m.scanner.Scan(ctx, root)
	if err != nil {
		recordBuildFailure()
		return nil, fmt.Errorf("scan project: %w", err)
	}
	rels, err := m.extractor.Extract(ctx, files)
	if err != nil {
		recordBuildFailure()
		return nil, fmt.Errorf("extract relationships: %w", err)
	}

	g := graph.Build(root, files, rels, m.now())
	m.install(g)
	m.lastReport.Store(report)

	elapsed := time.Since(start)
	observeBuild(elapsed.Seconds())
	recordSkipped(report.SkipReasons)

	m.logger.Info("engine.build.complete",
		"root", root,
		"files", len(g.Files),
		"relationships", len(g.Relationships),
		"clusters", len(g.Clusters),
		"entry_points", len(g.EntryPoints),
		"warnings", len(report.Warnings),
		"duration_ms", elapsed.Milliseconds(),
	)
	return report, nil
}

// install swaps in a new snapshot and drops every cached window.
func (m *Manager) install(g *graph.ProjectGraph) {
	m.snapshot.Store(g)
	m.cache.clear()
	recordSnapshot(len(g.Files), len(g.Relationships), len(g.Clusters))
}

// GetContext returns the context window for a request, from the cache when
// an identical request was answered against the current snapshot.
func (m *Manager) GetContext(ctx context.Context, req selector.Request, opts selector.Options) (*selector.ContextWindow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Generation before snapshot: install stores first and clears second.
	gen := m.cache.generation()
	g := m.snapshot.Load()
	if g == nil {
		return nil, ErrNotInitialized
	}
	if m.afterLoad != nil {
		m.afterLoad()
	}

	if req.Model == "" {
		req.Model = m.cfg.DefaultModel
	}
	req.CurrentFile = m.relPath(req.CurrentFile)

	key := requestSignature(req, opts)
	if w, ok := m.cache.get(key); ok {
		recordCacheHit()
		return w.Clone(), nil
	}
	recordCacheMiss()

	start := time.Now()
	w := m.selector.Select(g, req, opts)
	observeSelect(time.Since(start).Seconds())
	if w.CompressionRatio < 1.0 {
		recordCompressed()
	}

	m.cache.put(key, w, gen)
	m.logger.Debug("engine.context.selected",
		"files", len(w.Files),
		"tokens", w.TotalTokens,
		"budget", w.Budget,
		"compression_ratio", w.CompressionRatio,
	)
	return w.Clone(), nil
}

// AddFile inserts or replaces a file without rescanning. Relationships are
// not recomputed for it.
func (m *Manager) AddFile(path, content string) error {
	return m.upsert("add", path, content)
}

// UpdateFile replaces the content of a file, inserting it when unknown.
// Relationships are not recomputed for it.
func (m *Manager) UpdateFile(path, content string) error {
	return m.upsert("update", path, content)
}

func (m *Manager) upsert(op, path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.snapshot.Load()
	if g == nil {
		return ErrNotInitialized
	}
	rel, err := m.cleanPath(path)
	if err != nil {
		return err
	}

	now := m.now()
	f := m.scanner.NewFile(rel, content, now)
	m.install(g.WithFile(f, now))
	recordMutation(op)
	m.logger.Debug("engine.file."+op, "path", rel, "size", f.Size, "oversized", f.Oversized)
	return nil
}

// RemoveFile drops a file and every relationship touching it.
func (m *Manager) RemoveFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.snapshot.Load()
	if g == nil {
		return ErrNotInitialized
	}
	rel, err := m.cleanPath(path)
	if err != nil {
		return err
	}
	if !g.Has(rel) {
		return wrapNotFound(rel)
	}

	m.install(g.WithoutFile(rel, m.now()))
	recordMutation("remove")
	m.logger.Debug("engine.file.remove", "path", rel)
	return nil
}

// relPath turns an absolute path under the project root into a graph key.
// Other paths are only normalized.
func (m *Manager) relPath(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		if g := m.snapshot.Load(); g != nil {
			if rel, err := filepath.Rel(g.Root, p); err == nil {
				p = rel
			}
		}
	}
	return project.NormalizePath(filepath.ToSlash(p))
}

func (m *Manager) cleanPath(p string) (string, error) {
	rel := m.relPath(p)
	if rel == "" || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return rel, nil
}

// StartAutoRefresh rescans the project every interval until ctx is done or
// Close is called. A failed refresh is logged and the previous snapshot
// stays in place. Calling it again replaces the running schedule.
func (m *Manager) StartAutoRefresh(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	m.stopAutoRefresh()

	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.stopRefresh = cancel
	m.refreshDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RefreshProject(ctx); err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					recordRefreshFailure()
					m.logger.Warn("engine.refresh.failed", "err", err)
				}
			}
		}
	}()

	m.logger.Info("engine.refresh.scheduled", "interval", interval.String())
	return nil
}

func (m *Manager) stopAutoRefresh() {
	m.refreshMu.Lock()
	cancel, done := m.stopRefresh, m.refreshDone
	m.stopRefresh, m.refreshDone = nil, nil
	m.refreshMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Close stops auto-refresh. The snapshot stays readable.
func (m *Manager) Close() error {
	m.stopAutoRefresh()
	return nil
}
