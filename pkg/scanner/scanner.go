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

package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/ctxengine/pkg/project"
)

// Skip reasons reported in Report.SkipReasons.
const (
	SkipExcludedDir    = "excluded_dir"
	SkipExcluded       = "excluded"
	SkipUnsupportedExt = "unsupported_ext"
	SkipReadError      = "read_error"
	SkipWalkError      = "walk_error"
	TooLarge           = "too_large"
)

// Options configures a Scanner.
type Options struct {
	// ExcludeGlobs are appended to DefaultExcludeGlobs.
	ExcludeGlobs []string

	// MaxFileSize is the size above which content is replaced by a
	// placeholder. Zero means project.MaxFileSize.
	MaxFileSize int64

	// Workers bounds concurrent file reads. Zero means 8.
	Workers int

	// OnFile, if set, is called once per file after it has been read.
	// It may be called from several goroutines.
	OnFile func(path string)
}

// Report summarizes a scan.
type Report struct {
	Root        string         `json:"root"`
	FileCount   int            `json:"file_count"`
	TotalSize   int64          `json:"total_size"`
	Languages   map[string]int `json:"languages"`
	SkipReasons map[string]int `json:"skip_reasons"`
	Warnings    []string       `json:"warnings,omitempty"`
	Duration    time.Duration  `json:"duration_ns"`
}

// Scanner walks a project tree and loads the files that the context engine
// tracks.
type Scanner struct {
	excludes    []string
	maxFileSize int64
	workers     int
	onFile      func(string)
	logger      *slog.Logger
}

// New creates a scanner.
func New(opts Options, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = project.MaxFileSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 8
	}
	excludes := make([]string, 0, len(DefaultExcludeGlobs)+len(opts.ExcludeGlobs))
	excludes = append(excludes, DefaultExcludeGlobs...)
	excludes = append(excludes, opts.ExcludeGlobs...)

	return &Scanner{
		excludes:    excludes,
		maxFileSize: maxSize,
		workers:     workers,
		onFile:      opts.OnFile,
		logger:      logger,
	}
}

// MaxFileSize returns the effective placeholder threshold.
func (s *Scanner) MaxFileSize() int64 {
	return s.maxFileSize
}

// SkipDir reports whether a directory (relative, slash separated) is excluded.
func (s *Scanner) SkipDir(rel string) bool {
	return rel != "" && rel != "." && s.excluded(rel)
}

// AcceptFile reports whether a relative file path would be picked up by Scan.
func (s *Scanner) AcceptFile(rel string) bool {
	rel = project.NormalizePath(rel)
	if rel == "" || !SupportedExtension(rel) || s.excluded(rel) {
		return false
	}
	return true
}

func (s *Scanner) excluded(rel string) bool {
	for _, pattern := range s.excludes {
		if matchesGlob(rel, pattern) {
			return true
		}
	}
	return false
}

// NewFile builds a ProjectFile from in-memory content, applying the same
// size cap and language detection as a scan.
func (s *Scanner) NewFile(path, content string, modTime time.Time) project.ProjectFile {
	return newProjectFile(project.NormalizePath(path), content, int64(len(content)), modTime, s.maxFileSize)
}

func newProjectFile(rel, content string, size int64, modTime time.Time, maxSize int64) project.ProjectFile {
	f := project.ProjectFile{
		Path:         rel,
		Content:      content,
		Language:     DetectLanguage(rel),
		Size:         size,
		LastModified: modTime,
	}
	if size > maxSize {
		f.Content = project.Placeholder(size)
		f.Oversized = true
	}
	return f
}

type pendingFile struct {
	rel     string
	full    string
	size    int64
	modTime time.Time
}

// Scan walks root and returns every tracked file keyed by relative path.
//
// Per-file failures are logged and recorded in the report; they never abort
// the scan. An error is returned only when root is not a readable directory
// or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, root string) (map[string]project.ProjectFile, *Report, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	report := &Report{
		Root:        absRoot,
		Languages:   make(map[string]int),
		SkipReasons: make(map[string]int),
	}

	s.logger.Info("scanner.scan.start", "root", absRoot)

	pending := s.walk(absRoot, report)
	files, err := s.readAll(ctx, pending, report)
	if err != nil {
		return nil, nil, err
	}

	for _, f := range files {
		report.FileCount++
		report.TotalSize += f.Size
		report.Languages[f.Language]++
	}
	report.Duration = time.Since(start)

	s.logger.Info("scanner.scan.complete",
		"root", absRoot,
		"files", report.FileCount,
		"total_size", report.TotalSize,
		"skipped", report.SkipReasons,
		"warnings", len(report.Warnings),
		"duration_ms", report.Duration.Milliseconds(),
	)

	return files, report, nil
}

// walk collects the candidate files. Directory errors are logged and skipped.
func (s *Scanner) walk(absRoot string, report *Report) []pendingFile {
	var pending []pendingFile

	_ = filepath.WalkDir(absRoot, func(full string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(absRoot, full)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			s.logger.Warn("scanner.walk.error", "path", rel, "err", err)
			report.SkipReasons[SkipWalkError]++
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", rel, err))
			if d != nil && d.IsDir() && rel != "." {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.SkipDir(rel) {
				report.SkipReasons[SkipExcludedDir]++
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if !SupportedExtension(rel) {
			report.SkipReasons[SkipUnsupportedExt]++
			return nil
		}
		if s.excluded(rel) {
			report.SkipReasons[SkipExcluded]++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn("scanner.stat.error", "path", rel, "err", err)
			report.SkipReasons[SkipReadError]++
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", rel, err))
			return nil
		}

		pending = append(pending, pendingFile{
			rel:     rel,
			full:    full,
			size:    info.Size(),
			modTime: info.ModTime(),
		})
		return nil
	})

	sort.Slice(pending, func(i, j int) bool { return pending[i].rel < pending[j].rel })
	return pending
}

// readAll loads file contents with a bounded number of concurrent readers.
func (s *Scanner) readAll(ctx context.Context, pending []pendingFile, report *Report) (map[string]project.ProjectFile, error) {
	results := make([]*project.ProjectFile, len(pending))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range pending {
		i, p := i, pending[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if p.size > s.maxFileSize {
				f := newProjectFile(p.rel, "", p.size, p.modTime, s.maxFileSize)
				results[i] = &f
				mu.Lock()
				report.SkipReasons[TooLarge]++
				mu.Unlock()
				s.logger.Debug("scanner.file.placeholder", "path", p.rel, "size", p.size, "limit", s.maxFileSize)
				s.notify(p.rel)
				return nil
			}

			data, err := os.ReadFile(p.full) //nolint:gosec // G304: path comes from walking the project root
			if err != nil {
				s.logger.Warn("scanner.read.error", "path", p.rel, "err", err)
				mu.Lock()
				report.SkipReasons[SkipReadError]++
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", p.rel, err))
				mu.Unlock()
				return nil
			}

			f := newProjectFile(p.rel, string(data), int64(len(data)), p.modTime, s.maxFileSize)
			results[i] = &f
			s.notify(p.rel)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	files := make(map[string]project.ProjectFile, len(pending))
	for _, f := range results {
		if f != nil {
			files[f.Path] = *f
		}
	}
	return files, nil
}

func (s *Scanner) notify(rel string) {
	if s.onFile != nil {
		s.onFile(rel)
	}
}
