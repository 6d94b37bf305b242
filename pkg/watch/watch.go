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

package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// Sink receives file changes, keyed by slash separated paths relative to
// the project root.
type Sink interface {
	UpdateFile(path, content string) error
	RemoveFile(path string) error
}

// Filter decides which paths are tracked. *scanner.Scanner implements it.
type Filter interface {
	AcceptFile(rel string) bool
	SkipDir(rel string) bool
}

type fileState struct {
	hash   uint64
	hashed bool
}

// Syncer forwards file system events under a root to a Sink.
type Syncer struct {
	root   string
	filter Filter
	sink   Sink
	logger *slog.Logger
	fsw    *fsnotify.Watcher

	mu      sync.Mutex
	tracked map[string]fileState
}

// New watches every directory under root that filter does not skip.
func New(root string, filter Filter, sink Sink, logger *slog.Logger) (*Syncer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	s := &Syncer{
		root:    absRoot,
		filter:  filter,
		sink:    sink,
		logger:  logger,
		fsw:     fsw,
		tracked: make(map[string]fileState),
	}
	if err := fsw.Add(absRoot); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", absRoot, err)
	}
	for _, rel := range s.addTree(absRoot) {
		s.tracked[rel] = fileState{}
	}

	logger.Info("watch.started", "root", absRoot, "dirs", len(fsw.WatchList()), "files", len(s.tracked))
	return s, nil
}

// Run forwards events until ctx is done or the watcher is closed. It closes
// the watcher on return.
func (s *Syncer) Run(ctx context.Context) error {
	defer func() { _ = s.fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-s.fsw.Events:
			if !ok {
				return nil
			}
			s.handle(ev)
		case err, ok := <-s.fsw.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch.error", "err", err)
		}
	}
}

// Close stops the watcher. It is safe to call after Run returned.
func (s *Syncer) Close() error {
	return s.fsw.Close()
}

func (s *Syncer) handle(ev fsnotify.Event) {
	rel, ok := s.rel(ev.Name)
	if !ok {
		return
	}

	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil {
			// Gone before we got to it; the Remove event follows.
			return
		}
		if !info.IsDir() {
			s.update(rel, ev.Name)
			return
		}
		if ev.Has(fsnotify.Create) && !s.filter.SkipDir(rel) {
			// Files created before the watch was added produce no events.
			for _, child := range s.addTree(ev.Name) {
				s.update(child, filepath.Join(s.root, filepath.FromSlash(child)))
			}
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		s.remove(rel)
	}
}

// addTree watches dir and its subdirectories and returns the accepted files
// found under it.
func (s *Syncer) addTree(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		rel, ok := s.rel(p)
		if !ok {
			return nil
		}
		if d.IsDir() {
			if p != s.root && s.filter.SkipDir(rel) {
				return fs.SkipDir
			}
			if p != s.root {
				if err := s.fsw.Add(p); err != nil {
					s.logger.Warn("watch.add.failed", "dir", rel, "err", err)
				}
			}
			return nil
		}
		if s.filter.AcceptFile(rel) {
			files = append(files, rel)
		}
		return nil
	})
	return files
}

func (s *Syncer) update(rel, abs string) {
	if !s.filter.AcceptFile(rel) {
		return
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		s.logger.Debug("watch.read.failed", "path", rel, "err", err)
		return
	}
	content := string(data)
	sum := xxhash.Sum64String(content)

	s.mu.Lock()
	prev, seen := s.tracked[rel]
	if seen && prev.hashed && prev.hash == sum {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.sink.UpdateFile(rel, content); err != nil {
		s.logger.Warn("watch.update.failed", "path", rel, "err", err)
		return
	}

	s.mu.Lock()
	s.tracked[rel] = fileState{hash: sum, hashed: true}
	s.mu.Unlock()
	s.logger.Debug("watch.file.updated", "path", rel, "size", len(data))
}

// remove forgets rel and, when rel was a directory, every file below it.
func (s *Syncer) remove(rel string) {
	prefix := rel + "/"

	s.mu.Lock()
	var gone []string
	for p := range s.tracked {
		if p == rel || strings.HasPrefix(p, prefix) {
			gone = append(gone, p)
		}
	}
	for _, p := range gone {
		delete(s.tracked, p)
	}
	s.mu.Unlock()

	sort.Strings(gone)
	for _, p := range gone {
		if err := s.sink.RemoveFile(p); err != nil {
			s.logger.Debug("watch.remove.failed", "path", p, "err", err)
			continue
		}
		s.logger.Debug("watch.file.removed", "path", p)
	}
}

// Tracked returns the paths the syncer currently knows about, sorted.
func (s *Syncer) Tracked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tracked))
	for p := range s.tracked {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (s *Syncer) rel(p string) (string, bool) {
	r, err := filepath.Rel(s.root, p)
	if err != nil {
		return "", false
	}
	r = filepath.ToSlash(r)
	if r == ".." || strings.HasPrefix(r, "../") {
		return "", false
	}
	if r == "." {
		return "", true
	}
	return r, true
}
