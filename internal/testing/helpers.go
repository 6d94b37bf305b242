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

package testing

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ctxengine/pkg/project"
)

// Now is the fixed modification time used by in-memory fixtures.
var Now = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// WriteProject creates a temporary project tree and returns its root.
// Keys are slash separated paths relative to the root.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// WriteFile writes a single file below root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	return full
}

// RemoveFile deletes a file below root.
func RemoveFile(t *testing.T, root, rel string) {
	t.Helper()
	require.NoError(t, os.Remove(filepath.Join(root, filepath.FromSlash(rel))))
}

// NewFile builds an in-memory project file stamped with Now.
func NewFile(path, language, content string) project.ProjectFile {
	return project.ProjectFile{
		Path:         path,
		Content:      content,
		Language:     language,
		Size:         int64(len(content)),
		LastModified: Now,
	}
}

// Files builds a file map from path/content pairs. The language is taken
// from a small extension table that covers the fixtures used in tests.
func Files(contents map[string]string) map[string]project.ProjectFile {
	out := make(map[string]project.ProjectFile, len(contents))
	for p, c := range contents {
		out[p] = NewFile(p, fixtureLanguage(p), c)
	}
	return out
}

// SortedPaths returns the keys of a file map in order.
func SortedPaths(files map[string]project.ProjectFile) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func fixtureLanguage(p string) string {
	switch filepath.Ext(p) {
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx":
		return "javascript"
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".java":
		return "java"
	case ".rb":
		return "ruby"
	case ".php":
		return "php"
	case ".c", ".h":
		return "c"
	case ".cpp", ".hpp":
		return "cpp"
	case ".cs":
		return "csharp"
	case ".kt":
		return "kotlin"
	case ".rs":
		return "rust"
	case ".md":
		return "markdown"
	}
	return project.DefaultLanguage
}
