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
	"path/filepath"
	"strings"

	"github.com/kraklabs/ctxengine/pkg/project"
)

// languageByExt is the fixed extension table. Its keys are also the
// allow-list of extensions considered during a scan.
var languageByExt = map[string]string{
	".js":     "javascript",
	".jsx":    "javascript",
	".mjs":    "javascript",
	".cjs":    "javascript",
	".ts":     "typescript",
	".tsx":    "typescript",
	".py":     "python",
	".go":     "go",
	".java":   "java",
	".kt":     "kotlin",
	".scala":  "scala",
	".rb":     "ruby",
	".php":    "php",
	".rs":     "rust",
	".c":      "c",
	".h":      "c",
	".cpp":    "cpp",
	".cc":     "cpp",
	".hpp":    "cpp",
	".cs":     "csharp",
	".swift":  "swift",
	".vue":    "vue",
	".svelte": "svelte",
	".html":   "html",
	".css":    "css",
	".scss":   "scss",
	".json":   "json",
	".yaml":   "yaml",
	".yml":    "yaml",
	".toml":   "toml",
	".md":     "markdown",
	".sql":    "sql",
	".sh":     "bash",
	".proto":  "protobuf",
	".txt":    "text",
}

// DetectLanguage maps a path to its language tag. Unknown extensions map to
// "text".
func DetectLanguage(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return project.DefaultLanguage
}

// SupportedExtension reports whether files with this path's extension are
// picked up by a scan.
func SupportedExtension(path string) bool {
	_, ok := languageByExt[strings.ToLower(filepath.Ext(path))]
	return ok
}
