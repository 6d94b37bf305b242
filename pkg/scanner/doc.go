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

// Package scanner discovers the files of a project for the context engine.
//
// A scan walks the project root, prunes excluded directories (version
// control, build output, caches, editor and OS metadata), keeps only files
// whose extension is in the fixed language table, and reads their contents
// with a bounded pool of readers:
//
//	s := scanner.New(scanner.Options{Workers: 8}, logger)
//	files, report, err := s.Scan(ctx, "/path/to/project")
//
// Files larger than the size cap (1 MiB by default) are not read. They are
// tracked with a placeholder content string so that they still show up in
// statistics and keyword scoring by path.
//
// Unreadable files and directories are logged, counted in the Report and
// skipped. A scan only fails when the root itself is unusable or the context
// is cancelled.
package scanner
