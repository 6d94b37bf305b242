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

// Package watch keeps a context engine in step with the file system.
//
// A Syncer watches every directory under a project root with fsnotify and
// forwards file writes, creations and removals to a Sink, which is usually
// an *engine.Manager. Files are filtered with the same rules as a full
// scan, and writes that leave the content unchanged are dropped.
//
// Incremental updates replace file content only. Relationships are rebuilt
// by the next full refresh.
package watch
