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

// Package engine is the context engine's public façade.
//
// A Manager scans a project once with InitializeProject, keeps the resulting
// graph as an immutable snapshot, and answers queries against it:
//
//	m, err := engine.New(engine.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	if _, err := m.InitializeProject(ctx, root); err != nil {
//	    return err
//	}
//	window, err := m.GetContext(ctx, selector.Request{
//	    Content:     "why does login fail",
//	    CurrentFile: "src/auth/login.ts",
//	}, selector.Options{Compression: true})
//
// # Snapshots
//
// Every refresh and every AddFile, UpdateFile or RemoveFile builds a new
// snapshot and swaps it in atomically. Readers never lock; a query started
// before a swap finishes against the snapshot it loaded. Incremental updates
// do not recompute relationships of the changed file; RemoveFile drops the
// relationships that touch it. A full refresh recomputes everything.
//
// # Window cache
//
// Context windows are cached by a hash of the request type, the first 100
// characters of its content, the current file, the model and the explicit
// options. The cache keeps the most recently inserted entries and is emptied
// whenever the snapshot changes.
//
// # Errors
//
// Queries and mutations made before the first successful InitializeProject
// return ErrNotInitialized. Unknown paths return ErrFileNotFound.
package engine
