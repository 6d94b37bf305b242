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

import "errors"

var (
	// ErrNotInitialized is returned by every query and mutation made before
	// the first successful InitializeProject.
	ErrNotInitialized = errors.New("context engine not initialized")

	// ErrFileNotFound is returned for paths that are not part of the
	// current snapshot.
	ErrFileNotFound = errors.New("file not found in project")

	// ErrInvalidPath is returned for empty paths and paths outside the
	// project root.
	ErrInvalidPath = errors.New("invalid project path")
)
