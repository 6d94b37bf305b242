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

// Package testing provides fixtures shared by the context engine tests.
//
// Most tests need a small project on disk or an in-memory file set:
//
//	func TestMyFeature(t *testing.T) {
//	    root := enginetest.WriteProject(t, map[string]string{
//	        "src/a.ts": "import { b } from './b'",
//	        "src/b.ts": "export const b = 1",
//	    })
//	    // scan root...
//	}
//
// Files written with WriteProject live under t.TempDir and are removed when
// the test finishes. NewFile and Files build project.ProjectFile values
// directly for tests that do not touch the filesystem.
package testing
