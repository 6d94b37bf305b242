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

// Package relations finds import, inheritance and reference edges between
// project files.
//
// Detection is heuristic. Imports are matched per language family (ES
// modules and CommonJS, Python, C includes, Go, PHP, JVM imports, Ruby
// require_relative) and resolved either against the importing file's
// directory or, for package-style specifiers, against the segments of every
// known path. Inheritance edges point at the first file declaring the parent
// class; reference edges point at the first file declaring a called
// function. Unresolvable names produce no edge.
//
// In ModeTreeSitter, imports of Go, Python, JavaScript and TypeScript files
// are read from a syntax tree instead of text patterns. The output shape is
// the same in both modes.
package relations
