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

// Package selector chooses which project files go into a context window.
//
// Selection starts from the current file (always included), collects
// candidates from the relationship graph around it and from a keyword search
// over paths and contents, ranks them, and fills the token budget greedily.
// Tokens are estimated from byte length. When the result still overflows and
// compression is enabled, Compress truncates every oversized file by the
// same ratio.
package selector
