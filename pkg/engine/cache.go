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

import (
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/kraklabs/ctxengine/pkg/selector"
)

// signaturePrefixRunes is how much of the request content takes part in the
// cache signature.
const signaturePrefixRunes = 100

// requestSignature hashes the parts of a request that decide its window:
// type, the start of the content, current file, model, explicit budget and
// compression flag.
func requestSignature(req selector.Request, opts selector.Options) uint64 {
	d := xxhash.New()
	for _, part := range []string{
		req.Type,
		runePrefix(req.Content, signaturePrefixRunes),
		req.CurrentFile,
		req.Model,
		strconv.Itoa(opts.MaxTokens),
		strconv.FormatBool(opts.Compression),
	} {
		_, _ = d.WriteString(part)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func runePrefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// windowCache keeps the most recently inserted context windows.
//
// clear bumps a generation counter. A put carrying an older generation is
// dropped, so a selection computed against a replaced snapshot never lands
// in the cache.
type windowCache struct {
	mu      sync.Mutex
	limit   int
	gen     uint64
	order   []uint64
	entries map[uint64]*selector.ContextWindow
}

func newWindowCache(limit int) *windowCache {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	return &windowCache{limit: limit, entries: make(map[uint64]*selector.ContextWindow)}
}

func (c *windowCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *windowCache) get(key uint64) (*selector.ContextWindow, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.entries[key]
	return w, ok
}

func (c *windowCache) put(key uint64, w *selector.ContextWindow, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}

	if _, ok := c.entries[key]; ok {
		for i, k := range c.order {
			if k == key {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.entries[key] = w
	c.order = append(c.order, key)

	for len(c.order) > c.limit {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	return true
}

func (c *windowCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.order = nil
	c.entries = make(map[uint64]*selector.ContextWindow)
}

func (c *windowCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
