// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package pathgraph

import (
	"strings"

	"github.com/zeebo/blake3"
)

// lookupCache is an advisory, in-memory index from a hash of a segment list
// to the NodeID it resolved to. It speeds up repeated get_node calls for the
// same path (such as repeated FileTree.GetElement lookups) but is never
// consulted for correctness: a cache miss always falls
// back to a real walk, and any mutation that could invalidate a name clears
// the whole cache rather than trying to track which entries are stale.
//
// Keys are BLAKE3-256 hashes of the segment list joined by a NUL separator,
// a content-addressing primitive repurposed here as a cache key rather
// than an identity.
type lookupCache struct {
	entries map[[32]byte]NodeID
}

func newLookupCache() *lookupCache {
	return &lookupCache{entries: make(map[[32]byte]NodeID)}
}

func segmentsKey(segments []string) [32]byte {
	// A NUL byte cannot appear in a filename on any of the platforms this
	// package targets, so it is a safe, unambiguous separator.
	joined := strings.Join(segments, "\x00")
	return blake3.Sum256([]byte(joined))
}

func (c *lookupCache) get(segments []string) (NodeID, bool) {
	id, ok := c.entries[segmentsKey(segments)]
	return id, ok
}

func (c *lookupCache) put(segments []string, id NodeID) {
	c.entries[segmentsKey(segments)] = id
}

func (c *lookupCache) clear() {
	c.entries = make(map[[32]byte]NodeID)
}
