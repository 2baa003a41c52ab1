// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package similarity

import (
	"math/bits"
	"math/rand"

	"github.com/RoaringBitmap/roaring"
)

// numTrees, narrowProjection and wideProjection follow the "2 x 8 = 16 trees" sizing from the
// design notes: 8 trees use a 10-bit projection, 8 use a 14-bit
// projection, trading recall for bucket selectivity across the pair.
const (
	numTrees          = 16
	narrowProjection  = 10
	wideProjection    = 14
	treesPerWidth     = numTrees / 2
	annForestRandSeed = 0x616c62756d
)

// annTree is one random-projection tree: a fixed subset of the 64 hash bit
// positions, and a map from the projected key to the set of PhotoIds whose
// hash projects to that key.
type annTree struct {
	bitPositions []int
	buckets      map[uint64]*roaring.Bitmap
}

func newAnnTree(rng *rand.Rand, width int) *annTree {
	positions := rng.Perm(64)[:width]
	return &annTree{
		bitPositions: positions,
		buckets:      make(map[uint64]*roaring.Bitmap),
	}
}

func (t *annTree) project(hash uint64) uint64 {
	var key uint64
	for i, pos := range t.bitPositions {
		bit := (hash >> uint(pos)) & 1
		key |= bit << uint(i)
	}
	return key
}

func (t *annTree) insert(hash uint64, id PhotoId) {
	key := t.project(hash)
	b, ok := t.buckets[key]
	if !ok {
		b = roaring.New()
		t.buckets[key] = b
	}
	b.Add(uint32(id))
}

func (t *annTree) candidates(hash uint64) *roaring.Bitmap {
	key := t.project(hash)
	if b, ok := t.buckets[key]; ok {
		return b
	}
	return roaring.New()
}

// annForest is the sealed ANN index: numTrees annTrees built with a
// deterministic PRNG, queried by unioning each tree's matching bucket and
// ranking the union by true Hamming distance.
type annForest struct {
	trees []*annTree
}

func newAnnForest() *annForest {
	rng := rand.New(rand.NewSource(annForestRandSeed))
	f := &annForest{trees: make([]*annTree, 0, numTrees)}
	for i := 0; i < treesPerWidth; i++ {
		f.trees = append(f.trees, newAnnTree(rng, narrowProjection))
	}
	for i := 0; i < treesPerWidth; i++ {
		f.trees = append(f.trees, newAnnTree(rng, wideProjection))
	}
	return f
}

func (f *annForest) insert(hash uint64, id PhotoId) {
	for _, t := range f.trees {
		t.insert(hash, id)
	}
}

// query returns candidate PhotoIds whose hash falls in the same bucket as
// hash in at least one tree, deduplicated.
func (f *annForest) query(hash uint64) []PhotoId {
	union := roaring.New()
	for _, t := range f.trees {
		union.Or(t.candidates(hash))
	}

	out := make([]PhotoId, 0, union.GetCardinality())
	it := union.Iterator()
	for it.HasNext() {
		out = append(out, PhotoId(it.Next()))
	}
	return out
}

// hamming64 returns the bit-difference count between two 64-bit hashes.
func hamming64(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
