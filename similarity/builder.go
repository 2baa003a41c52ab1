// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

// Package similarity assigns dense PhotoIds to ingested photos, accumulates
// an exact-match fingerprint index and an approximate-nearest-neighbour
// forest, and answers duplicate/similar queries over the sealed pair.
package similarity

import (
	"encoding/binary"
	"math"
	"sort"
	"sync"

	"github.com/albumarchitect/core/hashes"
)

// PhotoId is a dense, builder-local, zero-based identifier.
type PhotoId uint32

// NoPhotoId is the sentinel value add_photo returns when a photo's hashes
// are unavailable and nothing was ingested.
const NoPhotoId PhotoId = math.MaxUint32

// hashSource is the subset of photo.Photo the builder needs, kept narrow
// so tests can ingest fakes without constructing a real FileTree.
type hashSource interface {
	GetImageHash(alg hashes.ImageAlgorithm) ([]byte, error)
}

type exactEntry struct {
	fingerprint uint64
	id          PhotoId
}

// Builder accumulates photos from possibly-concurrent goroutines. All
// mutable state is guarded by a single mutex, matching the "assign id,
// insert into ANN, append to exact vector" contract as one critical
// section per photo.
type Builder struct {
	mu     sync.Mutex
	nextID PhotoId
	forest *annForest
	exact  []exactEntry
	phash  map[PhotoId]uint64
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{forest: newAnnForest(), phash: make(map[PhotoId]uint64)}
}

// AddPhoto pulls both perceptual hashes from photo. If either is
// unavailable it ingests nothing and returns NoPhotoId. Otherwise it
// assigns the next PhotoId, inserts the pHash into the ANN forest, and
// appends the aHash fingerprint to the exact-match vector.
func (b *Builder) AddPhoto(p hashSource) PhotoId {
	avg, err := p.GetImageHash(hashes.AverageHash)
	if err != nil {
		return NoPhotoId
	}
	ph, err := p.GetImageHash(hashes.PHash)
	if err != nil {
		return NoPhotoId
	}

	fingerprint := hashes.FingerprintU64(avg)
	phashU64 := binary.BigEndian.Uint64(ph)

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.forest.insert(phashU64, id)
	b.exact = append(b.exact, exactEntry{fingerprint: fingerprint, id: id})
	b.phash[id] = phashU64
	return id
}

// Build finalises the ANN forest (already sealed after construction; no
// further inserts are possible once Build is called) and sorts the
// exact-match vector ascending by fingerprint. It consumes the builder.
func (b *Builder) Build() *Search {
	b.mu.Lock()
	defer b.mu.Unlock()

	sort.Slice(b.exact, func(i, j int) bool {
		return b.exact[i].fingerprint < b.exact[j].fingerprint
	})

	s := &Search{forest: b.forest, exact: b.exact, phash: b.phash}
	b.forest = nil
	b.exact = nil
	b.phash = nil
	return s
}
