// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package similarity

import (
	"testing"

	"github.com/albumarchitect/core/hashes"
)

// fakePhoto is a minimal hashSource for tests that don't need a real
// decoded image.
type fakePhoto struct {
	avg   []byte
	phash []byte
	err   error
}

func (f fakePhoto) GetImageHash(alg hashes.ImageAlgorithm) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	switch alg {
	case hashes.AverageHash:
		return f.avg, nil
	case hashes.PHash:
		return f.phash, nil
	}
	return nil, nil
}

func bytesOf(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

func TestAddPhotoAssignsContiguousIds(t *testing.T) {
	b := NewBuilder()
	id0 := b.AddPhoto(fakePhoto{avg: bytesOf(1), phash: bytesOf(100)})
	id1 := b.AddPhoto(fakePhoto{avg: bytesOf(2), phash: bytesOf(200)})
	if id0 != 0 || id1 != 1 {
		t.Fatalf("ids = %d, %d, want 0, 1", id0, id1)
	}
}

func TestAddPhotoSentinelOnHashFailure(t *testing.T) {
	b := NewBuilder()
	id := b.AddPhoto(fakePhoto{err: errBoom})
	if id != NoPhotoId {
		t.Fatalf("id = %d, want NoPhotoId", id)
	}
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }

func TestGetDuplicatedPhotosFindsRuns(t *testing.T) {
	b := NewBuilder()
	b.AddPhoto(fakePhoto{avg: bytesOf(5), phash: bytesOf(1)})
	b.AddPhoto(fakePhoto{avg: bytesOf(5), phash: bytesOf(2)})
	b.AddPhoto(fakePhoto{avg: bytesOf(9), phash: bytesOf(3)})

	s := b.Build()
	groups := s.GetDuplicatedPhotos()
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	if len(groups[0]) != 2 {
		t.Fatalf("group size = %d, want 2", len(groups[0]))
	}
}

func TestGetDuplicatesOfMatchesFingerprint(t *testing.T) {
	b := NewBuilder()
	b.AddPhoto(fakePhoto{avg: bytesOf(5), phash: bytesOf(1)})
	b.AddPhoto(fakePhoto{avg: bytesOf(5), phash: bytesOf(2)})
	b.AddPhoto(fakePhoto{avg: bytesOf(9), phash: bytesOf(3)})
	s := b.Build()

	dups := s.GetDuplicatesOf(fakePhoto{avg: bytesOf(5), phash: bytesOf(1)})
	if len(dups) != 2 {
		t.Fatalf("dups = %d, want 2", len(dups))
	}

	none := s.GetDuplicatesOf(fakePhoto{avg: bytesOf(42), phash: bytesOf(1)})
	if len(none) != 0 {
		t.Fatalf("dups = %d, want 0", len(none))
	}
}

func TestGetSimilarsOfFindsNearbyHash(t *testing.T) {
	b := NewBuilder()
	base := uint64(0x0F0F0F0F0F0F0F0F)
	near := base ^ 0x1 // one bit off
	far := ^base       // maximal Hamming distance

	idNear := b.AddPhoto(fakePhoto{avg: bytesOf(1), phash: bytesOf(near)})
	idFar := b.AddPhoto(fakePhoto{avg: bytesOf(2), phash: bytesOf(far)})
	s := b.Build()

	matches := s.GetSimilarsOf(fakePhoto{avg: bytesOf(0), phash: bytesOf(base)}, DefaultThreshold, DefaultMaxNeighbours)

	found := map[PhotoId]bool{}
	for _, m := range matches {
		found[m.PhotoId] = true
	}
	if !found[idNear] {
		t.Fatalf("expected near photo %d in matches %v", idNear, matches)
	}
	if found[idFar] {
		t.Fatalf("far photo %d should not pass the similarity threshold", idFar)
	}
}

func TestGetSimilarsOfEmptyOnHashFailure(t *testing.T) {
	b := NewBuilder()
	b.AddPhoto(fakePhoto{avg: bytesOf(1), phash: bytesOf(2)})
	s := b.Build()

	matches := s.GetSimilarsOf(fakePhoto{err: errBoom}, DefaultThreshold, DefaultMaxNeighbours)
	if matches != nil {
		t.Fatalf("matches = %v, want nil", matches)
	}
}
