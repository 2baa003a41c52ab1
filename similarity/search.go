// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package similarity

import (
	"encoding/binary"
	"sort"

	"github.com/albumarchitect/core/hashes"
)

const (
	// DefaultThreshold is the similarity cutoff get_similars_of applies
	// when the caller does not specify one.
	DefaultThreshold = 0.8
	// DefaultMaxNeighbours bounds the number of ANN candidates returned
	// when the caller does not specify one.
	DefaultMaxNeighbours = 100
)

// Match pairs a candidate PhotoId with its Hamming distance from the query.
type Match struct {
	PhotoId PhotoId
	Hamming int
}

// Search is a read-only, sealed view over an exact-match fingerprint index
// and an ANN forest, produced by Builder.Build.
type Search struct {
	forest *annForest
	exact  []exactEntry
	phash  map[PhotoId]uint64
}

// GetDuplicatedPhotos scans the sorted exact-match vector for runs of two
// or more consecutive equal fingerprints, returning each run as one
// duplicate group in vector order.
func (s *Search) GetDuplicatedPhotos() [][]PhotoId {
	var groups [][]PhotoId

	i := 0
	for i < len(s.exact) {
		j := i + 1
		for j < len(s.exact) && s.exact[j].fingerprint == s.exact[i].fingerprint {
			j++
		}
		if j-i >= 2 {
			group := make([]PhotoId, 0, j-i)
			for k := i; k < j; k++ {
				group = append(group, s.exact[k].id)
			}
			groups = append(groups, group)
		}
		i = j
	}
	return groups
}

// GetDuplicatesOf returns every PhotoId sharing photo's average-hash
// fingerprint, excluding none (the result includes photo's own id if
// present). Returns empty if the hash is unavailable or has no match.
func (s *Search) GetDuplicatesOf(p hashSource) []PhotoId {
	avg, err := p.GetImageHash(hashes.AverageHash)
	if err != nil {
		return nil
	}
	fingerprint := hashes.FingerprintU64(avg)

	lo := sort.Search(len(s.exact), func(i int) bool {
		return s.exact[i].fingerprint >= fingerprint
	})

	var out []PhotoId
	for i := lo; i < len(s.exact) && s.exact[i].fingerprint == fingerprint; i++ {
		out = append(out, s.exact[i].id)
	}
	return out
}

// GetSimilarsOf queries the ANN forest for photo's perceptual hash,
// returning up to maxK candidates whose similarity (64-hamming)/64
// exceeds threshold, ordered by ascending Hamming distance.
func (s *Search) GetSimilarsOf(p hashSource, threshold float64, maxK int) []Match {
	ph, err := p.GetImageHash(hashes.PHash)
	if err != nil {
		return nil
	}
	return s.similarsOfHash(binary.BigEndian.Uint64(ph), threshold, maxK)
}

func (s *Search) similarsOfHash(query uint64, threshold float64, maxK int) []Match {
	candidates := s.forest.query(query)

	matches := make([]Match, 0, len(candidates))
	for _, id := range candidates {
		d := hamming64(query, s.phash[id])
		similarity := float64(64-d) / 64.0
		if similarity <= threshold {
			continue
		}
		matches = append(matches, Match{PhotoId: id, Hamming: d})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Hamming < matches[j].Hamming })
	if len(matches) > maxK {
		matches = matches[:maxK]
	}
	return matches
}
