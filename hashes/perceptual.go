// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package hashes

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

// ImageAlgorithm identifies a perceptual hash algorithm.
type ImageAlgorithm string

const (
	AverageHash ImageAlgorithm = "average_hash"
	PHash       ImageAlgorithm = "p_hash"
)

// AverageHashOf computes the standard aHash procedure over pixels: downscale
// to 8x8, grayscale, threshold at the mean. The result is an 8-byte buffer
// (64 bits, big-endian).
func AverageHashOf(pixels image.Image) ([]byte, error) {
	h, err := goimagehash.AverageHash(pixels)
	if err != nil {
		return nil, fmt.Errorf("hashes: average hash: %w", err)
	}
	return uint64ToBytes(h.GetHash()), nil
}

// PHashOf computes the standard pHash procedure over pixels: 32x32 DCT, the
// top-left 8x8 coefficients minus DC, thresholded at the median. The result
// is an 8-byte buffer (64 bits, big-endian).
func PHashOf(pixels image.Image) ([]byte, error) {
	h, err := goimagehash.PerceptionHash(pixels)
	if err != nil {
		return nil, fmt.Errorf("hashes: phash: %w", err)
	}
	return uint64ToBytes(h.GetHash()), nil
}

// ImageHashOf dispatches to AverageHashOf or PHashOf by ImageAlgorithm.
func ImageHashOf(pixels image.Image, alg ImageAlgorithm) ([]byte, error) {
	switch alg {
	case AverageHash:
		return AverageHashOf(pixels)
	case PHash:
		return PHashOf(pixels)
	default:
		return nil, fmt.Errorf("hashes: unknown image algorithm %q", alg)
	}
}

// FingerprintU64 packs an 8-byte average-hash buffer big-endian into a u64,
// the compact form the exact-match index sorts and compares.
func FingerprintU64(avgHash []byte) uint64 {
	return binary.BigEndian.Uint64(pad8(avgHash))
}

// Hamming returns the number of differing bits between two 8-byte
// perceptual hash buffers, in the range [0, 64].
func Hamming(a, b []byte) int {
	ua := binary.BigEndian.Uint64(pad8(a))
	ub := binary.BigEndian.Uint64(pad8(b))
	x := ua ^ ub
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}

func uint64ToBytes(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func pad8(b []byte) []byte {
	if len(b) == 8 {
		return b
	}
	out := make([]byte, 8)
	copy(out[8-len(b):], b)
	return out
}
