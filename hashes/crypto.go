// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

// Package hashes provides the pure-function hash primitives the Photo layer
// calls: cryptographic digests over raw file bytes for exact identity, and
// perceptual hashes over a decoded pixel buffer for similarity. These are
// the out-of-scope "external collaborator" contracts from the system
// overview — every algorithm here is a well-known, already-specified
// procedure, so the implementation leans on the standard library for the
// cryptographic half (crypto/md5, crypto/sha256 — no ecosystem package
// displaces these anywhere in the retrieval pack) and on
// github.com/corona10/goimagehash, the purpose-built perceptual hash
// library, for the other half.
package hashes

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// chunkSize is the buffer size used to stream a file through a hasher.
const chunkSize = 4096

// Algorithm identifies a cryptographic digest algorithm.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// MD5File returns the lowercase hex-encoded MD5 digest of path's contents.
func MD5File(path string) (string, error) {
	return hashFile(path, md5.New())
}

// SHA256File returns the lowercase hex-encoded SHA-256 digest of path's
// contents.
func SHA256File(path string) (string, error) {
	return hashFile(path, sha256.New())
}

// HashFile dispatches to MD5File or SHA256File by Algorithm, mirroring the
// closed dispatch-table idiom the design notes call for in place of virtual
// hasher dispatch.
func HashFile(path string, alg Algorithm) (string, error) {
	switch alg {
	case MD5:
		return MD5File(path)
	case SHA256:
		return SHA256File(path)
	default:
		return "", fmt.Errorf("hashes: unknown algorithm %q", alg)
	}
}

func hashFile(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hashes: open %s: %w", path, err)
	}
	defer f.Close()

	// Wrapping f hides (*os.File).WriteTo, which io.CopyBuffer would
	// otherwise use in place of buf.
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{f}, buf); err != nil {
		return "", fmt.Errorf("hashes: read %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
