// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package hashes

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestMD5AndSHA256KnownAnswer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "known.bin")
	content := []byte("known-answer-test-vector")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	md5sum, err := MD5File(path)
	if err != nil {
		t.Fatalf("MD5File: %v", err)
	}
	if len(md5sum) != 32 {
		t.Fatalf("MD5 digest length = %d, want 32", len(md5sum))
	}
	if want := "2941b281821779d5dc98ae1bd75cef73"; md5sum != want {
		t.Fatalf("MD5 = %s, want %s", md5sum, want)
	}

	sha, err := SHA256File(path)
	if err != nil {
		t.Fatalf("SHA256File: %v", err)
	}
	if len(sha) != 64 {
		t.Fatalf("SHA256 digest length = %d, want 64", len(sha))
	}
	if want := "e5b749fcc049299bca075120fa45ddc6b3bd6a9608e0b93ce02503cd5ca846dd"; sha != want {
		t.Fatalf("SHA256 = %s, want %s", sha, want)
	}

	// Determinism: hashing again yields the same digest.
	md5Again, _ := MD5File(path)
	if md5Again != md5sum {
		t.Fatalf("MD5 is not deterministic across calls")
	}
}

func TestHashFileDispatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	os.WriteFile(path, []byte("x"), 0o644)

	if _, err := HashFile(path, MD5); err != nil {
		t.Fatalf("HashFile(md5): %v", err)
	}
	if _, err := HashFile(path, SHA256); err != nil {
		t.Fatalf("HashFile(sha256): %v", err)
	}
	if _, err := HashFile(path, "bogus"); err == nil {
		t.Fatalf("HashFile accepted an unknown algorithm")
	}
}

func solidImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPerceptualHashesAreStable(t *testing.T) {
	img := solidImage(color.RGBA{R: 128, G: 64, B: 200, A: 255})

	a1, err := AverageHashOf(img)
	if err != nil {
		t.Fatalf("AverageHashOf: %v", err)
	}
	a2, err := AverageHashOf(img)
	if err != nil {
		t.Fatalf("AverageHashOf: %v", err)
	}
	if Hamming(a1, a2) != 0 {
		t.Fatalf("identical images produced different average hashes")
	}

	p1, err := PHashOf(img)
	if err != nil {
		t.Fatalf("PHashOf: %v", err)
	}
	if len(p1) != 8 {
		t.Fatalf("phash length = %d, want 8", len(p1))
	}
}

func TestHammingRange(t *testing.T) {
	a := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	b := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	if got := Hamming(a, b); got != 64 {
		t.Fatalf("Hamming(all-zero, all-one) = %d, want 64", got)
	}
	if got := Hamming(a, a); got != 0 {
		t.Fatalf("Hamming(a, a) = %d, want 0", got)
	}
}

func TestFingerprintU64(t *testing.T) {
	buf := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	if got := FingerprintU64(buf); got != 1 {
		t.Fatalf("FingerprintU64 = %d, want 1", got)
	}
}
