// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package imageloader

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/albumarchitect/core/hashes"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestLoadDecodesPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")
	writeTestPNG(t, path)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.GetWidth() != 16 || img.GetHeight() != 16 {
		t.Fatalf("dimensions = %dx%d, want 16x16", img.GetWidth(), img.GetHeight())
	}
	if img.Format() != "png" {
		t.Fatalf("Format() = %q, want png", img.Format())
	}
}

func TestCheckPathIsImage(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "test.png")
	writeTestPNG(t, imgPath)

	notImgPath := filepath.Join(dir, "test.txt")
	if err := os.WriteFile(notImgPath, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if !CheckPathIsImage(imgPath) {
		t.Fatalf("CheckPathIsImage(png) = false")
	}
	if CheckPathIsImage(notImgPath) {
		t.Fatalf("CheckPathIsImage(txt) = true")
	}
	if CheckPathIsImage(filepath.Join(dir, "missing.png")) {
		t.Fatalf("CheckPathIsImage(missing) = true")
	}
}

func TestGetMetadataWithoutExifIsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")
	writeTestPNG(t, path)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	meta := img.GetMetadata()
	if len(meta) != 0 {
		t.Fatalf("GetMetadata() on a PNG (no EXIF) = %v, want empty", meta)
	}
}

func TestGetHashAndImageHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.png")
	writeTestPNG(t, path)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	h, err := img.GetHash(hashes.SHA256)
	if err != nil {
		t.Fatalf("GetHash: %v", err)
	}
	if len(h) != 64 {
		t.Fatalf("sha256 hex length = %d, want 64", len(h))
	}

	ih, err := img.GetImageHash(hashes.AverageHash)
	if err != nil {
		t.Fatalf("GetImageHash: %v", err)
	}
	if len(ih) != 8 {
		t.Fatalf("image hash length = %d, want 8", len(ih))
	}
}
