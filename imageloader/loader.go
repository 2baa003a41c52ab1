// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

// Package imageloader decodes image files into an in-memory representation
// and exposes dimensions, a flat EXIF-derived metadata map, and the hash
// helpers a Photo needs. Format support is registered via blank imports:
// image/jpeg, image/png and image/gif from the standard library, plus
// golang.org/x/image's webp, bmp and tiff decoders for the formats stdlib
// does not cover.
package imageloader

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/albumarchitect/core/hashes"
)

// Image is a decoded image plus its lazily-extracted EXIF metadata.
type Image struct {
	path   string
	pixels image.Image
	format string
}

// Load decodes path's contents into an Image. Decode or read failures are
// reported as an error; callers that want an "ok, none" contract should
// just check err.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageloader: open %s: %w", path, err)
	}
	defer f.Close()

	pixels, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imageloader: decode %s: %w", path, err)
	}

	return &Image{path: path, pixels: pixels, format: format}, nil
}

// CheckPathIsImage probes path's header without decoding the full image.
func CheckPathIsImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.DecodeConfig(f)
	return err == nil
}

// Pixels returns the decoded pixel buffer.
func (img *Image) Pixels() image.Image {
	return img.pixels
}

// Format returns the name image.Decode registered the decoder under (e.g.
// "jpeg", "png", "webp").
func (img *Image) Format() string {
	return img.format
}

// GetWidth returns the image's width in pixels.
func (img *Image) GetWidth() int {
	return img.pixels.Bounds().Dx()
}

// GetHeight returns the image's height in pixels.
func (img *Image) GetHeight() int {
	return img.pixels.Bounds().Dy()
}

// GetChannels reports the number of colour channels implied by the
// underlying pixel model: 1 for the gray models (Gray, Gray16), 4
// otherwise (RGBA-family models, the overwhelming common case).
func (img *Image) GetChannels() int {
	switch img.pixels.ColorModel() {
	case image.GrayModel:
		return 1
	case image.Gray16Model:
		return 1
	default:
		return 4
	}
}

// GetMetadata returns a flat string-keyed EXIF attribute map. A missing or
// unparsable EXIF segment is not an error; it yields an empty map.
func (img *Image) GetMetadata() map[string]string {
	out := map[string]string{}

	f, err := os.Open(img.path)
	if err != nil {
		return out
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return out
	}

	_ = x.Walk(exifWalker(out))
	return out
}

// exifWalker adapts a map[string]string into an exif.Walker.
type exifWalker map[string]string

func (w exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w[string(name)] = tag.String()
	return nil
}

// GetHash returns the hex-encoded cryptographic digest of the raw file
// bytes under alg.
func (img *Image) GetHash(alg hashes.Algorithm) (string, error) {
	return hashes.HashFile(img.path, alg)
}

// GetImageHash returns the 8-byte perceptual hash of the decoded pixel
// buffer under alg.
func (img *Image) GetImageHash(alg hashes.ImageAlgorithm) ([]byte, error) {
	return hashes.ImageHashOf(img.pixels, alg)
}
