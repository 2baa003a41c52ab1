// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// writeSplitPNG writes a 32x32 PNG whose left half is black and right half
// white. Every solid-colour image has the same average hash (no pixel is
// above the mean), so a distinct photo needs some structure.
func writeSplitPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(0)
			if x >= 16 {
				v = 255
			}
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRunBuildsReportAndCache(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), 10)
	writeTestPNG(t, filepath.Join(dir, "b.png"), 10) // identical to a.png
	writeSplitPNG(t, filepath.Join(dir, "c.png"))

	cacheFile := filepath.Join(dir, "cache.bin")
	report, err := Run(context.Background(), Options{
		PhotosPath:        dir,
		CacheFile:         cacheFile,
		AnalyzeDuplicates: true,
	})
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Len(t, report.Duplicates, 1)
	require.Len(t, report.Duplicates[0], 2)

	_, err = os.Stat(cacheFile)
	require.NoError(t, err)
}

func TestRunReusesCacheOnSecondInvocation(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), 10)

	cacheFile := filepath.Join(dir, "cache.bin")
	_, err := Run(context.Background(), Options{PhotosPath: dir, CacheFile: cacheFile})
	require.NoError(t, err)

	report, err := Run(context.Background(), Options{PhotosPath: dir, CacheFile: cacheFile})
	require.NoError(t, err)
	require.NotNil(t, report)
}

func TestRunRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notadir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Run(context.Background(), Options{PhotosPath: file, CacheFile: filepath.Join(dir, "cache.bin")})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotADirectory)
}

func TestRunAnswersSimilarityQuery(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), 10)

	queryDir := t.TempDir()
	queryPath := filepath.Join(queryDir, "query.png")
	writeTestPNG(t, queryPath, 11) // nearly identical shade

	report, err := Run(context.Background(), Options{
		PhotosPath:    dir,
		CacheFile:     filepath.Join(dir, "cache.bin"),
		CheckSimilars: []string{queryPath},
	})
	require.NoError(t, err)
	require.Contains(t, report.Similars, queryPath)
}
