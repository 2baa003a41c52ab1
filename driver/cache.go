// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/albumarchitect/core/filetree"
	"github.com/albumarchitect/core/pathgraph"
)

// loadOrBuildTree implements the cache load/build policy: accept a cached
// tree whose stored root matches absRoot, else fall back to a fresh walk.
// The "cache missing", "cache corrupt", and "cache root mismatch" paths are
// non-fatal; a structural invariant violation surfaced while deserialising
// the cache is fatal and is returned to the caller as-is, never papered
// over by a silent rebuild.
func loadOrBuildTree(absRoot, cacheFile string) (*filetree.FileTree, error) {
	tree, err := tryLoadCache(absRoot, cacheFile)
	if err == nil {
		return tree, nil
	}
	if errors.Is(err, ErrStructuralInvariant) {
		return nil, err
	}

	slog.Info("[driver] rebuilding file tree", "reason", err, "root", absRoot)
	tree, err = filetree.Build(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotADirectory, err)
	}
	return tree, nil
}

func tryLoadCache(absRoot, cacheFile string) (*filetree.FileTree, error) {
	f, err := os.Open(cacheFile)
	if err != nil {
		return nil, fmt.Errorf("no cache file: %w", err)
	}
	defer f.Close()

	tree, err := filetree.FromStream(f)
	if err != nil {
		if errors.Is(err, pathgraph.ErrStructuralInvariant) {
			return nil, fmt.Errorf("%w: %v", ErrStructuralInvariant, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}

	if tree.Root != absRoot {
		return nil, fmt.Errorf("%w: cache root %q != requested root %q", ErrCacheRootMismatch, tree.Root, absRoot)
	}

	return tree, nil
}

// saveCache serialises tree back to cacheFile, enriched with whatever
// hashes and states the analysis loop computed. It stages the write under
// a uniquely named temporary file (so two concurrent runs against the
// same cache path never collide) before renaming it into place.
func saveCache(tree *filetree.FileTree, cacheFile string) error {
	tmp := cacheFile + "." + uuid.NewString() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("driver: create cache: %w", err)
	}

	if err := tree.ToStream(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("driver: write cache: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("driver: close cache: %w", err)
	}

	if err := os.Rename(tmp, cacheFile); err != nil {
		return fmt.Errorf("driver: rename cache into place: %w", err)
	}
	return nil
}

func statExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func resolveAbsRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotADirectory, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, abs)
	}
	return abs, nil
}
