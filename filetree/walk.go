// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package filetree

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/albumarchitect/core/pathgraph"
)

// walk recursively inserts every directory and file under root (exclusive
// of the root itself, which already exists as pathgraph.RootID) into g,
// using fs for directory iteration. Symlinks are followed exactly as fs's
// Stat/ReadDir already follow them; this package does no cycle detection of
// its own, matching the "loops are not handled" contract.
func walk(fs billy.Filesystem, g *pathgraph.Graph) error {
	return walkDir(fs, g, "", nil)
}

func walkDir(fs billy.Filesystem, g *pathgraph.Graph, dir string, segments []string) error {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("filetree: read dir %q: %w", dir, err)
	}

	// Sort for deterministic walk order; child order is otherwise
	// unspecified, but a deterministic walk makes tests and diffs stable.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		childSegments := append(append([]string{}, segments...), name)
		childPath := fs.Join(dir, name)

		if entry.IsDir() {
			g.AddNode(childSegments, pathgraph.Directory)
			if err := walkDir(fs, g, childPath, childSegments); err != nil {
				return err
			}
			continue
		}

		g.AddNode(childSegments, pathgraph.File)
	}

	return nil
}

// newOSRoot returns a billy.Filesystem rooted at the given absolute
// directory path, after confirming it exists and is a directory.
func newOSRoot(absRoot string) (billy.Filesystem, error) {
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotADirectory, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, absRoot)
	}
	return osfs.New(absRoot), nil
}
