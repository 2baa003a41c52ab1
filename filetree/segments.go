// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

// Package filetree anchors a pathgraph.Graph to a concrete absolute
// filesystem root and provides value-typed Element handles keyed by
// filesystem path.
package filetree

import (
	"path/filepath"
	"strings"
)

// toSegments converts an absolute path, known to be root or a descendant of
// root, into the ordered segment list pathgraph expects: each path
// component from the topmost directory under root down to the target, in
// that order, so the topmost segment comes first. The empty path (p == root)
// converts to the empty list.
func toSegments(root, p string) []string {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return nil
	}
	rel = filepath.ToSlash(rel)
	return strings.Split(rel, "/")
}

// fromSegments is the inverse of toSegments: it reconstructs the absolute
// path a segment list refers to, relative to root.
func fromSegments(root string, segments []string) string {
	if len(segments) == 0 {
		return root
	}
	parts := append([]string{root}, segments...)
	return filepath.Join(parts...)
}

// isSubpath reports whether p is root itself or a descendant of root: the
// path relative to root is non-empty and does not escape via a leading
// ".." segment. Both paths must already be absolute and clean.
func isSubpath(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
