// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package filetree

import "github.com/albumarchitect/core/pathgraph"

// PruneMissing removes from the in-memory tree any node whose absolute path
// no longer satisfies exists. It is meant to run once, right after a cache
// is loaded and before the driver starts computing photo state, so that a
// file deleted or moved between two cache-backed runs does not resurrect in
// the report from stale metadata.
//
// pathgraph has no node-removal primitive (it is an append-only arena), so
// pruning is implemented by rebuilding a fresh graph containing only the
// surviving subtree; NodeIDs are not preserved across a prune.
func (t *FileTree) PruneMissing(exists func(path string) bool) ([]string, error) {
	all, err := t.All()
	if err != nil {
		return nil, err
	}

	var removed []string
	var surviving []Element

	for _, el := range all {
		if el.id == 0 {
			continue // root always survives
		}
		if exists(el.Path) {
			surviving = append(surviving, el)
		} else {
			removed = append(removed, el.Path)
		}
	}

	if len(removed) == 0 {
		return nil, nil
	}

	oldGraph := t.graph
	fresh := pathgraph.New()
	for _, el := range surviving {
		segments := toSegments(t.Root, el.Path)
		newID := fresh.AddNode(segments, el.Type)
		copyMetadata(oldGraph, el.id, fresh, newID)
	}

	t.graph = fresh
	return removed, nil
}

// copyMetadata copies every attribute on src/srcID onto dst/dstID.
func copyMetadata(src *pathgraph.Graph, srcID pathgraph.NodeID, dst *pathgraph.Graph, dstID pathgraph.NodeID) {
	for _, key := range src.GetNodeMetadataKeys(srcID) {
		if v, ok := src.GetNodeMetadata(srcID, key); ok {
			dst.SetNodeMetadata(dstID, key, v)
		}
	}
}
