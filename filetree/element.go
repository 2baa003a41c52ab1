// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package filetree

import "github.com/albumarchitect/core/pathgraph"

// Element is a value-typed handle into a FileTree: a node type, its
// absolute filesystem path, and a reference back to the owning tree.
// Elements are freely copyable. Their validity is tied to the FileTree's
// lifetime, and the underlying file may have been deleted between
// ingestion and use — callers must tolerate I/O errors when acting on one.
type Element struct {
	Type pathgraph.NodeType
	Path string

	tree *FileTree
	id   pathgraph.NodeID
}

// IsDir reports whether the element refers to a directory.
func (e Element) IsDir() bool {
	return e.Type == pathgraph.Directory
}

// SetMetadata stores value under key on the element's node.
func (e Element) SetMetadata(key string, value pathgraph.Attribute) (pathgraph.Attribute, bool) {
	return e.tree.graph.SetNodeMetadata(e.id, key, value)
}

// GetMetadata retrieves the value stored under key on the element's node.
func (e Element) GetMetadata(key string) (pathgraph.Attribute, bool) {
	return e.tree.graph.GetNodeMetadata(e.id, key)
}

// RemoveMetadata deletes key from the element's node.
func (e Element) RemoveMetadata(key string) (pathgraph.Attribute, bool) {
	return e.tree.graph.RemoveNodeMetadata(e.id, key)
}
