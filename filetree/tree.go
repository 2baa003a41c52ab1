// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package filetree

import (
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"

	"github.com/albumarchitect/core/pathgraph"
)

// FileTree owns a pathgraph.Graph plus the absolute filesystem path it was
// anchored to. Every non-root node's path-from-root, appended to Root,
// names an absolute filesystem path that existed at the moment of
// ingestion (or of the snapshot that was deserialised).
type FileTree struct {
	Root  string
	graph *pathgraph.Graph
}

// Build walks path, which must be an existing directory, and returns a
// FileTree whose root is path's absolute form. Entries at each level are
// inserted in name order, and each directory is inserted before its own
// contents; symlinks are followed exactly as the directory-iteration layer
// follows them.
func Build(path string) (*FileTree, error) {
	absRoot, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotADirectory, err)
	}

	fs, err := newOSRoot(absRoot)
	if err != nil {
		return nil, err
	}

	g := pathgraph.New()
	if err := walk(fs, g); err != nil {
		return nil, err
	}

	return &FileTree{Root: absRoot, graph: g}, nil
}

// treeStreamMagic frames the cache file's outer layer: a length-prefixed
// root path string, ahead of the pathgraph.Graph's own magic-framed bytes.
const treeStreamMagic uint32 = 0x46544131 // "FTA1"

// ToStream writes a binary encoding of t: the magic number, then a
// length-prefixed UTF-8 root path string, then the serialised Path Graph.
func (t *FileTree) ToStream(w io.Writer) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, treeStreamMagic)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("filetree: write magic: %w", err)
	}

	rootBytes := []byte(t.Root)
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(rootBytes)))
	if _, err := w.Write(lenBuf); err != nil {
		return fmt.Errorf("filetree: write root length: %w", err)
	}
	if _, err := w.Write(rootBytes); err != nil {
		return fmt.Errorf("filetree: write root: %w", err)
	}

	if err := t.graph.Serialise(w); err != nil {
		return fmt.Errorf("filetree: serialise graph: %w", err)
	}
	return nil
}

// FromStream reads a FileTree previously written by ToStream. It returns an
// error if the stream is corrupt or carries an incompatible format; callers
// that treat cache corruption as non-fatal should fall back to Build.
func FromStream(r io.Reader) (*FileTree, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("filetree: read magic: %w", err)
	}
	if binary.BigEndian.Uint32(header) != treeStreamMagic {
		return nil, fmt.Errorf("filetree: bad magic")
	}

	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return nil, fmt.Errorf("filetree: read root length: %w", err)
	}
	rootLen := binary.BigEndian.Uint32(lenBuf)

	rootBuf := make([]byte, rootLen)
	if _, err := io.ReadFull(r, rootBuf); err != nil {
		return nil, fmt.Errorf("filetree: read root: %w", err)
	}

	g, err := pathgraph.Deserialise(r)
	if err != nil {
		return nil, fmt.Errorf("filetree: deserialise graph: %w", err)
	}

	return &FileTree{Root: string(rootBuf), graph: g}, nil
}

// element builds an Element for id at the given absolute path.
func (t *FileTree) element(id pathgraph.NodeID, path string) Element {
	return Element{
		Type: t.graph.GetNodeType(id),
		Path: path,
		tree: t,
		id:   id,
	}
}

// GetElement resolves an absolute path to an Element. The empty string is
// an alias for the root. path must equal Root or be a descendant of it, and
// must have been observed at build or deserialisation time.
func (t *FileTree) GetElement(path string) (Element, bool) {
	if path == "" {
		return t.GetRootElement(), true
	}
	if !isSubpath(t.Root, path) {
		return Element{}, false
	}

	segments := toSegments(t.Root, path)
	id, ok := t.graph.GetNode(segments)
	if !ok {
		return Element{}, false
	}
	return t.element(id, path), true
}

// GetRootElement always succeeds, returning an Element for the tree's root.
func (t *FileTree) GetRootElement() Element {
	return t.element(pathgraph.RootID, t.Root)
}

// GetElementsUnderPath appends the immediate children of path to out,
// returning false if path is not in the tree. A structural invariant
// violation encountered while resolving a child's path is never silently
// skipped; it is returned to the caller as a fatal error.
func (t *FileTree) GetElementsUnderPath(path string, out *[]Element) (bool, error) {
	el, ok := t.GetElement(path)
	if !ok {
		return false, nil
	}

	for _, childID := range t.graph.GetNodeChildren(el.id) {
		childPath, err := t.graph.GetNodePath(childID)
		if err != nil {
			return false, fmt.Errorf("filetree: get elements under %q: %w", path, err)
		}
		*out = append(*out, t.element(childID, fromSegments(t.Root, childPath)))
	}
	return true, nil
}

// SetMetadata resolves path and sets key to value on it.
func (t *FileTree) SetMetadata(path, key string, value pathgraph.Attribute) (pathgraph.Attribute, bool, error) {
	el, ok := t.GetElement(path)
	if !ok {
		return pathgraph.Attribute{}, false, ErrPathNotInTree
	}
	prev, had := el.SetMetadata(key, value)
	return prev, had, nil
}

// GetMetadata resolves path and retrieves the value stored under key.
func (t *FileTree) GetMetadata(path, key string) (pathgraph.Attribute, bool, error) {
	el, ok := t.GetElement(path)
	if !ok {
		return pathgraph.Attribute{}, false, ErrPathNotInTree
	}
	v, ok := el.GetMetadata(key)
	return v, ok, nil
}

// RemoveMetadata resolves path and deletes key from it.
func (t *FileTree) RemoveMetadata(path, key string) (pathgraph.Attribute, bool, error) {
	el, ok := t.GetElement(path)
	if !ok {
		return pathgraph.Attribute{}, false, ErrPathNotInTree
	}
	prev, had := el.RemoveMetadata(key)
	return prev, had, nil
}

// All returns every Element in the tree, including the root, exactly once,
// in implementation-defined (depth-first, pre-order) order. It returns an
// error if the underlying graph is found to violate a structural invariant
// mid-walk; callers must treat that as fatal, not as an empty result.
func (t *FileTree) All() ([]Element, error) {
	var out []Element
	if err := t.collect(pathgraph.RootID, t.Root, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *FileTree) collect(id pathgraph.NodeID, path string, out *[]Element) error {
	*out = append(*out, t.element(id, path))
	for _, childID := range t.graph.GetNodeChildren(id) {
		childPath, err := t.graph.GetNodePath(childID)
		if err != nil {
			return fmt.Errorf("filetree: collect under %q: %w", path, err)
		}
		if err := t.collect(childID, fromSegments(t.Root, childPath), out); err != nil {
			return err
		}
	}
	return nil
}
