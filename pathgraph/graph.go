// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

// Package pathgraph implements a typed, serialisable path trie: an
// in-memory, arena-backed DAG (in practice always a tree) mirroring a
// rooted filesystem subtree, carrying a small string-keyed attribute map per
// node. It is the foundation File Tree builds its Element handles on top
// of.
package pathgraph

import "fmt"

// Graph is an arena of nodes addressed by NodeID, rooted at RootID. The
// zero value is not usable; construct with New.
type Graph struct {
	nodes []*node
	cache *lookupCache
}

// New returns an empty Graph containing only the root directory node.
func New() *Graph {
	g := &Graph{
		nodes: []*node{newNode(Directory)},
		cache: newLookupCache(),
	}
	return g
}

// AddNode creates all missing ancestors of segments as directories and then
// the terminal node with typ, unless it already exists, in which case its
// type is left untouched (never downgraded from directory to file or vice
// versa). An empty segments list is a no-op: the root always exists and is
// always a directory.
func (g *Graph) AddNode(segments []string, typ NodeType) NodeID {
	if len(segments) == 0 {
		return RootID
	}

	current := RootID
	for i, name := range segments {
		last := i == len(segments)-1
		childType := Directory
		if last {
			childType = typ
		}

		if child, ok := g.nodes[current].childByName(name); ok {
			current = child
			continue
		}

		id := NodeID(len(g.nodes))
		g.nodes = append(g.nodes, newNode(childType))
		g.nodes[current].children = append(g.nodes[current].children, edge{child: id, name: name})
		g.nodes[id].parent = current
		g.nodes[id].parentName = name
		g.nodes[id].hasParent = true
		current = id
	}

	g.cache.put(segments, current)
	return current
}

// GetNode resolves segments to a NodeID. The empty list, and the
// single-segment list {"."}, both resolve to the root.
func (g *Graph) GetNode(segments []string) (NodeID, bool) {
	if len(segments) == 0 || (len(segments) == 1 && segments[0] == ".") {
		return RootID, true
	}

	if id, ok := g.cache.get(segments); ok {
		return id, true
	}

	current := RootID
	for _, name := range segments {
		child, ok := g.nodes[current].childByName(name)
		if !ok {
			return 0, false
		}
		current = child
	}

	g.cache.put(segments, current)
	return current, true
}

func (g *Graph) valid(id NodeID) bool {
	return int(id) >= 0 && int(id) < len(g.nodes)
}

// GetNodeType returns whether id is a file or directory node. It panics if
// id is out of range, since any NodeID a caller holds must have come from
// this Graph.
func (g *Graph) GetNodeType(id NodeID) NodeType {
	return g.nodes[id].typ
}

// GetNodeChildren returns the children of id in unspecified order.
func (g *Graph) GetNodeChildren(id NodeID) []NodeID {
	edges := g.nodes[id].children
	out := make([]NodeID, len(edges))
	for i, e := range edges {
		out[i] = e.child
	}
	return out
}

// GetNodePath reconstructs the segment list for id by walking parent edges
// to the root. It returns ErrStructuralInvariant if a non-root node lacks an
// incoming edge, which should never happen through the public API.
func (g *Graph) GetNodePath(id NodeID) ([]string, error) {
	var reversed []string
	current := id
	for current != RootID {
		n := g.nodes[current]
		if !n.hasParent {
			return nil, fmt.Errorf("%w: node %d has no parent edge", ErrStructuralInvariant, current)
		}
		reversed = append(reversed, n.parentName)
		current = n.parent
	}

	segments := make([]string, len(reversed))
	for i, s := range reversed {
		segments[len(reversed)-1-i] = s
	}
	return segments, nil
}

// RenameNode renames the incoming edge of the node at segments to newName.
// The root cannot be renamed and this returns false. It invalidates the
// whole lookup cache, since an unbounded number of cached paths may now be
// stale (every descendant of the renamed node).
func (g *Graph) RenameNode(segments []string, newName string) bool {
	id, ok := g.GetNode(segments)
	if !ok || id == RootID {
		return false
	}

	n := g.nodes[id]
	parent := g.nodes[n.parent]
	for i := range parent.children {
		if parent.children[i].child == id {
			parent.children[i].name = newName
			break
		}
	}
	n.parentName = newName

	g.cache.clear()
	return true
}

// SetNodeMetadata sets key to value on id, returning the previous value (if
// any) and whether one existed.
func (g *Graph) SetNodeMetadata(id NodeID, key string, value Attribute) (Attribute, bool) {
	n := g.nodes[id]
	prev, had := n.attrs[key]
	n.attrs[key] = value
	return prev, had
}

// GetNodeMetadata retrieves the value stored under key on id.
func (g *Graph) GetNodeMetadata(id NodeID, key string) (Attribute, bool) {
	v, ok := g.nodes[id].attrs[key]
	return v, ok
}

// RemoveNodeMetadata deletes key from id, returning the previous value (if
// any) and whether one existed.
func (g *Graph) RemoveNodeMetadata(id NodeID, key string) (Attribute, bool) {
	n := g.nodes[id]
	prev, had := n.attrs[key]
	delete(n.attrs, key)
	return prev, had
}

// GetNodeMetadataKeys returns every metadata key currently set on id, in
// unspecified order. Used by callers that need to copy a node's full
// attribute set elsewhere (e.g. filetree's prune rebuild) without knowing
// which keys higher layers reserve.
func (g *Graph) GetNodeMetadataKeys(id NodeID) []string {
	n := g.nodes[id]
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	return keys
}

// NodeCount returns the number of nodes in the arena, including the root.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Equal reports structural equality: same node count, same type per node,
// same attribute map per node, and same edge set (by parent, child name).
// NodeIDs themselves are not compared directly since two graphs built by
// different walks may assign ids in a different order; instead Equal walks
// both graphs in lock-step from the root, matching children by edge name.
func (g *Graph) Equal(other *Graph) bool {
	if g.NodeCount() != other.NodeCount() {
		return false
	}
	return equalSubtree(g, RootID, other, RootID, make(map[NodeID]bool))
}

func equalSubtree(a *Graph, aID NodeID, b *Graph, bID NodeID, visited map[NodeID]bool) bool {
	if visited[aID] {
		return true
	}
	visited[aID] = true

	an, bn := a.nodes[aID], b.nodes[bID]
	if an.typ != bn.typ {
		return false
	}
	if len(an.attrs) != len(bn.attrs) {
		return false
	}
	for k, v := range an.attrs {
		ov, ok := bn.attrs[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	if len(an.children) != len(bn.children) {
		return false
	}

	for _, ae := range an.children {
		found := false
		for _, be := range bn.children {
			if be.name == ae.name {
				found = true
				if !equalSubtree(a, ae.child, b, be.child, visited) {
					return false
				}
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
