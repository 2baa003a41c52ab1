// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package pathgraph

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// formatMagic and formatVersion frame the stream: a fixed magic number
// followed by a version byte, so a reader can reject a foreign or
// incompatible file before attempting to decode anything.
const (
	formatMagic   uint32 = 0x50474831 // "PGH1"
	formatVersion uint8  = 1
)

// attrRecord is the wire shape of one Attribute, keyed by numeric msgpack
// tags. Unused fields for a given Kind are simply zero and are not
// round-tripped as meaningful.
type attrRecord struct {
	Key         string `msgpack:"1"`
	Kind        uint8  `msgpack:"2"`
	Str         string `msgpack:"3"`
	Width       uint32 `msgpack:"4"`
	Height      uint32 `msgpack:"5"`
	ElementType string `msgpack:"6"`
	ElementSize uint32 `msgpack:"7"`
	Data        []byte `msgpack:"8"`
}

// nodeRecord is the wire shape of one node. Its position in the encoded
// array is its NodeID; there is no explicit id field.
type nodeRecord struct {
	Type  uint8        `msgpack:"1"`
	Attrs []attrRecord `msgpack:"2"`
}

// edgeRecord is the wire shape of one directed, named edge.
type edgeRecord struct {
	Parent uint32 `msgpack:"1"`
	Child  uint32 `msgpack:"2"`
	Name   string `msgpack:"3"`
}

// Serialise writes a binary encoding of g to w: a magic number and version
// byte, then a msgpack-encoded node array, then a msgpack-encoded edge
// array. The encoding preserves structure, node types and attributes
// exactly; Deserialise(Serialise(g)) is structurally Equal to g.
func (g *Graph) Serialise(w io.Writer) error {
	header := make([]byte, 5)
	binary.BigEndian.PutUint32(header[0:4], formatMagic)
	header[4] = formatVersion
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("pathgraph: write header: %w", err)
	}

	nodeRecords := make([]nodeRecord, len(g.nodes))
	var edgeRecords []edgeRecord

	for id, n := range g.nodes {
		rec := nodeRecord{Type: uint8(n.typ)}
		for key, attr := range n.attrs {
			ar := attrRecord{Key: key, Kind: uint8(attr.Kind)}
			switch attr.Kind {
			case AttributeString:
				ar.Str = attr.Str
			case AttributeMatrix:
				ar.Width = attr.Mat.Width
				ar.Height = attr.Mat.Height
				ar.ElementType = attr.Mat.ElementType
				ar.ElementSize = attr.Mat.ElementSize
				ar.Data = attr.Mat.Data
			}
			rec.Attrs = append(rec.Attrs, ar)
		}
		nodeRecords[id] = rec

		for _, e := range n.children {
			edgeRecords = append(edgeRecords, edgeRecord{
				Parent: uint32(id),
				Child:  uint32(e.child),
				Name:   e.name,
			})
		}
	}

	if err := encodeMsgpack(w, nodeRecords); err != nil {
		return fmt.Errorf("pathgraph: encode nodes: %w", err)
	}
	if err := encodeMsgpack(w, edgeRecords); err != nil {
		return fmt.Errorf("pathgraph: encode edges: %w", err)
	}
	return nil
}

// Deserialise reads a Graph previously written by Serialise. It returns
// ErrCorrupt if the stream is truncated or carries a bad magic/version, and
// ErrUnknownAttributeVariant if an attribute tag it does not recognise is
// found — new attribute kinds must be rejected explicitly rather than
// silently dropped, so a round trip through an older reader can never lose
// data without saying so.
func Deserialise(r io.Reader) (*Graph, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrCorrupt, err)
	}
	magic := binary.BigEndian.Uint32(header[0:4])
	if magic != formatMagic {
		return nil, fmt.Errorf("%w: bad magic %x", ErrCorrupt, magic)
	}
	version := header[4]
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, version)
	}

	dec := msgpack.NewDecoder(r)

	var nodeRecords []nodeRecord
	if err := dec.Decode(&nodeRecords); err != nil {
		return nil, fmt.Errorf("%w: decode nodes: %v", ErrCorrupt, err)
	}

	var edgeRecords []edgeRecord
	if err := dec.Decode(&edgeRecords); err != nil {
		return nil, fmt.Errorf("%w: decode edges: %v", ErrCorrupt, err)
	}

	g := &Graph{cache: newLookupCache()}
	g.nodes = make([]*node, len(nodeRecords))
	for id, rec := range nodeRecords {
		n := newNode(NodeType(rec.Type))
		for _, ar := range rec.Attrs {
			switch AttributeKind(ar.Kind) {
			case AttributeString:
				n.attrs[ar.Key] = StringAttribute(ar.Str)
			case AttributeMatrix:
				n.attrs[ar.Key] = MatrixAttribute(Matrix{
					Width:       ar.Width,
					Height:      ar.Height,
					ElementType: ar.ElementType,
					ElementSize: ar.ElementSize,
					Data:        ar.Data,
				})
			default:
				return nil, fmt.Errorf("%w: kind %d on key %q", ErrUnknownAttributeVariant, ar.Kind, ar.Key)
			}
		}
		g.nodes[id] = n
	}

	for _, er := range edgeRecords {
		if int(er.Parent) >= len(g.nodes) || int(er.Child) >= len(g.nodes) {
			return nil, fmt.Errorf("%w: edge references out-of-range node", ErrStructuralInvariant)
		}
		parent := g.nodes[er.Parent]
		parent.children = append(parent.children, edge{child: NodeID(er.Child), name: er.Name})
		child := g.nodes[er.Child]
		child.parent = NodeID(er.Parent)
		child.parentName = er.Name
		child.hasParent = true
	}

	return g, nil
}

func encodeMsgpack(w io.Writer, v any) error {
	buf := &bytes.Buffer{}
	enc := msgpack.NewEncoder(buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
