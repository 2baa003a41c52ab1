// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package pathgraph

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestSerialiseDeserialiseRoundTrip(t *testing.T) {
	g := New()
	id := g.AddNode([]string{"a", "b.jpg"}, File)
	g.SetNodeMetadata(id, "k", StringAttribute("v"))

	var buf bytes.Buffer
	if err := g.Serialise(&buf); err != nil {
		t.Fatalf("Serialise: %v", err)
	}

	g2, err := Deserialise(&buf)
	if err != nil {
		t.Fatalf("Deserialise: %v", err)
	}
	if !g.Equal(g2) {
		t.Fatalf("round-tripped graph is not Equal to the original")
	}
}

// TestDeserialiseDetectsDanglingEdge crafts a wire stream whose edge array
// references a node index past the end of the node array, mirroring the
// corruption a damaged cache file could exhibit, and asserts Deserialise
// reports it as ErrStructuralInvariant rather than silently accepting it.
func TestDeserialiseDetectsDanglingEdge(t *testing.T) {
	var buf bytes.Buffer
	header := make([]byte, 5)
	binary.BigEndian.PutUint32(header[0:4], formatMagic)
	header[4] = formatVersion
	buf.Write(header)

	if err := encodeMsgpack(&buf, []nodeRecord{{Type: uint8(Directory)}}); err != nil {
		t.Fatalf("encode nodes: %v", err)
	}
	if err := encodeMsgpack(&buf, []edgeRecord{{Parent: 0, Child: 7, Name: "missing.jpg"}}); err != nil {
		t.Fatalf("encode edges: %v", err)
	}

	_, err := Deserialise(&buf)
	if err == nil {
		t.Fatalf("Deserialise accepted a dangling edge reference")
	}
	if !errors.Is(err, ErrStructuralInvariant) {
		t.Fatalf("Deserialise error = %v, want wrapping ErrStructuralInvariant", err)
	}
}
