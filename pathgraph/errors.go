// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package pathgraph

import "errors"

// ErrStructuralInvariant is returned when a traversal finds the graph in a
// state that should be impossible to reach through the public API (a
// non-root node missing its parent edge, a cycle, a dangling edge target).
// Callers should treat this as fatal: it indicates a bug in this package or
// in whatever produced the serialised bytes, not a data-quality problem.
var ErrStructuralInvariant = errors.New("pathgraph: structural invariant violated")

// ErrUnknownAttributeVariant is returned by Deserialise when it encounters an
// attribute tag it does not recognise. Unknown variants are a hard error
// rather than a silently dropped field, per the cache format's
// forward-compatibility contract: a newer writer's attributes must not be
// silently lost by an older reader.
var ErrUnknownAttributeVariant = errors.New("pathgraph: unknown attribute variant")

// ErrCorrupt is returned by Deserialise when the byte stream is truncated,
// carries a bad magic number, or otherwise cannot be parsed as a Graph.
var ErrCorrupt = errors.New("pathgraph: corrupt stream")
