// Package graph derives the navigable node/edge graph from a table model.
//
// The graph is a DAG, not a tree: a snapshot referenced by several metadata
// versions is one node with several incoming edges, and a manifest's
// children are expanded only on its first visit. Node identity is keyed by
// domain id (snapshot id, manifest path, normalized file path) through an
// explicit id→node arena consulted before any node is created.
//
// Node and edge ids are derived deterministically from their owning
// path/identifier tuples, so repeated builds of the same table produce
// identical ids. That property is what makes reload-while-preserving-
// positions and diffing of cached sessions possible.
//
// Every node carries a fixed width/height and a mutable (x, y) position.
// The position is the only field mutated after construction: by the layout
// engine, by the chronological reorderer, and by interactive dragging.
// Everything else, including the ordering keys, is written once at build
// time.
package graph
