package graph

import (
	"fmt"

	"github.com/icemap-dev/icemap/pkg/errors"
)

// Sentinel errors for graph construction.
var (
	// ErrDuplicateNode indicates an attempt to add a node whose id already exists.
	ErrDuplicateNode = errors.New(errors.ErrCodeInternal, "node already exists")
	// ErrMissingNode indicates an edge endpoint that has no node.
	ErrMissingNode = errors.New(errors.ErrCodeInternal, "edge endpoint does not exist")
	// ErrDuplicateEdge indicates an edge added twice between the same endpoints.
	ErrDuplicateEdge = errors.New(errors.ErrCodeInternal, "edge already exists")
)

// Graph is the deduplicating node/edge arena.
//
// Nodes are stored by id; Order preserves insertion order so iteration and
// serialization are deterministic. Adding an edge to an existing node is the
// normal dedup path: the caller checks Has before expanding children.
type Graph struct {
	nodes map[string]*Node
	order []string

	edges    map[string]*Edge
	edgeList []string

	outgoing map[string][]string // node id → edge ids
	incoming map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edges:    make(map[string]*Edge),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// Has reports whether a node with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// AddNode inserts a node. The node's width and height are filled from its
// kind when unset.
func (g *Graph) AddNode(n *Node) error {
	if n.ID == "" {
		return errors.New(errors.ErrCodeInternal, "node id must not be empty")
	}
	if g.Has(n.ID) {
		return errors.Wrap(errors.ErrCodeInternal, ErrDuplicateNode, "node %q", n.ID)
	}
	if n.Width == 0 || n.Height == 0 {
		n.Width, n.Height = SizeFor(n.Kind)
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge inserts a directed edge between existing nodes. The edge id is
// derived from the endpoints, so re-adding the same edge fails with
// ErrDuplicateEdge.
func (g *Graph) AddEdge(from, to string) error {
	return g.addEdge(from, to, false)
}

// AddSiblingEdge inserts a peer-link edge, rendered differently from
// parent-child edges.
func (g *Graph) AddSiblingEdge(from, to string) error {
	return g.addEdge(from, to, true)
}

func (g *Graph) addEdge(from, to string, sibling bool) error {
	if !g.Has(from) {
		return errors.Wrap(errors.ErrCodeInternal, ErrMissingNode, "edge source %q", from)
	}
	if !g.Has(to) {
		return errors.Wrap(errors.ErrCodeInternal, ErrMissingNode, "edge target %q", to)
	}
	id := EdgeID(from, to)
	if _, ok := g.edges[id]; ok {
		return errors.Wrap(errors.ErrCodeInternal, ErrDuplicateEdge, "edge %q", id)
	}
	g.edges[id] = &Edge{ID: id, From: from, To: to, Sibling: sibling}
	g.edgeList = append(g.edgeList, id)
	g.outgoing[from] = append(g.outgoing[from], id)
	g.incoming[to] = append(g.incoming[to], id)
	return nil
}

// EdgeID derives the deterministic id for an edge between two nodes.
func EdgeID(from, to string) string {
	return fmt.Sprintf("%s->%s", from, to)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeList))
	for _, id := range g.edgeList {
		out = append(out, g.edges[id])
	}
	return out
}

// Children returns the targets of a node's outgoing non-sibling edges, in
// edge insertion order. Because the builder adds child edges in model order,
// this is also the domain order of the children.
func (g *Graph) Children(id string) []*Node {
	var out []*Node
	for _, eid := range g.outgoing[id] {
		e := g.edges[eid]
		if e.Sibling {
			continue
		}
		out = append(out, g.nodes[e.To])
	}
	return out
}

// Parents returns the sources of a node's incoming non-sibling edges.
func (g *Graph) Parents(id string) []*Node {
	var out []*Node
	for _, eid := range g.incoming[id] {
		e := g.edges[eid]
		if e.Sibling {
			continue
		}
		out = append(out, g.nodes[e.From])
	}
	return out
}

// NodesOfKind returns all nodes of one kind in insertion order.
func (g *Graph) NodesOfKind(kind Kind) []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edgeList) }

// Validate checks structural integrity: every edge endpoint resolves and no
// cycle exists among non-sibling edges.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if !g.Has(e.From) || !g.Has(e.To) {
			return errors.Wrap(errors.ErrCodeInternal, ErrMissingNode, "edge %q", e.ID)
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.nodes))

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			return errors.New(errors.ErrCodeInternal, "cycle through node %q", id)
		case done:
			return nil
		}
		state[id] = visiting
		for _, eid := range g.outgoing[id] {
			e := g.edges[eid]
			if e.Sibling {
				continue
			}
			if err := visit(e.To); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for _, id := range g.order {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
