package graph

import (
	"encoding/json"
	"os"

	"github.com/icemap-dev/icemap/pkg/errors"
)

// envelope is the serialized form of a graph. Nodes and edges keep their
// insertion order, so a marshal/unmarshal round trip preserves iteration
// order exactly.
type envelope struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Marshal serializes the graph to JSON.
func (g *Graph) Marshal() ([]byte, error) {
	data, err := json.Marshal(envelope{Nodes: g.Nodes(), Edges: g.Edges()})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal graph")
	}
	return data, nil
}

// Unmarshal reconstructs a graph from its serialized form.
func Unmarshal(data []byte) (*Graph, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal graph")
	}

	g := New()
	for _, n := range env.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range env.Edges {
		var addErr error
		if e.Sibling {
			addErr = g.AddSiblingEdge(e.From, e.To)
		} else {
			addErr = g.AddEdge(e.From, e.To)
		}
		if addErr != nil {
			return nil, addErr
		}
		// Restore routed points lost by re-adding.
		g.edges[EdgeID(e.From, e.To)].Points = e.Points
	}
	return g, nil
}

// WriteFile marshals the graph and writes it to path.
func (g *Graph) WriteFile(path string) error {
	data, err := g.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write graph file %s", path)
	}
	return nil
}

// ReadFile loads a serialized graph from path.
func ReadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read graph file %s", path)
	}
	return Unmarshal(data)
}
