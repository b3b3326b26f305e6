package layout

import (
	"bytes"
	"context"

	"github.com/goccy/go-graphviz"

	"github.com/icemap-dev/icemap/pkg/errors"
	"github.com/icemap-dev/icemap/pkg/graph"
)

// formatPlain is Graphviz's line-oriented position output format.
const formatPlain = graphviz.Format("plain")

// Engine computes positions for a graph. Implementations must not modify
// the graph; Apply writes the result back.
type Engine interface {
	Layout(ctx context.Context, g *graph.Graph) (*Result, error)
}

// Options tunes the Graphviz engine.
type Options struct {
	// RankDir is the tier direction; "LR" puts the table on the left and
	// rows on the right.
	RankDir string
	// RankSep is the gap between tiers in inches.
	RankSep float64
	// NodeSep is the gap between siblings in inches.
	NodeSep float64
}

func (o *Options) defaults() {
	if o.RankDir == "" {
		o.RankDir = "LR"
	}
	if o.RankSep <= 0 {
		o.RankSep = 1.0
	}
	if o.NodeSep <= 0 {
		o.NodeSep = 0.4
	}
}

// Graphviz lays out graphs with the dot engine.
type Graphviz struct {
	opts Options
}

// NewGraphviz creates a Graphviz layout engine.
func NewGraphviz(opts Options) *Graphviz {
	opts.defaults()
	return &Graphviz{opts: opts}
}

// Layout runs the dot engine over the graph and returns node positions.
func (e *Graphviz) Layout(ctx context.Context, g *graph.Graph) (*Result, error) {
	dot := ToDOT(g, e.opts)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "init graphviz")
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse DOT")
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, formatPlain, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "dot layout")
	}

	res, err := parsePlain(buf.String())
	if err != nil {
		return nil, err
	}
	if len(res.Positions) != g.NodeCount() {
		return nil, errors.New(errors.ErrCodeLayoutFailed,
			"layout returned %d positions for %d nodes", len(res.Positions), g.NodeCount())
	}
	return res, nil
}

// Apply writes a layout result into the graph: node centers and routed edge
// paths. Nodes missing from the result keep their previous position.
func Apply(g *graph.Graph, res *Result) {
	for _, n := range g.Nodes() {
		if p, ok := res.Positions[n.ID]; ok {
			n.X = p.X
			n.Y = p.Y
		}
	}
	for _, e := range g.Edges() {
		if pts, ok := res.EdgePaths[e.ID]; ok {
			e.Points = pts
		}
	}
}
