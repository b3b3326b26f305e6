package layout

import (
	"bytes"
	"fmt"

	"github.com/icemap-dev/icemap/pkg/graph"
)

// pointsPerInch converts between layout units (points) and the inches DOT
// attributes are expressed in.
const pointsPerInch = 72.0

// ToDOT converts a graph to Graphviz DOT. Node dimensions are emitted as
// fixed sizes so the layout engine cannot shrink or grow them; ids are
// quoted verbatim and become the node names in the plain output.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph icemap {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.RankDir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, margin=\"0,0\"];\n")
	fmt.Fprintf(&buf, "  ranksep=%.2f;\n", opts.RankSep)
	fmt.Fprintf(&buf, "  nodesep=%.2f;\n", opts.NodeSep)
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [label=%q, width=%.4f, height=%.4f];\n",
			n.ID, n.Label, n.Width/pointsPerInch, n.Height/pointsPerInch)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Sibling {
			// Peer links must not influence ranking.
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, constraint=false];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}
