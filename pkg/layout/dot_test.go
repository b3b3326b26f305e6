package layout

import (
	"strings"
	"testing"

	"github.com/icemap-dev/icemap/pkg/graph"
)

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	nodes := []*graph.Node{
		{ID: "table:t", Kind: graph.KindTable, Label: "t"},
		{ID: "snap:1", Kind: graph.KindSnapshot, Label: "snapshot 1"},
		{ID: "file:/d/a.parquet", Kind: graph.KindDataFile, Label: "#1 a.parquet"},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddEdge("table:t", "snap:1"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("snap:1", "file:/d/a.parquet"); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOTFixedSizes(t *testing.T) {
	g := buildGraph(t)
	opts := Options{}
	opts.defaults()
	dot := ToDOT(g, opts)

	if !strings.Contains(dot, "rankdir=LR") {
		t.Error("DOT missing rankdir=LR")
	}
	if !strings.Contains(dot, "fixedsize=true") {
		t.Error("DOT missing fixedsize")
	}
	// Table is 240x64 points = 3.3333x0.8889 inches.
	if !strings.Contains(dot, "width=3.3333") || !strings.Contains(dot, "height=0.8889") {
		t.Errorf("DOT missing converted table dimensions:\n%s", dot)
	}
	if !strings.Contains(dot, `"table:t" -> "snap:1"`) {
		t.Error("DOT missing edge")
	}
}

func TestToDOTSiblingEdgesUnconstrained(t *testing.T) {
	g := buildGraph(t)
	if err := g.AddNode(&graph.Node{ID: "row:x", Kind: graph.KindRow}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddSiblingEdge("row:x", "file:/d/a.parquet"); err != nil {
		t.Fatal(err)
	}

	opts := Options{}
	opts.defaults()
	dot := ToDOT(g, opts)
	if !strings.Contains(dot, "constraint=false") {
		t.Error("sibling edge not marked constraint=false")
	}
}

func TestApplyWritesPositions(t *testing.T) {
	g := buildGraph(t)
	res := &Result{
		Positions: map[string]graph.Point{
			"table:t": {X: 10, Y: 20},
			"snap:1":  {X: 200, Y: 20},
		},
		EdgePaths: map[string][]graph.Point{
			"table:t->snap:1": {{X: 15, Y: 20}, {X: 195, Y: 20}},
		},
	}
	Apply(g, res)

	if n := g.Node("table:t"); n.X != 10 || n.Y != 20 {
		t.Errorf("table position = (%g, %g), want (10, 20)", n.X, n.Y)
	}
	// Nodes absent from the result keep their position.
	if n := g.Node("file:/d/a.parquet"); n.X != 0 || n.Y != 0 {
		t.Errorf("untouched node moved to (%g, %g)", n.X, n.Y)
	}
	if pts := g.Edges()[0].Points; len(pts) != 2 {
		t.Errorf("edge points = %d, want 2", len(pts))
	}
}
