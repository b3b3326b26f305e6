package order

import (
	"testing"

	"github.com/icemap-dev/icemap/pkg/graph"
	"github.com/icemap-dev/icemap/pkg/iceberg"
)

// linkFixture builds a data file with two sampled rows and a position-delete
// file whose single row targets (a.parquet, pos 1), all owned by snapshot 1.
func linkFixture(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()

	mustNode(t, g, &graph.Node{ID: "file:/wh/data/a.parquet", Kind: graph.KindDataFile,
		FilePath: "/wh/data/a.parquet", SimpleID: 1, SnapshotID: i64(1), Y: 100})
	mustNode(t, g, &graph.Node{ID: "file:/wh/data/a.parquet:row:0", Kind: graph.KindRow, Y: 90,
		SnapshotID: i64(1), Cells: map[string]string{"id": "10"}})
	mustNode(t, g, &graph.Node{ID: "file:/wh/data/a.parquet:row:1", Kind: graph.KindRow, Y: 120,
		SnapshotID: i64(1), Cells: map[string]string{"id": "11"}})
	mustEdge(t, g, "file:/wh/data/a.parquet", "file:/wh/data/a.parquet:row:0")
	mustEdge(t, g, "file:/wh/data/a.parquet", "file:/wh/data/a.parquet:row:1")

	mustNode(t, g, &graph.Node{ID: "file:/wh/data/del.parquet", Kind: graph.KindDataFile,
		FilePath: "/wh/data/del.parquet", SimpleID: 2, SnapshotID: i64(1),
		DeleteContent: iceberg.DataContentPositionDeletes, Y: 400})
	mustNode(t, g, &graph.Node{ID: "file:/wh/data/del.parquet:row:0", Kind: graph.KindRow, Y: 500,
		SnapshotID:    i64(1),
		DeleteContent: iceberg.DataContentPositionDeletes,
		FilePath:      "file:///wh/data/a.parquet",
		TargetID:      1,
		Cells: map[string]string{
			"file_path": "file:///wh/data/a.parquet",
			"pos":       "1",
		}})
	mustEdge(t, g, "file:/wh/data/del.parquet", "file:/wh/data/del.parquet:row:0")

	return g
}

func TestLinkDeletesMovesRowUnderAnchor(t *testing.T) {
	g := linkFixture(t)
	LinkDeletes(g, nil)

	del := g.Node("file:/wh/data/del.parquet:row:0")
	anchor := g.Node("file:/wh/data/a.parquet:row:1")
	if del.Y != anchor.Y+deleteStack {
		t.Errorf("delete row y = %g, want %g", del.Y, anchor.Y+deleteStack)
	}

	found := false
	for _, e := range g.Edges() {
		if e.Sibling && e.From == del.ID && e.To == anchor.ID {
			found = true
		}
	}
	if !found {
		t.Error("no peer edge from delete row to anchor")
	}
}

func TestLinkDeletesIdempotent(t *testing.T) {
	g := linkFixture(t)
	LinkDeletes(g, nil)
	firstY := g.Node("file:/wh/data/del.parquet:row:0").Y
	firstEdges := g.EdgeCount()

	LinkDeletes(g, nil)
	if y := g.Node("file:/wh/data/del.parquet:row:0").Y; y != firstY {
		t.Errorf("second pass moved the row: %g, want %g", y, firstY)
	}
	if g.EdgeCount() != firstEdges {
		t.Errorf("second pass added edges: %d, want %d", g.EdgeCount(), firstEdges)
	}
}

func TestLinkDeletesUnresolvableTargetDegrades(t *testing.T) {
	g := linkFixture(t)
	del := g.Node("file:/wh/data/del.parquet:row:0")
	del.Cells["file_path"] = "file:///wh/data/missing.parquet"
	del.FilePath = "file:///wh/data/missing.parquet"
	before := del.Y

	LinkDeletes(g, nil)

	if del.Y != before {
		t.Errorf("unresolvable delete row moved from %g to %g", before, del.Y)
	}
}

// A delete row must only match a data file from its own snapshot; a
// same-path file owned by a different snapshot is not a target.
func TestLinkDeletesCrossSnapshotTargetDegrades(t *testing.T) {
	g := linkFixture(t)
	g.Node("file:/wh/data/a.parquet").SnapshotID = i64(9)
	del := g.Node("file:/wh/data/del.parquet:row:0")
	before := del.Y
	edges := g.EdgeCount()

	LinkDeletes(g, nil)

	if del.Y != before {
		t.Errorf("cross-snapshot delete row moved from %g to %g", before, del.Y)
	}
	if g.EdgeCount() != edges {
		t.Error("cross-snapshot delete row gained a peer edge")
	}
}

func TestLinkDeletesPosBeyondSampleDegrades(t *testing.T) {
	g := linkFixture(t)
	del := g.Node("file:/wh/data/del.parquet:row:0")
	del.Cells["pos"] = "17"
	before := del.Y

	LinkDeletes(g, nil)

	if del.Y != before {
		t.Errorf("out-of-window delete row moved from %g to %g", before, del.Y)
	}
}

func TestLinkDeletesStacksMultipleDeletes(t *testing.T) {
	g := linkFixture(t)
	mustNode(t, g, &graph.Node{ID: "file:/wh/data/del.parquet:row:1", Kind: graph.KindRow, Y: 530,
		SnapshotID:    i64(1),
		DeleteContent: iceberg.DataContentPositionDeletes,
		Cells: map[string]string{
			"file_path": "file:///wh/data/a.parquet",
			"pos":       "1",
		}})
	mustEdge(t, g, "file:/wh/data/del.parquet", "file:/wh/data/del.parquet:row:1")

	LinkDeletes(g, nil)

	anchor := g.Node("file:/wh/data/a.parquet:row:1")
	y0 := g.Node("file:/wh/data/del.parquet:row:0").Y
	y1 := g.Node("file:/wh/data/del.parquet:row:1").Y
	if y0 == y1 {
		t.Errorf("stacked delete rows overlap at y = %g", y0)
	}
	if y0 != anchor.Y+deleteStack && y1 != anchor.Y+deleteStack {
		t.Error("no delete row sits directly under the anchor")
	}
}
