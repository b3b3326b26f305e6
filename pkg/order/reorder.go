package order

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/icemap-dev/icemap/pkg/graph"
)

// Minimum vertical spacing between sibling centers, per kind.
var gaps = map[graph.Kind]float64{
	graph.KindMetadata: 80,
	graph.KindSnapshot: 70,
	graph.KindManifest: 60,
	graph.KindDataFile: 50,
	graph.KindRow:      30,
	graph.KindError:    50,
}

func gapFor(kind graph.Kind) float64 {
	if g, ok := gaps[kind]; ok {
		return g
	}
	return 50
}

// Reorder permutes sibling y positions so each group reads chronologically
// top to bottom. Tier by tier: metadata, snapshots, and manifests are
// reordered within their parent's group; files and rows are reordered
// globally, following their (already reordered) parent's position first and
// the domain order second. X positions are left alone.
func Reorder(g *graph.Graph, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}

	for _, kind := range []graph.Kind{graph.KindMetadata, graph.KindSnapshot, graph.KindManifest} {
		for _, group := range groupByParent(g, kind) {
			reorderGroup(group, gapFor(kind))
		}
	}

	reorderGlobal(g, graph.KindDataFile)
	reorderGlobal(g, graph.KindRow)

	logger.Debug("graph reordered", "nodes", g.NodeCount())
}

// groupByParent buckets nodes of one kind by their first (primary) parent.
// A shared node is reordered with the siblings of the parent that expanded
// it; its other parents just point into that group.
func groupByParent(g *graph.Graph, kind graph.Kind) [][]*graph.Node {
	byParent := make(map[string][]*graph.Node)
	var parentOrder []string
	for _, n := range g.NodesOfKind(kind) {
		parents := g.Parents(n.ID)
		if len(parents) == 0 {
			continue
		}
		pid := parents[0].ID
		if _, ok := byParent[pid]; !ok {
			parentOrder = append(parentOrder, pid)
		}
		byParent[pid] = append(byParent[pid], n)
	}

	out := make([][]*graph.Node, 0, len(parentOrder))
	for _, pid := range parentOrder {
		out = append(out, byParent[pid])
	}
	return out
}

// reorderGroup reassigns a sibling group's y slots in domain order. The
// slots are the group's existing y coordinates sorted ascending; each node
// gets the matching slot, pushed down when the slot would violate the
// minimum gap to its predecessor.
func reorderGroup(nodes []*graph.Node, gap float64) {
	if len(nodes) < 2 {
		return
	}

	slots := make([]float64, len(nodes))
	for i, n := range nodes {
		slots[i] = n.Y
	}
	slices.Sort(slots)

	sorted := make([]*graph.Node, len(nodes))
	copy(sorted, nodes)
	slices.SortStableFunc(sorted, Compare)

	prev := slots[0] - gap
	for i, n := range sorted {
		y := slots[i]
		if y < prev+gap {
			y = prev + gap
		}
		n.Y = y
		prev = y
	}
}

// reorderGlobal reorders all nodes of one kind across the whole tier. The
// desired order follows the primary parent's y first, so children stay near
// their parent, and the domain comparator within a parent.
func reorderGlobal(g *graph.Graph, kind graph.Kind) {
	nodes := g.NodesOfKind(kind)
	if len(nodes) < 2 {
		return
	}

	parentY := make(map[string]float64, len(nodes))
	parentSeq := make(map[string]int, len(nodes))
	for _, n := range nodes {
		if parents := g.Parents(n.ID); len(parents) > 0 {
			parentY[n.ID] = parents[0].Y
			parentSeq[n.ID] = indexOf(g, parents[0].ID)
		}
	}

	slots := make([]float64, len(nodes))
	for i, n := range nodes {
		slots[i] = n.Y
	}
	slices.Sort(slots)

	sorted := make([]*graph.Node, len(nodes))
	copy(sorted, nodes)
	slices.SortStableFunc(sorted, func(a, b *graph.Node) int {
		ay, by := parentY[a.ID], parentY[b.ID]
		if ay != by {
			if ay < by {
				return -1
			}
			return 1
		}
		// Same parent y (usually the same parent): domain order decides.
		if as, bs := parentSeq[a.ID], parentSeq[b.ID]; as != bs {
			return as - bs
		}
		return Compare(a, b)
	})

	gap := gapFor(kind)
	prev := slots[0] - gap
	for i, n := range sorted {
		y := slots[i]
		if y < prev+gap {
			y = prev + gap
		}
		n.Y = y
		prev = y
	}
}

// indexOf returns a node's insertion index, used to separate distinct
// parents that happen to share a y coordinate.
func indexOf(g *graph.Graph, id string) int {
	for i, n := range g.Nodes() {
		if n.ID == id {
			return i
		}
	}
	return -1
}
