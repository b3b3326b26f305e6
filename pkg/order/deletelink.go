package order

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/icemap-dev/icemap/pkg/graph"
	"github.com/icemap-dev/icemap/pkg/iceberg"
	"github.com/icemap-dev/icemap/pkg/ids"
)

// Vertical offset between an anchor data row and the delete rows stacked
// under it.
const deleteStack = 24

// LinkDeletes connects position-delete rows to the data rows they delete
// and moves each delete row directly under its anchor.
//
// A delete row names its target as (file_path, pos). The target row is
// looked up among the sampled rows of the data file with that normalized
// path in the delete row's own snapshot; pos is the row ordinal within the
// file. Anything unresolvable degrades silently and the delete row keeps
// its reordered position: target file absent or owned by a different
// snapshot, pos beyond the sampled window, malformed cells.
//
// The pass is idempotent. Anchor positions are read before any delete row
// moves, stacking is recomputed from scratch, and the peer edge is only
// added once.
func LinkDeletes(g *graph.Graph, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}

	rowsByFile := dataRowsByFile(g)

	// Snapshot anchor positions first so moving delete rows cannot feed
	// back into later placements.
	anchorY := make(map[string]float64)
	for _, rows := range rowsByFile {
		for _, r := range rows {
			anchorY[r.ID] = r.Y
		}
	}

	linked, unresolved := 0, 0
	stacked := make(map[string]int)
	for _, n := range g.NodesOfKind(graph.KindRow) {
		if n.DeleteContent != iceberg.DataContentPositionDeletes {
			continue
		}
		target, pos, ok := deleteTarget(n)
		if !ok {
			unresolved++
			continue
		}
		key, ok := anchorKey(n.SnapshotID, target)
		if !ok {
			unresolved++
			continue
		}
		rows := rowsByFile[key]
		if pos < 0 || pos >= len(rows) {
			unresolved++
			continue
		}
		anchor := rows[pos]

		stacked[anchor.ID]++
		n.Y = anchorY[anchor.ID] + float64(stacked[anchor.ID])*deleteStack

		// AddSiblingEdge fails only when the link exists from a previous pass.
		_ = g.AddSiblingEdge(n.ID, anchor.ID)
		linked++
	}

	if linked > 0 || unresolved > 0 {
		logger.Debug("delete rows linked", "linked", linked, "unresolved", unresolved)
	}
}

// anchorKey identifies a data file for delete resolution: the owning
// snapshot id plus the normalized recorded path. A nil snapshot id cannot
// anchor anything.
func anchorKey(snapID *int64, path string) (string, bool) {
	if snapID == nil || path == "" {
		return "", false
	}
	return fmt.Sprintf("%d:%s", *snapID, ids.Normalize(path)), true
}

// dataRowsByFile indexes the data rows of every data file by
// (snapshot id, normalized recorded path), in row ordinal order. Keying by
// snapshot keeps a delete row from matching a same-path file that belongs
// to a different snapshot.
func dataRowsByFile(g *graph.Graph) map[string][]*graph.Node {
	out := make(map[string][]*graph.Node)
	for _, f := range g.NodesOfKind(graph.KindDataFile) {
		if f.DeleteContent != 0 {
			continue
		}
		key, ok := anchorKey(f.SnapshotID, f.FilePath)
		if !ok {
			continue
		}
		var rows []*graph.Node
		for _, c := range g.Children(f.ID) {
			if c.Kind == graph.KindRow {
				rows = append(rows, c)
			}
		}
		if len(rows) > 0 {
			out[key] = rows
		}
	}
	return out
}

// deleteTarget extracts the (file_path, pos) reference from a delete row's
// cells.
func deleteTarget(n *graph.Node) (string, int, bool) {
	target := n.FilePath
	if target == "" {
		target = n.Cells["file_path"]
	}
	if target == "" {
		return "", 0, false
	}
	posCell, ok := n.Cells["pos"]
	if !ok {
		return "", 0, false
	}
	pos, err := strconv.Atoi(posCell)
	if err != nil {
		return "", 0, false
	}
	return target, pos, true
}
