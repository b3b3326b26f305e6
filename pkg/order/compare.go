package order

import (
	"cmp"

	"github.com/icemap-dev/icemap/pkg/graph"
)

// Compare orders two sibling nodes of the same kind by their domain keys.
// Missing numeric keys sort last; the final tie-breaker is always a path or
// synthetic identifier, so the order is total and deterministic.
func Compare(a, b *graph.Node) int {
	switch a.Kind {
	case graph.KindMetadata:
		return compareMetadata(&a.Order, &b.Order)
	case graph.KindSnapshot:
		return compareSnapshot(&a.Order, &b.Order)
	case graph.KindManifest:
		return compareManifest(&a.Order, &b.Order)
	case graph.KindDataFile:
		return compareFile(&a.Order, &b.Order)
	default:
		return compareFallback(&a.Order, &b.Order)
	}
}

func compareMetadata(a, b *graph.OrderKey) int {
	// Parseable versions first, ascending; unparseable files sort after by
	// name alone.
	if (a.Version != nil) != (b.Version != nil) {
		if a.Version != nil {
			return -1
		}
		return 1
	}
	if c := comparePtr(a.Version, b.Version); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}

func compareSnapshot(a, b *graph.OrderKey) int {
	if c := comparePtr(a.Timestamp, b.Timestamp); c != 0 {
		return c
	}
	if c := comparePtr(a.Seq, b.Seq); c != 0 {
		return c
	}
	return comparePtr(a.SnapID, b.SnapID)
}

func compareManifest(a, b *graph.OrderKey) int {
	if c := comparePtr(a.Seq, b.Seq); c != 0 {
		return c
	}
	if c := comparePtr(a.MinSeq, b.MinSeq); c != 0 {
		return c
	}
	if c := comparePtr(a.Added, b.Added); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}

func compareFile(a, b *graph.OrderKey) int {
	if c := comparePtr(a.Seq, b.Seq); c != 0 {
		return c
	}
	if c := comparePtr(a.FileSeq, b.FileSeq); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Status, b.Status); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}

func compareFallback(a, b *graph.OrderKey) int {
	if c := cmp.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	return cmp.Compare(a.RowKey, b.RowKey)
}

func comparePtr(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}
