// Package order rearranges a laid-out graph so vertical reading order
// matches table chronology.
//
// The layout engine minimizes edge crossings, which routinely puts an older
// snapshot below a newer one. Reorder fixes that by permuting siblings
// within the vertical slots the layout produced: the set of y coordinates
// in each group is kept, only the assignment of nodes to slots changes.
// Horizontal positions are never touched.
//
// LinkDeletes runs after Reorder and pulls each position-delete row next to
// the data row it deletes, connecting the two with a peer edge.
package order
