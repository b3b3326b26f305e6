// Package layout computes node positions for a table graph.
//
// The Graphviz engine converts the graph to DOT with fixed node sizes,
// runs the dot layout, and reads positions back through Graphviz's "plain"
// output format. Positions are written into the graph nodes in place;
// the graph's structure and ordering keys are never touched.
//
// Layout output is a starting point, not the final picture: the order
// package afterwards reorders sibling rows chronologically, and interactive
// use moves nodes freely. The engine therefore only has to produce a sane
// left-to-right tier arrangement with no overlaps.
package layout
