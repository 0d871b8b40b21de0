// Package route turns visible node pairs into concrete polylines.
//
// Routing is local and greedy. Each edge gets at most one breakpoint, chosen
// between the two canonical L shapes by testing both legs against the boxes
// of the other rendered nodes. There is no global search, so densely
// expanded graphs can still produce crossing lines.
package route
