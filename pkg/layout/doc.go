// Package layout computes deterministic coordinates for a task-flow
// pipeline and its expanded sub-pipelines.
//
// # Overview
//
// A layout pass takes an immutable [flow.Pipeline] and the caller's
// expand-set and produces a [Layout]: a flat arena of [Node] values plus the
// root column structure. Nodes reference each other by arena index
// ([Node.Children]) or by qualified key ([Node.ParentKey]); there are no back
// pointers. Nothing is mutated incrementally: toggling a node means running
// [Compute] again.
//
// # Columns
//
// Items are placed breadth first from the start event. Each column holds the
// not-yet-placed visible targets of the previous column, as resolved by
// [flow.ResolveTargets], so gateways never occupy a slot. The end event is
// held back and gets its own final column.
//
// An activity that owns a nested pipeline and whose key is in the
// expand-set gets its nested level built recursively. Nested levels omit
// their own start and end events because the parent activity stands in for
// them.
//
// # Coordinates
//
// X is a node's horizontal centre, Y its top edge, with y growing downward.
//
//   - Root columns accumulate left to right, one horizontal gap apart.
//   - Nested columns are positioned relative to their parent's x, counted
//     from the last column backward.
//   - Columns stack their nodes top down, each node one vertical gap below
//     the whole subtree of the node above it.
//   - An expanded subtree starts below its parent and below everything
//     placed before it, so subtrees never overlap placed nodes.
//   - The end event moves right of any nested level that reaches past the
//     root level.
//
// # Usage
//
//	l, err := layout.Compute(p, expand, layout.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for _, n := range layout.Flatten(l, expand) {
//	    fmt.Println(n.Key, n.X, n.Y)
//	}
//
// # Concurrency
//
// A pass holds no shared state. Concurrent passes over the same pipeline are
// safe as long as the expand-set is not written during them.
package layout
