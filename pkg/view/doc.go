// Package view projects a pipeline and an expand-set into the flat node and
// edge lists a painting surface consumes.
//
// [Project] is the single entry point. It runs a full layout pass, flattens
// the result in paint order, collects the visible connections and routes
// them. Toggling a node means editing the [ExpandSet] and calling Project
// again; views are never patched.
//
// Connections come from two places. Within a level, every rendered node is
// joined to the targets [flow.ResolveTargets] yields for it, so gateways
// disappear from the output. Across levels, an expanded activity is joined to
// each node in its nested level's first column. Connections whose endpoint is
// hidden inside a collapsed sub-pipeline are dropped without error.
//
// Status and metadata travel through untouched on each [Node].
package view
