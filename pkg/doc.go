// Package pkg provides the core libraries for flowlayout task-flow layout.
//
// # Overview
//
// flowlayout turns a task-flow graph (start and end events, activities,
// parallel gateways and nested sub-processes) into a deterministic
// left-to-right picture: every visible node gets a position and every
// connection a routed polyline. The pkg directory is organized into three
// areas:
//
//  1. Engine - [flow], [layout], [route], [view]: pure data in, data out
//  2. Adapters - [render/dot], [pipeline]: painting, caching, orchestration
//  3. Support - [cache], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	graph.json / graph.yaml
//	         ↓
//	    [flow] package (decode + validate, target resolution)
//	         ↓
//	    [layout] package (columns, X pass, Y pass, flatten)
//	         ↓
//	    [route] package (endpoints, breakpoints)
//	         ↓
//	    [view] package (flat nodes + routed edges)
//	         ↓
//	    [render/dot] package (DOT, SVG, PNG)
//
// The expand-set, the set of sub-processes the user has opened, is an input
// to every pass. Toggling a sub-process means computing a new view with a
// new expand-set; nothing is mutated in place.
//
// # Quick Start
//
//	p, err := flow.ReadFile("deploy.yaml")
//	if err != nil {
//	    return err
//	}
//	v, err := view.Project(p, view.NewExpandSet("build"), layout.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	svg, err := dot.RenderSVG(dot.ToDOT(v, dot.Options{}))
//
// # Main Packages
//
// [flow] - The graph model: items, lines, nested pipelines, validation and
// gateway-transparent target resolution. JSON and YAML codecs.
//
// [layout] - Column building, coordinate passes and flattening over a flat
// node arena keyed by qualified path.
//
// [route] - Edge endpoints and the single-bend collision heuristic.
//
// [view] - Combines layout and routing into the serializable view the
// console paints. Owns the ExpandSet type.
//
// [render/dot] - Stateless Graphviz adapter with pinned node positions.
//
// [pipeline] - Parse, layout and render with caching, hooks and coded errors.
// Used by both the CLI and the HTTP server.
//
// [cache] - File, Redis and null cache backends with content-hash keys.
//
// [observability] - Hook registry for parse, layout, render, cache and HTTP
// events, with a Prometheus implementation.
//
// [errors] - Machine-readable error codes and their HTTP statuses.
//
// # Testing
//
// Run tests:
//
//	go test ./...                # All tests
//	go test -short ./...         # Skip Graphviz rendering
//	go test -run Example ./pkg/... # Examples only
//
// Set FLOWLAYOUT_TEST_REDIS to a Redis address to run the Redis cache test.
//
// [flow]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/flow
// [layout]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/layout
// [route]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/route
// [view]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/view
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/flowlayout/pkg/buildinfo
package pkg
