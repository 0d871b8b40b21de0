// Package dot paints a computed view through Graphviz.
//
// # Overview
//
// The layout engine never touches a drawing surface. This package is the
// stateless adapter on the other side: it reads a [view.View] and writes
// Graphviz DOT in which every node is pinned where the layout put it.
//
//	v, err := view.Project(p, expand, layout.DefaultOptions())
//	src := dot.ToDOT(v, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(src)
//
// # Shapes
//
//   - Start and end events are circles; the end event gets a double outline.
//   - Activities are rounded boxes filled by status.
//   - Collapsed sub-processes have a dashed outline, expanded ones a bold one.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz] in process with the neato
// engine, which honours pinned positions.
package dot
