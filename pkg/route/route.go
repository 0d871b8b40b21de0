package route

import "github.com/matzehuels/flowlayout/pkg/layout"

// CrossLevelShift is how far left of a parent's centre a cross-level line
// leaves: half the activity width minus the expand glyph's inset and width.
func CrossLevelShift(width float64) float64 {
	return width/2 - layout.ExpandGlyphInset - layout.ExpandGlyphWidth
}

// Pair is a visible connection to route, by qualified node key.
type Pair struct {
	ID     string
	Source string
	Target string
}

// PairID returns the synthetic edge id for a pair that has no single
// declared line, such as one resolved through a gateway.
func PairID(source, target string) string {
	return source + "->" + target
}

// Edge is a routed connection.
type Edge struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	SourcePoint Point   `json:"source_point"`
	TargetPoint Point   `json:"target_point"`
	Breakpoints []Point `json:"breakpoints,omitempty"`
	CrossLevel  bool    `json:"cross_level,omitempty"`
}

// Points returns the full polyline, endpoints included.
func (e Edge) Points() []Point {
	pts := make([]Point, 0, len(e.Breakpoints)+2)
	pts = append(pts, e.SourcePoint)
	pts = append(pts, e.Breakpoints...)
	return append(pts, e.TargetPoint)
}

// Route resolves each pair against the rendered nodes and computes its
// endpoints and breakpoints. Pairs whose source or target is not rendered,
// typically because it sits inside a collapsed sub-pipeline, are dropped.
// Output order follows pairs.
//
// Endpoints at the same level are the nodes' centres. A cross-level edge
// leaves the source [CrossLevelShift] left of its centre and enters the
// target at its top centre.
//
// An edge whose endpoints are neither on one axis nor within each other's
// row gets one breakpoint. The bend at (target x, source y) is preferred; if
// either leg of that L crosses any other rendered node, the bend at
// (source x, target y) is used instead. Only these two shapes are tried.
func Route(pairs []Pair, nodes []layout.Node) []Edge {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.Key] = i
	}

	edges := make([]Edge, 0, len(pairs))
	for _, p := range pairs {
		si, ok := index[p.Source]
		if !ok {
			continue
		}
		ti, ok := index[p.Target]
		if !ok {
			continue
		}
		src, dst := nodes[si], nodes[ti]

		e := Edge{
			ID:          p.ID,
			Source:      p.Source,
			Target:      p.Target,
			SourcePoint: Point{src.CenterX(), src.CenterY()},
			TargetPoint: Point{dst.CenterX(), dst.CenterY()},
			CrossLevel:  src.Level != dst.Level,
		}
		if e.ID == "" {
			e.ID = PairID(p.Source, p.Target)
		}
		if e.CrossLevel {
			e.SourcePoint.X -= CrossLevelShift(src.Width)
			e.TargetPoint.Y -= dst.Height / 2
		}
		if !aligned(src, dst, e.SourcePoint, e.TargetPoint) {
			e.Breakpoints = []Point{chooseBend(e.SourcePoint, e.TargetPoint, nodes, si, ti)}
		}
		edges = append(edges, e)
	}
	return edges
}

// aligned reports whether a straight line from a to b is acceptable: the
// points share an axis, or each lies within the other node's row.
func aligned(src, dst layout.Node, a, b Point) bool {
	if a.X == b.X || a.Y == b.Y {
		return true
	}
	return b.Y >= src.Top() && b.Y <= src.Bottom() && a.Y >= dst.Top() && a.Y <= dst.Bottom()
}

// chooseBend picks the L-shaped breakpoint between a and b, skipping the
// nodes at indices skipA and skipB in the collision test.
func chooseBend(a, b Point, nodes []layout.Node, skipA, skipB int) Point {
	bend := Point{b.X, a.Y}
	for i, n := range nodes {
		if i == skipA || i == skipB {
			continue
		}
		box := BoxOf(n)
		if box.Crosses(a, bend) || box.Crosses(bend, b) {
			return Point{a.X, b.Y}
		}
	}
	return bend
}
