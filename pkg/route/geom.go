package route

import "github.com/matzehuels/flowlayout/pkg/layout"

// Point is a position in layout space, y growing downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned rectangle.
type Box struct {
	Left, Top, Right, Bottom float64
}

// BoxOf returns the bounding box of a placed node.
func BoxOf(n layout.Node) Box {
	return Box{Left: n.Left(), Top: n.Top(), Right: n.Right(), Bottom: n.Bottom()}
}

// Contains reports whether p lies inside box or on its border.
func (box Box) Contains(p Point) bool {
	return p.X >= box.Left && p.X <= box.Right && p.Y >= box.Top && p.Y <= box.Bottom
}

// Crosses reports whether the segment from a to b passes through the
// interior of box. Segments that only graze the border do not count.
//
// This is Liang-Barsky clipping against the open box: the segment is
// parameterised as a + t*(b-a) and the admissible t range is narrowed by
// each of the four slabs.
func (box Box) Crosses(a, b Point) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q > 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return false
			}
			t1 = min(t1, r)
		}
		return true
	}
	if !clip(-dx, a.X-box.Left) || !clip(dx, box.Right-a.X) ||
		!clip(-dy, a.Y-box.Top) || !clip(dy, box.Bottom-a.Y) {
		return false
	}
	return t0 < t1
}
