package layout

import (
	"math"

	"github.com/matzehuels/flowlayout/pkg/flow"
)

// placeX assigns x to every root node, then derives nested x from each
// expanded parent.
//
// Root columns accumulate left to right: a column starts one gap after the
// right edge of everything before it, and all of its nodes share the centre
// of the column's widest node.
func placeX(l *Layout, o Options) {
	rightEdge := 0.0
	for i, col := range l.Columns {
		colX := rightEdge
		if i > 0 {
			colX += o.HorizontalGap
		}
		w := columnWidth(l, col)
		for _, idx := range col {
			l.Nodes[idx].X = colX + w/2
		}
		rightEdge = max(rightEdge, colX+w)
	}
	for _, col := range l.Columns {
		for _, idx := range col {
			placeChildrenX(l, idx, o)
		}
	}
}

// placeChildrenX positions an expanded node's children relative to it. The
// columns are counted from the last one backward, so the last child column
// sits ChildOffset from the parent and earlier columns step away from it one
// node width plus gap at a time.
func placeChildrenX(l *Layout, parent int, o Options) {
	px := l.Nodes[parent].X
	children := l.Nodes[parent].Children
	for c, col := range children {
		reverse := float64(len(children) - 1 - c)
		for _, idx := range col {
			n := &l.Nodes[idx]
			n.X = px + o.ChildOffset + (n.Width+o.HorizontalGap)*reverse
		}
	}
	for _, col := range children {
		for _, idx := range col {
			placeChildrenX(l, idx, o)
		}
	}
}

func columnWidth(l *Layout, col []int) float64 {
	w := 0.0
	for _, idx := range col {
		w = max(w, l.Nodes[idx].Width)
	}
	return w
}

// yPass stacks nodes vertically. floor is the deepest bottom edge (plus gap)
// of everything placed so far; it is threaded through the recursion so an
// expanded subtree never starts above a node that was already placed.
// placed lists nodes in placement order for the collision check in clear.
type yPass struct {
	l      *Layout
	gap    float64
	floor  float64
	placed []int
}

// placeY assigns y to every node. Root columns start at 0.
func placeY(l *Layout, o Options) {
	p := &yPass{l: l, gap: o.VerticalGap}
	p.level(l.Columns, 0)
}

// level places one column list whose columns all start at base and returns
// the deepest bottom edge it produced. Columns are processed last to first.
// Within a column each node starts one gap below the previous node's whole
// subtree, and an expanded node's children start one gap below the node
// itself, or at the floor if that is lower.
//
// Child levels grow rightward from the last column, so a subtree placed for
// a later column can already occupy the x range of an earlier one. Every
// node is therefore pushed below any placed node it would intersect.
func (p *yPass) level(cols [][]int, base float64) float64 {
	deepest := base
	for c := len(cols) - 1; c >= 0; c-- {
		top := base
		for _, idx := range cols[c] {
			n := &p.l.Nodes[idx]
			n.Y = p.clear(n, top)
			p.placed = append(p.placed, idx)
			bottom := n.Bottom()
			if len(n.Children) > 0 {
				start := max(bottom+p.gap, p.floor)
				bottom = max(bottom, p.level(n.Children, start))
			}
			p.floor = max(p.floor, bottom+p.gap)
			deepest = max(deepest, bottom)
			top = bottom + p.gap
		}
	}
	return deepest
}

// clear returns the first y at or below top where n intersects no placed
// node. Each collision moves n one gap below the node it hit, so the loop
// ends once a full scan finds nothing.
func (p *yPass) clear(n *Node, top float64) float64 {
	for moved := true; moved; {
		moved = false
		for _, idx := range p.placed {
			o := &p.l.Nodes[idx]
			if n.Left() < o.Right() && o.Left() < n.Right() &&
				top < o.Bottom() && o.Top() < top+n.Height {
				top = o.Bottom() + p.gap
				moved = true
			}
		}
	}
	return top
}

// placeEnd moves the root end event clear of nested levels. When some
// expanded subtree reaches further right than every other root node, the end
// event is pushed one gap plus EndNodeOffset past it; otherwise it keeps the
// position of the root level's last column.
func placeEnd(l *Layout, o Options) {
	if len(l.Columns) == 0 {
		return
	}
	last := l.Columns[len(l.Columns)-1]
	if len(last) != 1 || l.Nodes[last[0]].Kind != flow.KindEndEvent {
		return
	}
	end := last[0]

	maxRoot, maxAll := math.Inf(-1), math.Inf(-1)
	for i, n := range l.Nodes {
		if i == end {
			continue
		}
		maxAll = max(maxAll, n.X)
		if n.Level == 0 {
			maxRoot = max(maxRoot, n.X)
		}
	}
	if maxAll > maxRoot {
		l.Nodes[end].X = maxAll + o.HorizontalGap + o.EndNodeOffset
	}
}
