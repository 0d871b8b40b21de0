package layout

// Flatten returns the nodes in paint order: columns left to right, each
// column top to bottom, with an expanded node's whole subtree inserted right
// after it. Later entries are drawn above earlier ones.
//
// A node's children are only visited when it is expanded and expand
// reports its key, so a stale arena never leaks a collapsed subtree.
func Flatten(l *Layout, expand ExpandState) []Node {
	if expand == nil {
		expand = noneExpanded{}
	}
	out := make([]Node, 0, len(l.Nodes))
	var walk func(cols [][]int)
	walk = func(cols [][]int) {
		for _, col := range cols {
			for _, idx := range col {
				n := l.Nodes[idx]
				out = append(out, n)
				if n.Expanded && len(n.Children) > 0 && expand.Has(n.Key) {
					walk(n.Children)
				}
			}
		}
	}
	walk(l.Columns)
	return out
}
