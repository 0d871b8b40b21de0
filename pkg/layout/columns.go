package layout

import (
	"fmt"
	"slices"

	"github.com/matzehuels/flowlayout/pkg/flow"
)

// ExpandState reports which nodes currently show their nested pipeline. It
// is owned by the caller and only read during a pass.
type ExpandState interface {
	Has(key string) bool
}

type noneExpanded struct{}

func (noneExpanded) Has(string) bool { return false }

type builder struct {
	l      *Layout
	expand ExpandState
	opts   Options
	stack  []*flow.Pipeline
}

// buildColumns places the items of p into ordered columns, breadth first
// from the start event, and returns the columns as arena indices.
//
// Every item is placed at most once, in the first column that reaches it.
// The end event is held back and emitted as its own final column once the
// frontier is exhausted. When includeBothEnds is false, used for nested
// levels, neither the start nor the end event is placed and column 0 holds
// the start event's resolved targets. Expanded items with a nested pipeline
// get their children built recursively at level+1.
func (b *builder) buildColumns(p *flow.Pipeline, parent int, level int, includeBothEnds bool) ([][]int, error) {
	if slices.Contains(b.stack, p) {
		return nil, flow.ErrNestedCycle
	}
	b.stack = append(b.stack, p)
	defer func() { b.stack = b.stack[:len(b.stack)-1] }()

	parentKey := ""
	if parent >= 0 {
		parentKey = b.l.Nodes[parent].Key
	}

	placed := map[string]bool{p.StartEvent.ID: true, p.EndEvent.ID: true}
	var frontier []*flow.Item
	if includeBothEnds {
		frontier = []*flow.Item{&p.StartEvent}
	} else {
		entry, _, err := b.successors(p, &p.StartEvent, placed)
		if err != nil {
			return nil, err
		}
		frontier = entry
	}

	var items [][]*flow.Item
	endReached := false
	for len(frontier) > 0 {
		items = append(items, frontier)
		var next []*flow.Item
		for _, it := range frontier {
			succ, hitsEnd, err := b.successors(p, it, placed)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", Key(parentKey, it.ID), err)
			}
			endReached = endReached || hitsEnd
			next = append(next, succ...)
		}
		frontier = next
	}
	if includeBothEnds && endReached {
		items = append(items, []*flow.Item{&p.EndEvent})
	}

	cols := make([][]int, 0, len(items))
	for c, col := range items {
		idxs := make([]int, 0, len(col))
		for _, it := range col {
			i, err := b.place(it, parentKey, level, c)
			if err != nil {
				return nil, err
			}
			idxs = append(idxs, i)
		}
		cols = append(cols, idxs)
	}
	return cols, nil
}

// successors returns the not-yet-placed visible targets of it and marks
// them placed, and reports whether the end event is among the targets.
// Start and end events are pre-marked, so they are never returned.
func (b *builder) successors(p *flow.Pipeline, it *flow.Item, placed map[string]bool) ([]*flow.Item, bool, error) {
	ids, err := flow.ResolveTargets(it, p, false)
	if err != nil {
		return nil, false, err
	}
	var out []*flow.Item
	for _, id := range ids {
		if placed[id] {
			continue
		}
		target, ok := p.Lookup(id)
		if !ok {
			return nil, false, fmt.Errorf("%w: %s", flow.ErrDanglingLine, id)
		}
		placed[id] = true
		out = append(out, target)
	}
	return out, slices.Contains(ids, p.EndEvent.ID), nil
}

// place appends one node to the arena and, when it is expanded, builds its
// children.
func (b *builder) place(it *flow.Item, parentKey string, level, column int) (int, error) {
	shape, w, h, err := ShapeOf(it.Kind, b.opts)
	if err != nil {
		return 0, err
	}
	key := Key(parentKey, it.ID)
	if _, dup := b.l.index[key]; dup {
		return 0, fmt.Errorf("%w: %s", flow.ErrDuplicateID, key)
	}
	n := Node{
		Key:        key,
		ID:         it.ID,
		ParentKey:  parentKey,
		Kind:       it.Kind,
		Shape:      shape,
		Width:      w,
		Height:     h,
		Level:      level,
		Column:     column,
		Expandable: it.HasPipeline(),
		Item:       it,
	}
	n.Expanded = n.Expandable && b.expand.Has(key)
	i := b.l.add(n)

	if !n.Expanded {
		return i, nil
	}
	children, err := b.buildColumns(it.Pipeline, i, level+1, false)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	b.l.Nodes[i].Children = children
	return i, nil
}
