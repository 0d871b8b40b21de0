package view

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/route"
)

// Node is one rendered node as the painting surface consumes it.
type Node struct {
	Key        string         `json:"key"`
	ID         string         `json:"id"`
	Parent     string         `json:"parent,omitempty"`
	Kind       flow.Kind      `json:"kind"`
	Label      string         `json:"label"`
	Shape      layout.Shape   `json:"shape"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Level      int            `json:"level"`
	Column     int            `json:"column"`
	Expandable bool           `json:"expandable,omitempty"`
	Expanded   bool           `json:"expanded,omitempty"`
	Status     flow.Status    `json:"status,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// View is the flat projection of one layout pass: nodes in paint order and
// routed edges. Width and Height span the rendered nodes.
type View struct {
	Nodes  []Node       `json:"nodes"`
	Edges  []route.Edge `json:"edges"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
}

// Node returns the rendered node with the given key.
func (v *View) Node(key string) (Node, bool) {
	for _, n := range v.Nodes {
		if n.Key == key {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the routed edge with the given id.
func (v *View) Edge(id string) (route.Edge, bool) {
	for _, e := range v.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return route.Edge{}, false
}

// Project lays out p for the given expand-set, flattens the result and
// routes every visible connection. It is a pure function of its inputs.
func Project(p *flow.Pipeline, expand layout.ExpandState, opts layout.Options) (*View, error) {
	l, err := layout.Compute(p, expand, opts)
	if err != nil {
		return nil, err
	}
	flat := layout.Flatten(l, expand)

	pairs, err := collectPairs(p, l, flat)
	if err != nil {
		return nil, err
	}
	edges := route.Route(pairs, flat)

	v := &View{Nodes: make([]Node, len(flat)), Edges: edges}
	for i, n := range flat {
		v.Nodes[i] = project(n)
	}
	if l.Len() > 0 {
		minX, minY, maxX, maxY := l.Bounds()
		v.Width, v.Height = maxX-minX, maxY-minY
	}
	return v, nil
}

// collectPairs lists the connections between rendered nodes: every node's
// resolved targets within its own level, then from each expanded parent to
// the first column of its children. Pairs are deduplicated and kept in
// paint order.
//
// A pair drawn from exactly one declared line keeps that line's id,
// qualified by the level's parent key. Pairs resolved through a gateway and
// cross-level pairs have no single line and get [route.PairID].
func collectPairs(root *flow.Pipeline, l *layout.Layout, flat []layout.Node) ([]route.Pair, error) {
	var pairs []route.Pair
	seen := make(map[string]bool)
	add := func(src, dst, line string) {
		id := route.PairID(src, dst)
		if seen[id] {
			return
		}
		seen[id] = true
		if line != "" {
			id = line
		}
		pairs = append(pairs, route.Pair{ID: id, Source: src, Target: dst})
	}

	for _, n := range flat {
		level := root
		if n.ParentKey != "" {
			parent, ok := l.Node(n.ParentKey)
			if !ok {
				return nil, fmt.Errorf("%s: parent %s not in layout", n.Key, n.ParentKey)
			}
			level = parent.Item.Pipeline
		}
		targets, err := flow.ResolveTargets(n.Item, level, false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.Key, err)
		}
		direct := directLines(n.Item, level)
		for _, id := range targets {
			line := ""
			if lineID, ok := direct[id]; ok {
				line = layout.Key(n.ParentKey, lineID)
			}
			add(n.Key, layout.Key(n.ParentKey, id), line)
		}
		if n.Expanded && len(n.Children) > 0 {
			for _, idx := range n.Children[0] {
				add(n.Key, l.Nodes[idx].Key, "")
			}
		}
	}
	return pairs, nil
}

// directLines maps each item reached from it by exactly one outgoing line
// to that line's id. Gateways never appear as resolved targets, so a line
// into a gateway is never looked up.
func directLines(it *flow.Item, p *flow.Pipeline) map[string]string {
	lines := make(map[string]string, len(it.Outgoing))
	count := make(map[string]int, len(it.Outgoing))
	for _, lineID := range it.Outgoing {
		line, ok := p.Flows[lineID]
		if !ok {
			continue
		}
		lines[line.Target] = lineID
		count[line.Target]++
	}
	for target, c := range count {
		if c > 1 {
			delete(lines, target)
		}
	}
	return lines
}

func project(n layout.Node) Node {
	out := Node{
		Key:        n.Key,
		ID:         n.ID,
		Parent:     n.ParentKey,
		Kind:       n.Kind,
		Shape:      n.Shape,
		Width:      n.Width,
		Height:     n.Height,
		X:          n.X,
		Y:          n.Y,
		Level:      n.Level,
		Column:     n.Column,
		Expandable: n.Expandable,
		Expanded:   n.Expanded,
	}
	if n.Item != nil {
		out.Label = n.Item.Label()
		out.Status = n.Item.Status
		out.Meta = n.Item.Meta
	}
	return out
}

// Marshal encodes v as indented JSON. The encoding is stable for equal
// views, so it can be compared or hashed.
func Marshal(v *View) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a view produced by [Marshal].
func Unmarshal(data []byte) (*View, error) {
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Hash returns the hex SHA-256 of the view's JSON encoding.
func Hash(v *View) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
