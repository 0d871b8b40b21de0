package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/flow"
)

// KeySeparator joins the ids of nested items into a qualified key.
const KeySeparator = "/"

// Key returns the qualified key of an item whose owning activity has
// parentKey. Root items are keyed by their bare id, so ids that repeat in
// different sub-pipelines still get distinct keys.
func Key(parentKey, id string) string {
	if parentKey == "" {
		return id
	}
	return parentKey + KeySeparator + id
}

// ParentOf returns the key of the activity that owns key, or "" for root keys.
func ParentOf(key string) string {
	if i := strings.LastIndex(key, KeySeparator); i >= 0 {
		return key[:i]
	}
	return ""
}

// Shape is the outline the painting surface draws for a node.
type Shape int

const (
	// ShapeRect is used for activities.
	ShapeRect Shape = iota
	// ShapeRound is used for start and end events.
	ShapeRound
)

// String returns the wire name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeRect:
		return "rect"
	case ShapeRound:
		return "round"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(b []byte) error {
	switch string(b) {
	case "rect":
		*s = ShapeRect
	case "round":
		*s = ShapeRound
	default:
		return fmt.Errorf("unknown shape %q", b)
	}
	return nil
}

// ShapeOf returns the outline and size for an item kind. Gateways have no
// shape because they are never placed.
func ShapeOf(k flow.Kind, o Options) (shape Shape, width, height float64, err error) {
	switch k {
	case flow.KindStartEvent, flow.KindEndEvent:
		return ShapeRound, o.EventSize, o.EventSize, nil
	case flow.KindActivity:
		return ShapeRect, o.ActivityWidth, o.ActivityHeight, nil
	case flow.KindParallelGateway, flow.KindConvergeGateway:
		return 0, 0, 0, fmt.Errorf("%w: %s", ErrGatewayPlaced, k)
	default:
		return 0, 0, 0, fmt.Errorf("unknown item kind %s", k)
	}
}

// Node is one placed item. X is the horizontal centre and Y the top edge,
// with y increasing downward.
type Node struct {
	Key       string
	ID        string
	ParentKey string
	Kind      flow.Kind
	Shape     Shape
	Width     float64
	Height    float64
	Level     int
	Column    int
	X         float64
	Y         float64

	// Expandable is set when the item owns a nested pipeline.
	Expandable bool
	// Expanded is set when the item is expandable and in the expand-set.
	Expanded bool
	// Children holds arena indices of the nested level, column by column.
	// It is nil unless the node is expanded.
	Children [][]int

	// Item is the source item; status and metadata pass through it.
	Item *flow.Item
}

// Left returns the x of the left edge.
func (n Node) Left() float64 { return n.X - n.Width/2 }

// Right returns the x of the right edge.
func (n Node) Right() float64 { return n.X + n.Width/2 }

// Top returns the y of the top edge.
func (n Node) Top() float64 { return n.Y }

// Bottom returns the y of the bottom edge.
func (n Node) Bottom() float64 { return n.Y + n.Height }

// CenterX returns the horizontal centre.
func (n Node) CenterX() float64 { return n.X }

// CenterY returns the vertical centre.
func (n Node) CenterY() float64 { return n.Y + n.Height/2 }

// Layout is the arena produced by one layout pass. Nodes are stored flat and
// refer to each other by index or key, never by pointer.
type Layout struct {
	Nodes   []Node
	Columns [][]int

	index map[string]int
}

func newLayout() *Layout {
	return &Layout{index: make(map[string]int)}
}

// Node returns the node with the given key.
func (l *Layout) Node(key string) (*Node, bool) {
	i, ok := l.index[key]
	if !ok {
		return nil, false
	}
	return &l.Nodes[i], true
}

// Len returns the number of placed nodes, nested ones included.
func (l *Layout) Len() int { return len(l.Nodes) }

// Bounds returns the smallest box containing every node.
func (l *Layout) Bounds() (minX, minY, maxX, maxY float64) {
	for i, n := range l.Nodes {
		if i == 0 {
			minX, minY, maxX, maxY = n.Left(), n.Top(), n.Right(), n.Bottom()
			continue
		}
		minX = min(minX, n.Left())
		minY = min(minY, n.Top())
		maxX = max(maxX, n.Right())
		maxY = max(maxY, n.Bottom())
	}
	return minX, minY, maxX, maxY
}

func (l *Layout) add(n Node) int {
	i := len(l.Nodes)
	l.Nodes = append(l.Nodes, n)
	l.index[n.Key] = i
	return i
}
