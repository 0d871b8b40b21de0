package route

import (
	"slices"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/layout"
)

// box returns a node centred on (x, y).
func box(key string, x, y, w, h float64, level int) layout.Node {
	return layout.Node{Key: key, X: x, Y: y - h/2, Width: w, Height: h, Level: level}
}

func TestRouteSameLevelAligned(t *testing.T) {
	nodes := []layout.Node{
		box("a", 0, 0, 42, 42, 0),
		box("b", 200, 0, 200, 42, 0),
	}
	edges := Route([]Pair{{Source: "a", Target: "b"}}, nodes)
	if len(edges) != 1 {
		t.Fatalf("Route() returned %d edges, want 1", len(edges))
	}
	e := edges[0]
	if e.ID != "a->b" {
		t.Errorf("ID = %q, want a->b", e.ID)
	}
	if e.SourcePoint != (Point{0, 0}) || e.TargetPoint != (Point{200, 0}) {
		t.Errorf("endpoints = %v -> %v, want centres", e.SourcePoint, e.TargetPoint)
	}
	if e.Breakpoints != nil || e.CrossLevel {
		t.Errorf("breakpoints = %v, cross = %v, want none", e.Breakpoints, e.CrossLevel)
	}
}

func TestRouteSameRowNoBend(t *testing.T) {
	// An event and an activity sharing a top edge have centres 6 apart.
	nodes := []layout.Node{
		{Key: "start", X: 21, Width: 42, Height: 42},
		{Key: "a", X: 222, Width: 200, Height: 54},
	}
	edges := Route([]Pair{{Source: "start", Target: "a"}}, nodes)
	if len(edges) != 1 {
		t.Fatalf("Route() returned %d edges, want 1", len(edges))
	}
	if edges[0].Breakpoints != nil {
		t.Errorf("Breakpoints = %v, want none", edges[0].Breakpoints)
	}
	if want := (Point{222, 27}); edges[0].TargetPoint != want {
		t.Errorf("TargetPoint = %v, want %v", edges[0].TargetPoint, want)
	}
}

func TestRouteDropsHiddenEndpoints(t *testing.T) {
	nodes := []layout.Node{box("a", 0, 0, 42, 42, 0), box("b", 100, 0, 42, 42, 0)}
	pairs := []Pair{
		{Source: "a", Target: "p/x"},
		{Source: "a", Target: "b"},
		{Source: "p/z", Target: "b"},
	}
	edges := Route(pairs, nodes)
	if len(edges) != 1 || edges[0].ID != "a->b" {
		t.Fatalf("Route() = %+v, want only a->b", edges)
	}
}

func TestRouteCrossLevelOffsets(t *testing.T) {
	nodes := []layout.Node{
		box("p", 222, 27, 200, 54, 0),
		box("p/x", 782, 121, 200, 54, 1),
	}
	edges := Route([]Pair{{ID: "p=>x", Source: "p", Target: "p/x"}}, nodes)
	if len(edges) != 1 {
		t.Fatalf("Route() returned %d edges, want 1", len(edges))
	}
	e := edges[0]
	if !e.CrossLevel {
		t.Error("CrossLevel = false, want true")
	}
	if e.ID != "p=>x" {
		t.Errorf("ID = %q, want the pair id", e.ID)
	}
	if want := (Point{222 - (100 - 14 - 24), 27}); e.SourcePoint != want {
		t.Errorf("SourcePoint = %v, want %v", e.SourcePoint, want)
	}
	if want := (Point{782, 94}); e.TargetPoint != want {
		t.Errorf("TargetPoint = %v, want %v", e.TargetPoint, want)
	}
	if want := []Point{{782, 27}}; !slices.Equal(e.Breakpoints, want) {
		t.Errorf("Breakpoints = %v, want %v", e.Breakpoints, want)
	}
}

func TestRouteBend(t *testing.T) {
	src := box("a", 0, 0, 42, 42, 0)
	dst := box("b", 400, 200, 42, 42, 0)

	tests := []struct {
		name  string
		extra []layout.Node
		want  Point
	}{
		{"clear path bends at target x", nil, Point{400, 0}},
		{"blocked horizontal leg", []layout.Node{box("o", 200, 0, 100, 40, 0)}, Point{0, 200}},
		{"blocked vertical leg", []layout.Node{box("o", 400, 100, 100, 40, 0)}, Point{0, 200}},
		{"obstacle elsewhere", []layout.Node{box("o", 200, 100, 40, 40, 0)}, Point{400, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := append([]layout.Node{src, dst}, tt.extra...)
			edges := Route([]Pair{{Source: "a", Target: "b"}}, nodes)
			if len(edges) != 1 {
				t.Fatalf("Route() returned %d edges", len(edges))
			}
			if got := edges[0].Breakpoints; !slices.Equal(got, []Point{tt.want}) {
				t.Errorf("Breakpoints = %v, want [%v]", got, tt.want)
			}
		})
	}
}

func TestRouteKeepsOrder(t *testing.T) {
	nodes := []layout.Node{
		box("a", 0, 0, 42, 42, 0),
		box("b", 100, 0, 42, 42, 0),
		box("c", 200, 0, 42, 42, 0),
	}
	pairs := []Pair{{Source: "b", Target: "c"}, {Source: "a", Target: "b"}}
	edges := Route(pairs, nodes)
	var ids []string
	for _, e := range edges {
		ids = append(ids, e.ID)
	}
	if want := []string{"b->c", "a->b"}; !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestBoxCrosses(t *testing.T) {
	b := Box{Left: 0, Top: 0, Right: 10, Bottom: 10}
	tests := []struct {
		name string
		a, c Point
		want bool
	}{
		{"through the middle", Point{-5, 5}, Point{15, 5}, true},
		{"ends inside", Point{-5, 5}, Point{5, 5}, true},
		{"fully inside", Point{2, 2}, Point{8, 8}, true},
		{"diagonal through", Point{-5, -5}, Point{15, 15}, true},
		{"along top border", Point{-5, 0}, Point{15, 0}, false},
		{"stops at border", Point{-5, 5}, Point{0, 5}, false},
		{"touches corner", Point{-5, 5}, Point{5, -5}, false},
		{"misses", Point{-5, 20}, Point{15, 20}, false},
		{"vertical miss", Point{20, -5}, Point{20, 15}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Crosses(tt.a, tt.c); got != tt.want {
				t.Errorf("Crosses(%v, %v) = %v, want %v", tt.a, tt.c, got, tt.want)
			}
		})
	}
}

func TestEdgePoints(t *testing.T) {
	e := Edge{
		SourcePoint: Point{0, 0},
		TargetPoint: Point{10, 10},
		Breakpoints: []Point{{10, 0}},
	}
	want := []Point{{0, 0}, {10, 0}, {10, 10}}
	if got := e.Points(); !slices.Equal(got, want) {
		t.Errorf("Points() = %v, want %v", got, want)
	}
}
