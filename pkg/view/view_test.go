package view

import (
	"encoding/json"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
)

func nested(t *testing.T) *flow.Pipeline {
	t.Helper()
	inner := flow.NewBuilder("s", "e").
		Activity("x").
		Activity("y").
		Activity("z").
		Chain("s", "x", "y", "z", "e").
		MustBuild()
	return flow.NewBuilder("start", "end").
		Activity("before").
		SubProcess("p", inner).
		Chain("start", "before", "p", "end").
		Status("p", flow.StatusRunning).
		MustBuild()
}

func fanOut(t *testing.T) *flow.Pipeline {
	t.Helper()
	return flow.NewBuilder("start", "end").
		Parallel("pg").
		Activity("a").
		Activity("b").
		Converge("cg").
		Connect("start", "pg").
		Connect("pg", "a").
		Connect("pg", "b").
		Connect("a", "cg").
		Connect("b", "cg").
		Connect("cg", "end").
		MustBuild()
}

func mustProject(t *testing.T, p *flow.Pipeline, expand ExpandSet) *View {
	t.Helper()
	v, err := Project(p, expand, layout.DefaultOptions())
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	return v
}

func nodeKeys(v *View) []string {
	var out []string
	for _, n := range v.Nodes {
		out = append(out, n.Key)
	}
	return out
}

func edgeIDs(v *View) []string {
	var out []string
	for _, e := range v.Edges {
		out = append(out, e.ID)
	}
	return out
}

func TestProjectLinear(t *testing.T) {
	p := flow.NewBuilder("start", "end").
		Activity("a").
		Activity("b").
		Chain("start", "a", "b", "end").
		MustBuild()
	v := mustProject(t, p, nil)

	if got, want := nodeKeys(v), []string{"start", "a", "b", "end"}; !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	if got, want := edgeIDs(v), []string{"l1", "l2", "l3"}; !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	for i, n := range v.Nodes {
		if n.Y != 0 {
			t.Errorf("%s: y = %v, want 0", n.Key, n.Y)
		}
		if i > 0 && n.X <= v.Nodes[i-1].X {
			t.Errorf("%s: x = %v not right of %v", n.Key, n.X, v.Nodes[i-1].X)
		}
	}
	if v.Width != 724 || v.Height != 54 {
		t.Errorf("size = %vx%v, want 724x54", v.Width, v.Height)
	}
}

func TestProjectFanOut(t *testing.T) {
	v := mustProject(t, fanOut(t), nil)

	if got, want := nodeKeys(v), []string{"start", "a", "b", "end"}; !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	if got, want := edgeIDs(v), []string{"start->a", "start->b", "a->end", "b->end"}; !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	a, _ := v.Node("a")
	b, _ := v.Node("b")
	if a.Column != b.Column || b.Y <= a.Y {
		t.Errorf("a=(col %d, y %v) b=(col %d, y %v), want same column, b below", a.Column, a.Y, b.Column, b.Y)
	}
}

func TestProjectCollapsed(t *testing.T) {
	v := mustProject(t, nested(t), nil)

	if got, want := nodeKeys(v), []string{"start", "before", "p", "end"}; !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	for _, e := range v.Edges {
		if e.CrossLevel {
			t.Errorf("edge %s enters a collapsed pipeline", e.ID)
		}
	}
	p, _ := v.Node("p")
	if !p.Expandable || p.Expanded {
		t.Errorf("p: expandable = %v, expanded = %v", p.Expandable, p.Expanded)
	}
	if p.Status != flow.StatusRunning {
		t.Errorf("p.Status = %q, want running", p.Status)
	}
}

func TestProjectExpanded(t *testing.T) {
	v := mustProject(t, nested(t), NewExpandSet("p"))

	want := []string{"start", "before", "p", "p/x", "p/y", "p/z", "end"}
	if got := nodeKeys(v); !slices.Equal(got, want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}

	p, _ := v.Node("p")
	before, _ := v.Node("before")
	for _, key := range []string{"p/x", "p/y", "p/z"} {
		n, _ := v.Node(key)
		if n.Y < p.Y+p.Height+layout.DefaultVerticalGap {
			t.Errorf("%s: y = %v is above the row reserved under p", key, n.Y)
		}
		if n.Y < before.Y+before.Height {
			t.Errorf("%s overlaps column sibling before", key)
		}
	}

	e, ok := v.Edge("p->p/x")
	if !ok {
		t.Fatalf("missing cross-level edge, have %v", edgeIDs(v))
	}
	if !e.CrossLevel {
		t.Error("p->p/x not marked cross level")
	}
	for _, id := range []string{"p/l2", "p/l3", "l3"} {
		if _, ok := v.Edge(id); !ok {
			t.Errorf("missing edge %s, have %v", id, edgeIDs(v))
		}
	}
	for _, e := range v.Edges {
		if e.Target == "p/e" {
			t.Errorf("edge %s into the hidden nested end event", e.ID)
		}
	}
}

func TestProjectEdgeIDs(t *testing.T) {
	p := flow.NewBuilder("start", "end").
		Activity("a").
		Parallel("pg").
		Activity("b").
		Activity("c").
		Converge("cg").
		Connect("start", "a").
		Connect("a", "pg").
		Connect("pg", "b").
		Connect("pg", "c").
		Connect("b", "cg").
		Connect("c", "cg").
		Connect("cg", "end").
		MustBuild()
	v := mustProject(t, p, nil)

	want := []string{"l1", "a->b", "a->c", "b->end", "c->end"}
	if got := edgeIDs(v); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	e, _ := v.Edge("l1")
	if e.Source != "start" || e.Target != "a" {
		t.Errorf("l1 = %s -> %s, want start -> a", e.Source, e.Target)
	}
}

// fanOutWithNestedTail builds start -> p -> end where p fans out to a and b,
// joins, and ends in c, which owns d -> f.
func fanOutWithNestedTail(t *testing.T) *flow.Pipeline {
	t.Helper()
	c := flow.NewBuilder("s", "e").
		Activity("d").
		Activity("f").
		Chain("s", "d", "f", "e").
		MustBuild()
	p := flow.NewBuilder("s", "e").
		Parallel("pg").
		Activity("a").
		Activity("b").
		Converge("cg").
		SubProcess("c", c).
		Connect("s", "pg").
		Connect("pg", "a").
		Connect("pg", "b").
		Connect("a", "cg").
		Connect("b", "cg").
		Connect("cg", "c").
		Connect("c", "e").
		MustBuild()
	return flow.NewBuilder("start", "end").
		SubProcess("p", p).
		Chain("start", "p", "end").
		MustBuild()
}

// siblingsWithNested builds three parallel sub-processes, each owning a
// fan-out, so expanded siblings and their subtrees share x ranges.
func siblingsWithNested(t *testing.T) *flow.Pipeline {
	t.Helper()
	b := flow.NewBuilder("start", "end").Parallel("fork").Converge("join")
	b.Connect("start", "fork")
	for _, id := range []string{"x", "y", "z"} {
		b.SubProcess(id, fanOut(t)).Connect("fork", id).Connect(id, "join")
	}
	return b.Connect("join", "end").MustBuild()
}

func TestProjectNoNodesIntersect(t *testing.T) {
	tests := []struct {
		name   string
		p      *flow.Pipeline
		expand ExpandSet
	}{
		{"nested", nested(t), NewExpandSet("p")},
		{"fan out tail", fanOutWithNestedTail(t), NewExpandSet("p")},
		{"fan out tail deep", fanOutWithNestedTail(t), NewExpandSet("p", "p/c")},
		{"siblings one", siblingsWithNested(t), NewExpandSet("y")},
		{"siblings all", siblingsWithNested(t), NewExpandSet("x", "y", "z")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustProject(t, tt.p, tt.expand)
			for i, a := range v.Nodes {
				for _, b := range v.Nodes[i+1:] {
					if a.X-a.Width/2 < b.X+b.Width/2 && b.X-b.Width/2 < a.X+a.Width/2 &&
						a.Y < b.Y+b.Height && b.Y < a.Y+a.Height {
						t.Errorf("%s (%v,%v) overlaps %s (%v,%v)", a.Key, a.X, a.Y, b.Key, b.X, b.Y)
					}
				}
			}
		})
	}
}

func TestProjectToggleIsIdempotent(t *testing.T) {
	p := nested(t)
	expand := NewExpandSet()

	before, err := Hash(mustProject(t, p, expand))
	if err != nil {
		t.Fatal(err)
	}
	expand.Toggle("p")
	mustProject(t, p, expand)
	expand.Toggle("p")
	after, err := Hash(mustProject(t, p, expand))
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Error("collapse after expand changed the view")
	}
}

func TestProjectDeterministic(t *testing.T) {
	p := nested(t)
	expand := NewExpandSet("p")
	first, err := Marshal(mustProject(t, p, expand))
	if err != nil {
		t.Fatal(err)
	}
	for range 20 {
		got, err := Marshal(mustProject(t, p, expand))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(first) {
			t.Fatal("two passes produced different output")
		}
	}
}

func TestProjectEndpointsAreRendered(t *testing.T) {
	for _, expand := range []ExpandSet{nil, NewExpandSet("p")} {
		v := mustProject(t, nested(t), expand)
		for _, e := range v.Edges {
			if _, ok := v.Node(e.Source); !ok {
				t.Errorf("edge %s: source not rendered", e.ID)
			}
			if _, ok := v.Node(e.Target); !ok {
				t.Errorf("edge %s: target not rendered", e.ID)
			}
		}
		for _, n := range v.Nodes {
			if n.Kind.IsGateway() {
				t.Errorf("gateway %s rendered", n.Key)
			}
		}
	}
}

func TestProjectInvalidGraph(t *testing.T) {
	p := fanOut(t)
	p.Flows["dangling"] = flow.Line{ID: "dangling", Source: "a", Target: "nowhere"}
	if _, err := Project(p, nil, layout.DefaultOptions()); err == nil {
		t.Error("Project() succeeded on a dangling line")
	}
}

func TestViewRoundTrip(t *testing.T) {
	v := mustProject(t, nested(t), NewExpandSet("p"))
	data, err := Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, v) {
		t.Errorf("round trip changed the view")
	}
}

func TestExpandSet(t *testing.T) {
	s := NewExpandSet("b", "a")
	if !s.Has("a") || s.Has("c") {
		t.Fatalf("Has() wrong for %v", s.Keys())
	}
	if s.Toggle("a") {
		t.Error("Toggle(a) reported expanded")
	}
	if !s.Toggle("c") {
		t.Error("Toggle(c) reported collapsed")
	}
	if got := s.Keys(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Keys() = %v", got)
	}

	w := s.With("b/x").With("b/x/y")
	if s.Has("b/x") {
		t.Error("With mutated the receiver")
	}
	if got := w.Without("b").Keys(); !slices.Equal(got, []string{"c"}) {
		t.Errorf("Without(b) = %v, want [c]", got)
	}

	var nilSet ExpandSet
	if nilSet.Has("a") || nilSet.Len() != 0 {
		t.Error("nil set not empty")
	}
}

func TestExpandSetJSON(t *testing.T) {
	data, err := json.Marshal(NewExpandSet("z", "a", "m"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["a","m","z"]` {
		t.Errorf("Marshal = %s", data)
	}
	var s ExpandSet
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 || !s.Has("m") {
		t.Errorf("Unmarshal = %v", s.Keys())
	}
}
