package dot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/route"
	"github.com/matzehuels/flowlayout/pkg/view"
)

func sample(t *testing.T) *view.View {
	t.Helper()
	inner := flow.NewBuilder("s", "e").
		Activity("x").
		Activity("y").
		Chain("s", "x", "y", "e").
		MustBuild()
	p := flow.NewBuilder("start", "end").
		Parallel("pg").
		Activity("a").
		SubProcess("p", inner).
		Converge("cg").
		Connect("start", "pg").
		Connect("pg", "a").
		Connect("pg", "p").
		Connect("a", "cg").
		Connect("p", "cg").
		Connect("cg", "end").
		Status("a", flow.StatusFailed).
		MustBuild()
	v, err := view.Project(p, view.NewExpandSet("p"), layout.DefaultOptions())
	if err != nil {
		t.Fatalf("Project() error: %v", err)
	}
	return v
}

func TestToDOT(t *testing.T) {
	out := ToDOT(sample(t), Options{})

	for _, want := range []string{
		"digraph G {",
		"inputscale=72;",
		`"start" [label="", pos="21,-21!"`,
		`"end" [`,
		"peripheries=2",
		`"p/x" [label="x"`,
		`fillcolor="#f8d7da"`,
		`"start" -> "a"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, out)
		}
	}
	for _, gw := range []string{`"pg"`, `"cg"`} {
		if strings.Contains(out, gw) {
			t.Errorf("ToDOT() contains gateway %s", gw)
		}
	}
}

func TestToDOTBreakpoints(t *testing.T) {
	v := &view.View{
		Nodes: []view.Node{
			{Key: "a", Label: "a", Shape: layout.ShapeRect, Width: 200, Height: 54},
			{Key: "b", Label: "b", Shape: layout.ShapeRect, Width: 200, Height: 54, X: 400, Y: 200},
		},
		Edges: []route.Edge{{
			ID:          "a->b",
			Source:      "a",
			Target:      "b",
			Breakpoints: []route.Point{{X: 400, Y: 27}},
		}},
	}
	out := ToDOT(v, Options{})

	for _, want := range []string{
		`"a->b#0" [shape=point`,
		`pos="400,-27!"`,
		`"a" -> "a->b#0" [arrowhead=none];`,
		`"a->b#0" -> "b";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, `"a" -> "b"`) {
		t.Error("edge with breakpoints drawn straight")
	}
}

func TestToDOTDetailed(t *testing.T) {
	v := &view.View{Nodes: []view.Node{{
		Key:    "a",
		Label:  "Build",
		Shape:  layout.ShapeRect,
		Width:  200,
		Height: 54,
		Status: flow.StatusRunning,
		Meta:   map[string]any{"retries": 2, "attempt": 1},
	}}}
	out := ToDOT(v, Options{Detailed: true})
	if want := `label="Build\nstatus: running\nattempt: 1\nretries: 2"`; !strings.Contains(out, want) {
		t.Errorf("ToDOT() missing %s\n%s", want, out)
	}
}

func TestToDOTExpandStyle(t *testing.T) {
	out := ToDOT(sample(t), Options{})
	line := func(key string) string {
		for _, l := range strings.Split(out, "\n") {
			if strings.HasPrefix(strings.TrimSpace(l), `"`+key+`" [`) {
				return l
			}
		}
		t.Fatalf("no node line for %s", key)
		return ""
	}
	if l := line("p"); !strings.Contains(l, "penwidth=2") || strings.Contains(l, "dashed") {
		t.Errorf("expanded node style wrong: %s", l)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`viewBox="0 0 10.00 20.00" width="10" height="20"`)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderSVG(ToDOT(sample(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderSVG() output has no svg element")
	}
}
