package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/view"
)

// pointsPerInch converts layout units, which Graphviz reads as points, to
// the inches it expects for node sizes.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Detailed adds status and metadata lines to activity labels.
	// When false, only the label is shown.
	Detailed bool
}

var statusFill = map[flow.Status]string{
	flow.StatusPending: "white",
	flow.StatusRunning: "#cfe2ff",
	flow.StatusSuccess: "#d1e7dd",
	flow.StatusFailed:  "#f8d7da",
	flow.StatusSkipped: "#e2e3e5",
}

// ToDOT converts a view to Graphviz DOT with every node pinned at its
// computed position. Layout space grows downward and Graphviz space upward,
// so y is negated.
//
// Breakpoints are emitted as invisible pinned points, and the edge is split
// into segments through them so the drawn line follows the routed polyline.
// Render the result with the neato engine ([RenderSVG] and [RenderPNG] do),
// since dot ignores pins.
func ToDOT(v *view.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [fixedsize=true, style=filled, fillcolor=white, fontsize=12, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, n := range v.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Key, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		if len(e.Breakpoints) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		hops := []string{e.Source}
		for i, bp := range e.Breakpoints {
			id := fmt.Sprintf("%s#%d", e.ID, i)
			fmt.Fprintf(&buf, "  %q [shape=point, width=0, height=0, label=\"\", style=invis, pos=%q];\n", id, pos(bp.X, bp.Y))
			hops = append(hops, id)
		}
		hops = append(hops, e.Target)
		for i := 1; i < len(hops); i++ {
			attrs := ""
			if i < len(hops)-1 {
				attrs = " [arrowhead=none]"
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", hops[i-1], hops[i], attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func pos(x, y float64) string {
	return fmt.Sprintf("%s,%s!", fmtFloat(x), fmtFloat(-y))
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func nodeAttrs(n view.Node, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("pos=%q", pos(n.X, n.Y+n.Height/2)),
		"width=" + fmtFloat(n.Width/pointsPerInch),
		"height=" + fmtFloat(n.Height/pointsPerInch),
	}
	style := "filled"
	switch n.Shape {
	case layout.ShapeRound:
		attrs = append(attrs, "shape=circle")
		if n.Kind == flow.KindEndEvent {
			attrs = append(attrs, "peripheries=2")
		}
	case layout.ShapeRect:
		attrs = append(attrs, "shape=box")
		style = "rounded,filled"
	}
	if n.Expandable && !n.Expanded {
		style += ",dashed"
	}
	if n.Expanded {
		attrs = append(attrs, "penwidth=2")
	}
	attrs = append(attrs, fmt.Sprintf("style=%q", style))
	if fill, ok := statusFill[n.Status]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	return attrs
}

func fmtLabel(n view.Node, detailed bool) string {
	if n.Shape == layout.ShapeRound {
		return ""
	}
	if !detailed {
		return n.Label
	}
	parts := []string{n.Label}
	if n.Status != "" {
		parts = append(parts, "status: "+string(n.Status))
	}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT produced by [ToDOT] to SVG with the neato engine.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT produced by [ToDOT] to PNG with the neato engine.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg header with one whose viewBox
// starts at the origin and whose size matches it, so the output scales
// cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
