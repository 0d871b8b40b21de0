package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/view"
)

var (
	colorGreen = lipgloss.Color("35")
	colorCyan  = lipgloss.Color("36")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleInfo    = lipgloss.NewStyle().Foreground(colorGray)
)

// summary describes a finished layout or render run.
type summary struct {
	title    string
	path     string
	nodes    int
	edges    int
	expanded int     // sub-processes shown open
	width    float64 // drawing extent
	height   float64
	cached   bool
}

// newSummary reads the counts and extent off v.
func newSummary(title, path string, v *view.View, cached bool) summary {
	s := summary{title: title, path: path, cached: cached}
	if v == nil {
		return s
	}
	s.nodes, s.edges = len(v.Nodes), len(v.Edges)
	s.width, s.height = v.Width, v.Height
	for _, n := range v.Nodes {
		if n.Expanded {
			s.expanded++
		}
	}
	return s
}

// printSummary writes the result block shown after layout and render:
//
//	✓ Layout complete
//	  → deploy.view.json
//	  7 nodes · 8 edges · 1 expanded · 942×230 · cached
func printSummary(w io.Writer, s summary) {
	fmt.Fprintln(w, styleSuccess.Render("✓")+" "+s.title)
	if s.path != "" {
		fmt.Fprintln(w, "  "+styleDim.Render("→")+" "+styleValue.Render(s.path))
	}

	parts := []string{
		plural(s.nodes, "node"),
		plural(s.edges, "edge"),
	}
	if s.expanded > 0 {
		parts = append(parts, fmt.Sprintf("%d expanded", s.expanded))
	}
	if s.width > 0 && s.height > 0 {
		parts = append(parts, fmt.Sprintf("%.0f×%.0f", s.width, s.height))
	}
	status := styleInfo.Render("fresh")
	if s.cached {
		status = styleSuccess.Render("cached")
	}

	line := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		line = append(line, styleDim.Render(p))
	}
	line = append(line, status)
	fmt.Fprintln(w, "  "+strings.Join(line, styleDim.Render(" · ")))
}

// printCacheStats writes one line per key type found under dir.
func printCacheStats(w io.Writer, dir string, stats map[string]cache.TypeStats) {
	fmt.Fprintln(w, styleTitle.Render("Cache")+" "+styleDim.Render(dir))
	if len(stats) == 0 {
		fmt.Fprintln(w, "  "+styleDim.Render("empty"))
		return
	}

	types := make([]string, 0, len(stats))
	for t := range stats {
		types = append(types, t)
	}
	slices.Sort(types)

	for _, t := range types {
		ts := stats[t]
		var sources string
		switch t {
		case cache.KeyTypeView:
			sources = plural(ts.Sources, "graph")
		case cache.KeyTypeArtifact:
			sources = plural(ts.Sources, "view")
		}
		fields := []string{plural(ts.Entries, "entry"), formatBytes(ts.Bytes)}
		if sources != "" {
			fields = append(fields, sources)
		}
		fmt.Fprintf(w, "  %-9s %s\n", styleValue.Render(t), styleDim.Render(strings.Join(fields, " · ")))
	}
}

// printInfo writes a status line.
func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleInfo.Render("›")+" "+fmt.Sprintf(format, args...))
}

// printNextStep suggests the command to run next.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
