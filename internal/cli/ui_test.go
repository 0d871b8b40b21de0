package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/view"
)

func TestNewSummary(t *testing.T) {
	v := &view.View{
		Nodes:  []view.Node{{Key: "start"}, {Key: "build", Expanded: true}, {Key: "build/s"}, {Key: "end"}},
		Width:  942,
		Height: 230,
	}
	s := newSummary("Layout complete", "deploy.view.json", v, true)
	if s.nodes != 4 || s.edges != 0 || s.expanded != 1 || s.width != 942 || !s.cached {
		t.Errorf("newSummary() = %+v", s)
	}

	if s := newSummary("Render complete", "", nil, false); s.nodes != 0 {
		t.Errorf("newSummary(nil) = %+v", s)
	}
}

func TestPrintSummary(t *testing.T) {
	tests := []struct {
		name string
		s    summary
		want []string
		skip []string
	}{
		{
			name: "fresh",
			s:    summary{title: "Layout complete", path: "deploy.view.json", nodes: 4, edges: 3, width: 942, height: 54},
			want: []string{"Layout complete", "deploy.view.json", "4 nodes", "3 edges", "942×54", "fresh"},
			skip: []string{"expanded"},
		},
		{
			name: "cached expanded",
			s:    summary{title: "Render complete", nodes: 1, edges: 1, expanded: 2, cached: true},
			want: []string{"1 node ·", "1 edge ·", "2 expanded", "cached"},
			skip: []string{"→", "×"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printSummary(&buf, tt.s)
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("summary missing %q:\n%s", want, out)
				}
			}
			for _, skip := range tt.skip {
				if strings.Contains(out, skip) {
					t.Errorf("summary should not contain %q:\n%s", skip, out)
				}
			}
		})
	}
}

func TestPrintCacheStats(t *testing.T) {
	var buf bytes.Buffer
	printCacheStats(&buf, "/tmp/flowlayout", map[string]cache.TypeStats{
		cache.KeyTypeView:     {Entries: 3, Sources: 2, Bytes: 2048},
		cache.KeyTypeArtifact: {Entries: 1, Sources: 1, Bytes: 512},
	})
	out := buf.String()
	for _, want := range []string{"/tmp/flowlayout", "3 entries", "2.0 KiB", "2 graphs", "1 entry", "512 B", "1 view"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "artifact") > strings.Index(out, "view ") {
		t.Errorf("key types should be sorted:\n%s", out)
	}

	buf.Reset()
	printCacheStats(&buf, "/tmp/flowlayout", nil)
	if !strings.Contains(buf.String(), "empty") {
		t.Errorf("empty cache output = %q", buf.String())
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		noun string
		want string
	}{
		{0, "node", "0 nodes"},
		{1, "node", "1 node"},
		{2, "entry", "2 entries"},
		{1, "entry", "1 entry"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, tt.noun); got != tt.want {
			t.Errorf("plural(%d, %q) = %q, want %q", tt.n, tt.noun, got, tt.want)
		}
	}
}
