package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
)

const linearJSON = `{
  "start_event": {"id": "start", "outgoing": "l1"},
  "end_event": {"id": "end"},
  "activities": {
    "build": {"type": "Activity", "name": "Build", "outgoing": "l2"}
  },
  "flows": {
    "l1": {"source": "start", "target": "build"},
    "l2": {"source": "build", "target": "end"}
  }
}`

func nested() *flow.Pipeline {
	inner := flow.NewBuilder("s", "e").
		Activity("compile").
		Activity("link").
		Chain("s", "compile", "link", "e").
		MustBuild()
	return flow.NewBuilder("start", "end").
		SubProcess("build", inner).
		Activity("test").
		Chain("start", "build", "test", "end").
		MustBuild()
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	if opts.Layout != layout.DefaultOptions() {
		t.Errorf("Layout = %+v, want defaults", opts.Layout)
	}
	if opts.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", opts.Format, DefaultFormat)
	}
	if opts.ViewTTL != DefaultViewTTL || opts.ArtifactTTL != DefaultArtifactTTL {
		t.Errorf("TTLs = %v/%v", opts.ViewTTL, opts.ArtifactTTL)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestOptionsDefaultsKeepOverrides(t *testing.T) {
	opts := Options{Layout: layout.Options{HorizontalGap: 120}, Format: FormatSVG}
	opts.SetDefaults()

	if opts.Layout.HorizontalGap != 120 {
		t.Errorf("HorizontalGap = %v, want 120", opts.Layout.HorizontalGap)
	}
	if opts.Layout.ActivityWidth != layout.DefaultActivityWidth {
		t.Errorf("ActivityWidth = %v, want default", opts.Layout.ActivityWidth)
	}
	if opts.Format != FormatSVG {
		t.Errorf("Format = %q", opts.Format)
	}
}

func TestOptionsDefaultsKeepZeroGaps(t *testing.T) {
	opts := DefaultOptions()
	opts.Layout.HorizontalGap = 0
	opts.Layout.VerticalGap = 0
	opts.Layout.EndNodeOffset = 0
	opts.SetDefaults()

	l := opts.Layout
	if l.HorizontalGap != 0 || l.VerticalGap != 0 || l.EndNodeOffset != 0 {
		t.Errorf("gaps = %v/%v/%v, want zero kept", l.HorizontalGap, l.VerticalGap, l.EndNodeOffset)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("zero gaps should validate: %v", err)
	}
}

func TestDefaultOptionsDecodeOverlay(t *testing.T) {
	opts := DefaultOptions()
	if err := json.Unmarshal([]byte(`{"layout": {"vertical_gap": 0}}`), &opts); err != nil {
		t.Fatal(err)
	}
	opts.SetDefaults()

	if opts.Layout.VerticalGap != 0 {
		t.Errorf("VerticalGap = %v, want explicit 0", opts.Layout.VerticalGap)
	}
	if opts.Layout.HorizontalGap != layout.DefaultHorizontalGap {
		t.Errorf("HorizontalGap = %v, want default", opts.Layout.HorizontalGap)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		code   errors.Code
	}{
		{"narrow activity", func(o *Options) { o.Layout.ActivityWidth = 50 }, errors.ErrCodeInvalidOptions},
		{"negative gap", func(o *Options) { o.Layout.VerticalGap = -1 }, errors.ErrCodeInvalidOptions},
		{"bad format", func(o *Options) { o.Format = "pdf" }, errors.ErrCodeInvalidFormat},
		{"bad key", func(o *Options) { o.Expand = []string{"a//b"} }, errors.ErrCodeInvalidKey},
		{"negative ttl", func(o *Options) { o.ViewTTL = -time.Second }, errors.ErrCodeInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts Options
			opts.SetDefaults()
			tt.modify(&opts)
			err := opts.Validate()
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestParseBytes(t *testing.T) {
	ctx := context.Background()

	p, err := ParseBytes(ctx, "graph.json", []byte(linearJSON))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if p.ItemCount() != 3 {
		t.Errorf("ItemCount = %d, want 3", p.ItemCount())
	}

	if _, err := ParseBytes(ctx, "", []byte("{")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("truncated JSON: %v, want INVALID_INPUT", err)
	}

	broken := strings.Replace(linearJSON, `"target": "end"`, `"target": "nowhere"`, 1)
	if _, err := ParseBytes(ctx, "", []byte(broken)); !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("dangling line: %v, want INVALID_GRAPH", err)
	}
}

func TestParseFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "graph.json")
	if err := os.WriteFile(path, []byte(linearJSON), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseFile(ctx, path); err != nil {
		t.Errorf("ParseFile: %v", err)
	}

	_, err := ParseFile(ctx, filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v, want FILE_NOT_FOUND", err)
	}
}

func TestProjectClassifiesErrors(t *testing.T) {
	p := nested()
	p.Flows["ghost"] = flow.Line{ID: "ghost", Source: "test", Target: "nowhere"}
	p.Activities["test"].Outgoing = append(p.Activities["test"].Outgoing, "ghost")

	var opts Options
	opts.SetDefaults()
	_, err := Project(p, opts)
	if !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("Project() = %v, want INVALID_GRAPH", err)
	}

	opts.Layout.EventSize = 0
	_, err = Project(nested(), opts)
	if !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("Project() = %v, want INVALID_OPTIONS", err)
	}
}

func TestRunnerLayoutCaches(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(c)
	defer r.Close()

	opts := Options{Expand: []string{"build"}}
	v1, hit, err := r.Layout(ctx, nested(), opts)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if hit {
		t.Error("first Layout should miss")
	}
	if _, ok := v1.Node("build/compile"); !ok {
		t.Error("expanded child missing")
	}

	v2, hit, err := r.Layout(ctx, nested(), opts)
	if err != nil || !hit {
		t.Fatalf("second Layout = hit %v, err %v", hit, err)
	}
	if len(v2.Nodes) != len(v1.Nodes) || len(v2.Edges) != len(v1.Edges) {
		t.Error("cached view differs")
	}

	// A different expand-set is a different entry.
	if _, hit, _ := r.Layout(ctx, nested(), Options{}); hit {
		t.Error("collapsed layout should miss")
	}

	opts.Refresh = true
	if _, hit, _ := r.Layout(ctx, nested(), opts); hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerNullCache(t *testing.T) {
	r := quietRunner(nil)
	for range 2 {
		if _, hit, err := r.Layout(context.Background(), nested(), Options{}); err != nil || hit {
			t.Fatalf("Layout = hit %v, err %v", hit, err)
		}
	}
}

func TestRunnerRender(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(c)

	v, _, err := r.Layout(ctx, nested(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{Format: FormatDOT}
	data, hit, err := r.Render(ctx, v, opts)
	if err != nil || hit {
		t.Fatalf("Render = hit %v, err %v", hit, err)
	}
	if !bytes.HasPrefix(data, []byte("digraph")) {
		t.Errorf("DOT output starts with %q", data[:min(len(data), 20)])
	}

	cached, hit, err := r.Render(ctx, v, opts)
	if err != nil || !hit || !bytes.Equal(cached, data) {
		t.Errorf("second Render = hit %v, err %v", hit, err)
	}

	if _, _, err := r.Render(ctx, v, Options{Format: "gif"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("gif: %v, want INVALID_FORMAT", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), nested(), Options{Expand: []string{"build"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.GraphHash == "" {
		t.Error("GraphHash not set")
	}
	if res.Stats.NodeCount != len(res.View.Nodes) || res.Stats.EdgeCount != len(res.View.Edges) {
		t.Errorf("Stats = %v", res.Stats)
	}
	if !bytes.Contains(res.Artifact, []byte(`"build/compile"`)) {
		t.Error("JSON artifact should contain the expanded child")
	}
}

func TestRunnerLayoutInvalidGraph(t *testing.T) {
	r := quietRunner(nil)
	_, _, err := r.Layout(context.Background(), nil, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("nil graph: %v", err)
	}
}

func TestRenderJSONMatchesView(t *testing.T) {
	var opts Options
	opts.SetDefaults()
	v, err := Project(nested(), opts)
	if err != nil {
		t.Fatal(err)
	}
	data, err := Render(v, FormatJSON, false)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"id": "l2"`)) {
		t.Errorf("JSON missing declared line id l2:\n%s", data)
	}
}
