// Package pipeline runs the parse → layout → render stages for flowlayout.
//
// The CLI and the HTTP server both go through this package, so caching,
// hooks, logging and error codes behave the same whichever entry point
// produced a request.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode a task-flow graph from JSON or YAML
//  2. Layout: project the graph and an expand-set into a routed [view.View]
//  3. Render: paint the view as DOT, SVG, PNG or JSON
//
// Each stage can be run on its own or through [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	p, err := pipeline.ParseFile(ctx, "deploy.yaml")
//	if err != nil {
//	    return err
//	}
//	opts := pipeline.Options{Expand: []string{"build"}, Format: pipeline.FormatSVG}
//	result, err := runner.Execute(ctx, p, opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifact
//
// Layout only:
//
//	v, hit, err := runner.Layout(ctx, p, opts)
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/view"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// DefaultFormat is used when Options.Format is empty.
const DefaultFormat = FormatJSON

// Default cache lifetimes. Views are small and cheap to recompute; rendered
// artifacts go through Graphviz and are kept longer.
const (
	DefaultViewTTL     = 24 * time.Hour
	DefaultArtifactTTL = 7 * 24 * time.Hour
)

// Options contains all configuration for one pipeline run. It decodes from
// server request bodies (JSON) and from the CLI config file (TOML).
type Options struct {
	// Layout sizes and gaps. See SetDefaults for how zero fields are filled.
	Layout layout.Options `json:"layout" toml:"layout"`

	// Expand lists the keys of the expanded activities.
	Expand []string `json:"expand,omitempty" toml:"-"`

	// Render options
	Format   string `json:"format,omitempty" toml:"format"`
	Detailed bool   `json:"detailed,omitempty" toml:"detailed"`

	// Cache lifetimes. Zero means the defaults above.
	ViewTTL     time.Duration `json:"-" toml:"view_ttl"`
	ArtifactTTL time.Duration `json:"-" toml:"artifact_ttl"`

	// Refresh skips cache reads; fresh results are still written.
	Refresh bool `json:"refresh,omitempty" toml:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// View is the routed projection of the graph.
	View *view.View

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Artifact is the rendering in Options.Format.
	Artifact []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// DefaultOptions returns the options used when nothing is configured.
// Config files and request bodies decode on top of it, so a field they
// leave out keeps its default and a field they set to zero stays zero.
func DefaultOptions() Options {
	return Options{
		Layout:      layout.DefaultOptions(),
		Format:      DefaultFormat,
		ViewTTL:     DefaultViewTTL,
		ArtifactTTL: DefaultArtifactTTL,
	}
}

// SetDefaults fills fields that have no meaningful zero value. A zero
// Layout is replaced by layout.DefaultOptions. Otherwise only the node sizes
// are filled; gaps and offsets may legitimately be zero and are kept.
func (o *Options) SetDefaults() {
	def := layout.DefaultOptions()
	l := &o.Layout
	if *l == (layout.Options{}) {
		*l = def
	}
	if l.ActivityWidth == 0 {
		l.ActivityWidth = def.ActivityWidth
	}
	if l.ActivityHeight == 0 {
		l.ActivityHeight = def.ActivityHeight
	}
	if l.EventSize == 0 {
		l.EventSize = def.EventSize
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.ViewTTL == 0 {
		o.ViewTTL = DefaultViewTTL
	}
	if o.ArtifactTTL == 0 {
		o.ArtifactTTL = DefaultArtifactTTL
	}
}

// Validate checks the options after SetDefaults. Errors carry the
// INVALID_OPTIONS, INVALID_KEY or INVALID_FORMAT codes.
func (o *Options) Validate() error {
	if err := o.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOptions, err, "layout options")
	}
	if err := errors.ValidateKeys(o.Expand); err != nil {
		return err
	}
	if err := errors.ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.ViewTTL < 0 || o.ArtifactTTL < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "cache ttl must not be negative")
	}
	return nil
}

// ExpandSet returns the expand keys as a set.
func (o *Options) ExpandSet() view.ExpandSet {
	return view.NewExpandSet(o.Expand...)
}

// ViewKeyOpts returns cache key options for the layout stage.
func (o *Options) ViewKeyOpts() cache.ViewKeyOpts {
	return cache.ViewKeyOpts{
		Expand:  o.ExpandSet().Keys(),
		Options: o.Layout,
	}
}

// ArtifactKeyOpts returns cache key options for the render stage.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   o.Format,
		Detailed: o.Detailed,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d edges, layout %s, render %s",
		s.NodeCount, s.EdgeCount, s.LayoutTime, s.RenderTime)
}
