package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/view"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it so caching logic lives in one place.
//
// The Runner holds no results between calls. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs layout and render for p with caching.
func (r *Runner) Execute(ctx context.Context, p *flow.Pipeline, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	layoutStart := time.Now()
	v, hit, err := r.Layout(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	result.View = v
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(v.Nodes)
	result.Stats.EdgeCount = len(v.Edges)
	result.CacheInfo.LayoutHit = hit
	if graphHash, err := hashGraph(p); err == nil {
		result.GraphHash = graphHash
	}

	renderStart := time.Now()
	artifact, hit, err := r.Render(ctx, v, opts)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("pipeline complete",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"format", opts.Format,
		"duration", result.Stats.LayoutTime+result.Stats.RenderTime)

	return result, nil
}

// Layout projects p with caching and reports whether the view came from
// the cache. A cache entry that fails to decode is recomputed.
func (r *Runner) Layout(ctx context.Context, p *flow.Pipeline, opts Options) (*view.View, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidGraph, "no graph")
	}

	graphHash, err := hashGraph(p)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidGraph, err, "encode graph")
	}
	key := r.Keyer.ViewKey(graphHash, opts.ViewKeyOpts())
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if v, err := view.Unmarshal(data); err == nil {
				cacheHooks.OnCacheHit(ctx, cache.KeyTypeView)
				r.Logger.Debug("view cache hit", "graph", graphHash[:12], "cached", true)
				return v, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
	}
	cacheHooks.OnCacheMiss(ctx, cache.KeyTypeView)

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, p.ItemCount(), len(opts.Expand))
	start := time.Now()

	v, err := Project(p, opts)

	dur := time.Since(start)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, 0, dur, err)
		return nil, false, err
	}
	hooks.OnLayoutComplete(ctx, len(v.Nodes), len(v.Edges), dur, nil)
	r.Logger.Debug("computed view",
		"nodes", len(v.Nodes),
		"edges", len(v.Edges),
		"duration", dur,
		"cached", false)

	if data, err := view.Marshal(v); err == nil {
		r.store(ctx, key, cache.KeyTypeView, data, opts.ViewTTL)
	}
	return v, false, nil
}

// Render paints v in opts.Format with caching and reports whether the
// artifact came from the cache.
func (r *Runner) Render(ctx context.Context, v *view.View, opts Options) ([]byte, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	viewHash, err := view.Hash(v)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash view")
	}
	key := r.Keyer.ArtifactKey(viewHash, opts.ArtifactKeyOpts())
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, cache.KeyTypeArtifact)
			return data, true, nil
		}
	}
	cacheHooks.OnCacheMiss(ctx, cache.KeyTypeArtifact)

	hooks := observability.Layout()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()

	data, err := Render(v, opts.Format, opts.Detailed)

	dur := time.Since(start)
	hooks.OnRenderComplete(ctx, opts.Format, len(data), dur, err)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("rendered", "format", opts.Format, "bytes", len(data), "duration", dur)

	r.store(ctx, key, cache.KeyTypeArtifact, data, opts.ArtifactTTL)
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes through to the cache. Failures are logged, not returned.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func hashGraph(p *flow.Pipeline) (string, error) {
	data, err := flow.Marshal(p)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
