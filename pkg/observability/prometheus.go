package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flowlayout"

// PromHooks implements every hook interface on Prometheus collectors.
type PromHooks struct {
	parses        *prometheus.CounterVec
	layouts       *prometheus.CounterVec
	layoutSeconds prometheus.Histogram
	layoutNodes   prometheus.Histogram
	renders       *prometheus.CounterVec
	renderBytes   *prometheus.HistogramVec
	cacheOps      *prometheus.CounterVec
	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
	handlerErrors *prometheus.CounterVec
}

// NewPromHooks creates the collectors and registers them with reg.
// Registering twice with the same registerer panics.
func NewPromHooks(reg prometheus.Registerer) *PromHooks {
	h := &PromHooks{
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Graph documents parsed, by result.",
		}, []string{"result"}),
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layouts_total",
			Help:      "Layout passes run, by result.",
		}, []string{"result"}),
		layoutSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Wall time of a layout pass including routing.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		layoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Rendered nodes per layout pass.",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 10),
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Renders produced, by format and result.",
		}, []string{"format", "result"}),
		renderBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_bytes",
			Help:      "Size of rendered artifacts.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes, by key type and outcome.",
		}, []string{"key_type", "op"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by route and status.",
		}, []string{"method", "route", "code"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		handlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_handler_errors_total",
			Help:      "Handler failures, by route.",
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		h.parses, h.layouts, h.layoutSeconds, h.layoutNodes,
		h.renders, h.renderBytes, h.cacheOps,
		h.requests, h.requestTime, h.handlerErrors,
	)
	return h
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PromHooks) OnParseStart(context.Context, string) {}

func (h *PromHooks) OnParseComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	h.parses.WithLabelValues(result(err)).Inc()
}

func (h *PromHooks) OnLayoutStart(context.Context, int, int) {}

func (h *PromHooks) OnLayoutComplete(_ context.Context, nodes, _ int, d time.Duration, err error) {
	h.layouts.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	h.layoutSeconds.Observe(d.Seconds())
	h.layoutNodes.Observe(float64(nodes))
}

func (h *PromHooks) OnRenderStart(context.Context, string) {}

func (h *PromHooks) OnRenderComplete(_ context.Context, format string, size int, _ time.Duration, err error) {
	h.renders.WithLabelValues(format, result(err)).Inc()
	if err == nil {
		h.renderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (h *PromHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PromHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PromHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
}

func (h *PromHooks) OnRequest(context.Context, string, string) {}

func (h *PromHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

func (h *PromHooks) OnError(_ context.Context, method, route string, _ error) {
	h.handlerErrors.WithLabelValues(method, route).Inc()
}

var (
	_ LayoutHooks = (*PromHooks)(nil)
	_ CacheHooks  = (*PromHooks)(nil)
	_ HTTPHooks   = (*PromHooks)(nil)
)
