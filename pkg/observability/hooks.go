// Package observability lets callers watch a build without the libraries
// depending on any particular backend.
//
// The pipeline, the cache and the HTTP API report events through three hook
// interfaces. Each starts out as a no-op; a binary installs real hooks once
// at startup:
//
//	hooks := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
//
// and the libraries emit events through the accessors:
//
//	observability.Pipeline().OnPlanStart(ctx, len(specs))
//	// ... plan ...
//	observability.Pipeline().OnPlanComplete(ctx, len(specs), time.Since(start), err)
//
// [LogHooks] writes every event to a charmbracelet logger; it is what
// `sersmask --verbose` installs. [SwapPipelineHooks] installs hooks for the
// length of one operation, and [PipelineFanout] lets several receivers
// share the slot.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the build pipeline.
type PipelineHooks interface {
	// Plan events: derive, register and sequence every spec of a batch.
	OnPlanStart(ctx context.Context, waveguides int)
	OnPlanComplete(ctx context.Context, waveguides int, duration time.Duration, err error)

	// Place events: replay every sequence into the design.
	OnPlaceStart(ctx context.Context, waveguides int)
	OnPlaceComplete(ctx context.Context, waveguides, polygons int, duration time.Duration, err error)

	// Render events, one pair per Execute covering all requested formats.
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups. keyType is "plan" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the API server. route is the chi route
// pattern, not the raw path, so run IDs do not explode label cardinality.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnPlanStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnPlanComplete(context.Context, int, time.Duration, error)        {}
func (NoopPipelineHooks) OnPlaceStart(context.Context, int)                                {}
func (NoopPipelineHooks) OnPlaceComplete(context.Context, int, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// PipelineFanout forwards every pipeline event to each of its hooks in order.
type PipelineFanout []PipelineHooks

func (f PipelineFanout) OnPlanStart(ctx context.Context, n int) {
	for _, h := range f {
		h.OnPlanStart(ctx, n)
	}
}

func (f PipelineFanout) OnPlanComplete(ctx context.Context, n int, d time.Duration, err error) {
	for _, h := range f {
		h.OnPlanComplete(ctx, n, d, err)
	}
}

func (f PipelineFanout) OnPlaceStart(ctx context.Context, n int) {
	for _, h := range f {
		h.OnPlaceStart(ctx, n)
	}
}

func (f PipelineFanout) OnPlaceComplete(ctx context.Context, n, polygons int, d time.Duration, err error) {
	for _, h := range f {
		h.OnPlaceComplete(ctx, n, polygons, d, err)
	}
}

func (f PipelineFanout) OnRenderStart(ctx context.Context, formats []string) {
	for _, h := range f {
		h.OnRenderStart(ctx, formats)
	}
}

func (f PipelineFanout) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	for _, h := range f {
		h.OnRenderComplete(ctx, formats, d, err)
	}
}

// registry is one immutable snapshot of the installed hooks. Setters
// publish a modified copy, so a reader always sees a complete set.
type registry struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var current atomic.Pointer[registry]

func init() { Reset() }

func update(fn func(r *registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

// SwapPipelineHooks installs h and returns a func that puts the previous
// hooks back.
func SwapPipelineHooks(h PipelineHooks) (restore func()) {
	var prev PipelineHooks
	update(func(r *registry) {
		prev = r.pipeline
		if h != nil {
			r.pipeline = h
		}
	})
	return func() { SetPipelineHooks(prev) }
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks. Tests call it from t.Cleanup.
func Reset() {
	current.Store(&registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
