// Package observability lets a host watch the engine, the pipeline, the
// cache and the HTTP API without those packages importing any metrics or
// tracing backend.
//
// Each event family has a hooks interface and a no-op implementation. The
// host installs its own at startup, usually with [Register]:
//
//	observability.Register(observability.NewLogHooks(logger))
//
// and libraries emit through the accessors:
//
//	observability.Layout().OnEditComplete("add_node", id, len(actions), d, err)
//
// Accessors are safe for concurrent use and never return nil.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// LayoutHooks receives events from the layout engine. The engine is
// synchronous and has no context, so these hooks take none either.
type LayoutHooks interface {
	// OnEditStart is called before an edit touches any graph.
	OnEditStart(kind, subject string)

	// OnEditComplete is called when an edit returns, with the number of
	// layout actions it produced.
	OnEditComplete(kind, subject string, actions int, duration time.Duration, err error)

	// OnPushCycle is called when a push of vertex by mover was skipped because
	// vertex already moved earlier in the same causal chain.
	OnPushCycle(vertex, mover string)
}

// PipelineHooks receives events from the replay/render pipeline.
type PipelineHooks interface {
	OnReplayStart(ctx context.Context, edits int)
	OnReplayComplete(ctx context.Context, edits, actions int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is "snapshot" or a
// render format.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the session API. route is the matched
// pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

// NoopLayoutHooks ignores every layout event.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnEditStart(string, string)                               {}
func (NoopLayoutHooks) OnEditComplete(string, string, int, time.Duration, error) {}
func (NoopLayoutHooks) OnPushCycle(string, string)                               {}

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnReplayStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnReplayComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)   {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// slot holds one installed hooks value. An empty slot reads as def.
type slot[T any] struct {
	p   atomic.Pointer[T]
	def T
}

func (s *slot[T]) get() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.def
}

func (s *slot[T]) set(h T) { s.p.Store(&h) }
func (s *slot[T]) reset()  { s.p.Store(nil) }

var (
	layoutSlot   = slot[LayoutHooks]{def: NoopLayoutHooks{}}
	pipelineSlot = slot[PipelineHooks]{def: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{def: NoopCacheHooks{}}
	httpSlot     = slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetLayoutHooks installs layout hooks. nil is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		layoutSlot.set(h)
	}
}

// SetPipelineHooks installs pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.set(h)
	}
}

// SetCacheHooks installs cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks installs HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

// Register installs h for every hooks interface it implements and reports
// how many it matched.
func Register(h any) int {
	n := 0
	if l, ok := h.(LayoutHooks); ok {
		SetLayoutHooks(l)
		n++
	}
	if p, ok := h.(PipelineHooks); ok {
		SetPipelineHooks(p)
		n++
	}
	if c, ok := h.(CacheHooks); ok {
		SetCacheHooks(c)
		n++
	}
	if x, ok := h.(HTTPHooks); ok {
		SetHTTPHooks(x)
		n++
	}
	return n
}

func Layout() LayoutHooks     { return layoutSlot.get() }
func Pipeline() PipelineHooks { return pipelineSlot.get() }
func Cache() CacheHooks       { return cacheSlot.get() }
func HTTP() HTTPHooks         { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	layoutSlot.reset()
	pipelineSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
