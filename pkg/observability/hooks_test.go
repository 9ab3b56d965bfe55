package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnPlanStart(ctx, 8)
	p.OnPlanComplete(ctx, 8, time.Second, nil)
	p.OnPlaceStart(ctx, 8)
	p.OnPlaceComplete(ctx, 8, 240, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "plan")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/build")
	h.OnResponse(ctx, "POST", "/v1/build", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnPlanComplete(ctx, 3, time.Millisecond, nil)
	h.OnPlaceComplete(ctx, 3, 42, time.Millisecond, errors.New("boom"))
	h.OnCacheHit(ctx, "artifact")

	out := buf.String()
	for _, want := range []string{"plan complete", "place failed", "boom", "polygons=42", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSwapPipelineHooksRestores(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	outer := &countingPipelineHooks{name: "outer"}
	SetPipelineHooks(outer)

	inner := &countingPipelineHooks{name: "inner"}
	restore := SwapPipelineHooks(inner)
	Pipeline().OnPlanStart(context.Background(), 3)
	restore()
	Pipeline().OnPlanStart(context.Background(), 3)

	if inner.plans != 1 || outer.plans != 1 {
		t.Errorf("plans: inner=%d outer=%d, want 1 and 1", inner.plans, outer.plans)
	}
	if Pipeline() != outer {
		t.Error("restore should reinstall the previous hooks")
	}
}

func TestPipelineFanout(t *testing.T) {
	a, b := &countingPipelineHooks{name: "a"}, &countingPipelineHooks{name: "b"}
	f := PipelineFanout{a, NoopPipelineHooks{}, b}
	ctx := context.Background()

	f.OnPlanStart(ctx, 2)
	f.OnPlaceStart(ctx, 2)
	f.OnRenderStart(ctx, []string{"gds"})
	f.OnRenderComplete(ctx, []string{"gds"}, time.Millisecond, nil)

	for _, h := range []*countingPipelineHooks{a, b} {
		if h.plans != 1 || h.places != 1 || h.renders != 1 {
			t.Errorf("%s: plans=%d places=%d renders=%d, want 1 each", h.name, h.plans, h.places, h.renders)
		}
	}
}

type countingPipelineHooks struct {
	NoopPipelineHooks
	name                   string
	plans, places, renders int
}

func (h *countingPipelineHooks) OnPlanStart(context.Context, int)        { h.plans++ }
func (h *countingPipelineHooks) OnPlaceStart(context.Context, int)       { h.places++ }
func (h *countingPipelineHooks) OnRenderStart(context.Context, []string) { h.renders++ }

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
