package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, StageStructure, "graph")
	p.OnStageComplete(ctx, StageStructure, "graph", time.Second, nil)
	p.OnDiagnostics(ctx, "graph", 1, 2)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "report")
	c.OnCacheMiss(ctx, "report")
	c.OnCacheSet(ctx, "report", 1024)

	NoopServerHooks{}.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

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

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	h := NewPrometheusHooks()
	reg := prometheus.NewRegistry()
	h.MustRegister(reg)

	h.OnStageComplete(ctx, StageFormats, "graph", time.Millisecond, nil)
	h.OnStageComplete(ctx, StageFormats, "graph", time.Millisecond, errors.New("boom"))
	h.OnDiagnostics(ctx, "graph", 3, 1)
	h.OnCacheHit(ctx, "report")
	h.OnCacheSet(ctx, "report", 100)
	h.OnResponse(ctx, "POST", "/v1/analyze", 200, time.Millisecond)

	if got := testutil.ToFloat64(h.diagnostics.WithLabelValues("error")); got != 3 {
		t.Errorf("error diagnostics = %v, want 3", got)
	}
	if got := testutil.ToFloat64(h.cacheOps.WithLabelValues("report", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.cacheBytes); got != 100 {
		t.Errorf("cache bytes = %v, want 100", got)
	}
	if got := testutil.CollectAndCount(h.stageDuration); got != 2 {
		t.Errorf("stage series = %d, want 2", got)
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
