package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "surface", "lh.white")
	p.OnLoadComplete(ctx, "surface", "lh.white", 163842, time.Second, nil)
	p.OnExportStart(ctx, "gltf", "lh.thickness.gltf")
	p.OnExportComplete(ctx, "gltf", "lh.thickness.gltf", 1024, time.Second, errors.New("disk full"))

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "mesh")
	c.OnCacheMiss(ctx, "image")
	c.OnCacheSet(ctx, "table", 1024)
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

	// Set custom hooks
	customPipeline := &recordingHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &recordingHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	rec := &recordingHooks{}
	SetPipelineHooks(rec)

	ctx := context.Background()
	Pipeline().OnLoadStart(ctx, "overlay", "rh.area.mgh")
	Pipeline().OnExportComplete(ctx, "png", "rh.area.png", 10, time.Millisecond, nil)

	want := []string{"load:overlay:rh.area.mgh", "export:png:rh.area.png"}
	if len(rec.events) != len(want) {
		t.Fatalf("got events %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, rec.events[i], want[i])
		}
	}
}

// Test implementations
type recordingHooks struct {
	NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (r *recordingHooks) OnLoadStart(_ context.Context, kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "load:"+kind+":"+path)
}

func (r *recordingHooks) OnExportComplete(_ context.Context, format, path string, _ int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "export:"+format+":"+path)
}

type testCacheHooks struct{ NoopCacheHooks }
