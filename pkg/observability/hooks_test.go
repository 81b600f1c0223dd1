package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	NoopPipelineHooks
	builds  int
	renders int
}

func (h *recordingPipelineHooks) OnBuildComplete(context.Context, string, int, time.Duration, error) {
	h.builds++
}

func (h *recordingPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.renders++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string) { h.hits++ }

func TestHookRegistration(t *testing.T) {
	defer Reset()

	ph := &recordingPipelineHooks{}
	ch := &recordingCacheHooks{}
	SetPipelineHooks(ph)
	SetCacheHooks(ch)

	ctx := context.Background()
	Pipeline().OnBuildComplete(ctx, "/release", 42, time.Second, nil)
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)
	Cache().OnCacheHit(ctx, "taxonomy")

	if ph.builds != 1 || ph.renders != 1 {
		t.Errorf("pipeline hooks = %d builds, %d renders", ph.builds, ph.renders)
	}
	if ch.hits != 1 {
		t.Errorf("cache hits = %d", ch.hits)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	ph := &recordingPipelineHooks{}
	SetPipelineHooks(ph)
	SetPipelineHooks(nil)

	Pipeline().OnBuildComplete(context.Background(), "/release", 1, 0, nil)
	if ph.builds != 1 {
		t.Error("nil registration replaced the active hooks")
	}
}

func TestReset(t *testing.T) {
	SetPipelineHooks(&recordingPipelineHooks{})
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() after Reset = %T, want NoopPipelineHooks", Pipeline())
	}
}
