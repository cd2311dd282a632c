package observability

import (
	"context"
	"testing"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Router hooks
	r := NoopRouterHooks{}
	r.OnLayerStart(0, 3)
	r.OnBetterLink(0, 2, 1, 2, 0.9, 0.95)
	r.OnSwapInserted(0, 1)
	r.OnLayerComplete(0, 1)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "routed")
	c.OnCacheMiss(ctx, "routed")
	c.OnCacheSet(ctx, "routed", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Router().(NoopRouterHooks); !ok {
		t.Error("Router() should return NoopRouterHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	// Set custom hooks
	customRouter := &testRouterHooks{}
	SetRouterHooks(customRouter)
	if Router() != customRouter {
		t.Error("SetRouterHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Router().(NoopRouterHooks); !ok {
		t.Error("Reset() should restore NoopRouterHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testRouterHooks{}
	SetRouterHooks(custom)

	// Setting nil should be ignored
	SetRouterHooks(nil)

	if Router() != custom {
		t.Error("SetRouterHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testRouterHooks struct{ NoopRouterHooks }
type testCacheHooks struct{ NoopCacheHooks }
