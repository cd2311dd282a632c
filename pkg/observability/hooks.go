// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about routing runs and cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRouterHooks(&myRouterHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Router().OnLayerStart(layer, gateCount)
//	// ... route the layer ...
//	observability.Router().OnLayerComplete(layer, swapCount)
package observability

import (
	"context"
	"sync"
)

// =============================================================================
// Router Hooks
// =============================================================================

// RouterHooks receives events from the routing engine. Events are emitted
// synchronously from the routing goroutine, so implementations must be fast;
// heavy work belongs on a channel or buffer.
type RouterHooks interface {
	// OnLayerStart fires before a program layer is routed.
	OnLayerStart(layer, gateCount int)

	// OnBetterLink fires when the candidate search selects an alternate link
	// over the baseline. Accuracies are predicted success probabilities.
	OnBetterLink(p0, p1, linkA, linkB int, baseline, accuracy float64)

	// OnSwapInserted fires for every swap instruction added to the output.
	OnSwapInserted(physA, physB int)

	// OnLayerComplete fires after a layer has been re-emitted, with the
	// number of swaps the layer cost.
	OnLayerComplete(layer, swaps int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRouterHooks is a no-op implementation of RouterHooks.
type NoopRouterHooks struct{}

func (NoopRouterHooks) OnLayerStart(int, int)                             {}
func (NoopRouterHooks) OnBetterLink(int, int, int, int, float64, float64) {}
func (NoopRouterHooks) OnSwapInserted(int, int)                           {}
func (NoopRouterHooks) OnLayerComplete(int, int)                          {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	routerHooks RouterHooks = NoopRouterHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetRouterHooks registers custom router hooks.
// This should be called once at application startup before any routing runs.
func SetRouterHooks(h RouterHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		routerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Router returns the registered router hooks.
func Router() RouterHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return routerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	routerHooks = NoopRouterHooks{}
	cacheHooks = NoopCacheHooks{}
}
