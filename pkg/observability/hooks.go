// Package observability provides hooks for metrics, tracing, and logging.
//
// The package uses a simple hooks pattern: hook interfaces per event
// category, no-op defaults, and registration at startup. Libraries emit
// events without depending on any observability backend, and main wires in
// whichever backend (OpenTelemetry, Prometheus, plain logging) the
// deployment uses.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPlanHooks(&myPlanHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Plan().OnOptimizeStart(ctx, mode, starts)
//	// ... run the search ...
//	observability.Plan().OnOptimizeComplete(ctx, mode, cost, converged, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PlanHooks receives events from the planning pipeline.
type PlanHooks interface {
	// OnPlanStart fires when a planning run begins.
	OnPlanStart(ctx context.Context, mode string, itemCount int)

	// OnPlanComplete fires when a planning run finishes, successfully or not.
	OnPlanComplete(ctx context.Context, mode string, windowCount int, duration time.Duration, err error)

	// OnOptimizeStart fires before the multi-start search.
	OnOptimizeStart(ctx context.Context, mode string, starts int)

	// OnOptimizeComplete fires after the multi-start search.
	OnOptimizeComplete(ctx context.Context, mode string, cost float64, converged bool, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// NoopPlanHooks is a no-op implementation of PlanHooks.
type NoopPlanHooks struct{}

func (NoopPlanHooks) OnPlanStart(context.Context, string, int)                              {}
func (NoopPlanHooks) OnPlanComplete(context.Context, string, int, time.Duration, error)     {}
func (NoopPlanHooks) OnOptimizeStart(context.Context, string, int)                          {}
func (NoopPlanHooks) OnOptimizeComplete(context.Context, string, float64, bool, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	planHooks  PlanHooks  = NoopPlanHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetPlanHooks registers custom plan hooks.
// This should be called once at application startup before any planning runs.
func SetPlanHooks(h PlanHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		planHooks = h
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

// Plan returns the registered plan hooks.
func Plan() PlanHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return planHooks
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
	planHooks = NoopPlanHooks{}
	cacheHooks = NoopCacheHooks{}
}
