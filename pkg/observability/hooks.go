// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about API calls, quota-guard refusals, and
// cache operations; libraries emit through the package-level accessors and
// never import a backend.
package observability

import (
	"context"
	"sync"
	"time"
)

// APIHooks receives events from GitHub API calls.
type APIHooks interface {
	// OnRequest records an outgoing API request.
	OnRequest(ctx context.Context, url string)

	// OnResponse records an API response.
	OnResponse(ctx context.Context, url string, statusCode int, duration time.Duration)

	// OnGuard records a pre-flight refusal by the quota guard.
	OnGuard(ctx context.Context, remaining int)
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

// NoopAPIHooks is a no-op implementation of APIHooks.
type NoopAPIHooks struct{}

func (NoopAPIHooks) OnRequest(context.Context, string)                      {}
func (NoopAPIHooks) OnResponse(context.Context, string, int, time.Duration) {}
func (NoopAPIHooks) OnGuard(context.Context, int)                           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

var (
	apiHooks   APIHooks   = NoopAPIHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetAPIHooks registers custom API hooks.
// This should be called once at application startup before any API calls.
func SetAPIHooks(h APIHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		apiHooks = h
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

// API returns the registered API hooks.
func API() APIHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return apiHooks
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
	apiHooks = NoopAPIHooks{}
	cacheHooks = NoopCacheHooks{}
}
