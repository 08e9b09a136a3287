// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about artifact generation, environment activation, and
// cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which keeps the generator
// and activator packages free of any particular metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGeneratorHooks(&myGeneratorHooks{})
//	    observability.SetActivationHooks(&myActivationHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Generator().OnGenerateStart(ctx, source)
//	// ... project the graph ...
//	observability.Generator().OnGenerateComplete(ctx, source, bundles, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Generator Hooks
// =============================================================================

// GeneratorHooks receives events from artifact generation.
type GeneratorHooks interface {
	OnGenerateStart(ctx context.Context, source string)
	OnGenerateComplete(ctx context.Context, source string, bundles int, duration time.Duration, err error)

	// OnWrite records the artifact write decision. changed is false when the
	// file already held identical bytes and was left untouched.
	OnWrite(ctx context.Context, path string, size int, changed bool)
}

// =============================================================================
// Activation Hooks
// =============================================================================

// ActivationHooks receives events from the environment activator.
// Activation is synchronous and context-free, so these hooks carry no context.
type ActivationHooks interface {
	OnActivate(slot string, vars int, err error)
	OnDeactivate(slot string, vars int, err error)
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

// NoopGeneratorHooks is a no-op implementation of GeneratorHooks.
type NoopGeneratorHooks struct{}

func (NoopGeneratorHooks) OnGenerateStart(context.Context, string) {}
func (NoopGeneratorHooks) OnGenerateComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopGeneratorHooks) OnWrite(context.Context, string, int, bool) {}

// NoopActivationHooks is a no-op implementation of ActivationHooks.
type NoopActivationHooks struct{}

func (NoopActivationHooks) OnActivate(string, int, error)   {}
func (NoopActivationHooks) OnDeactivate(string, int, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	generatorHooks  GeneratorHooks  = NoopGeneratorHooks{}
	activationHooks ActivationHooks = NoopActivationHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	hooksMu         sync.RWMutex
)

// SetGeneratorHooks registers custom generator hooks.
// This should be called once at application startup before any generation.
func SetGeneratorHooks(h GeneratorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generatorHooks = h
	}
}

// SetActivationHooks registers custom activation hooks.
func SetActivationHooks(h ActivationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		activationHooks = h
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

// Generator returns the registered generator hooks.
func Generator() GeneratorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generatorHooks
}

// Activation returns the registered activation hooks.
func Activation() ActivationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return activationHooks
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
	generatorHooks = NoopGeneratorHooks{}
	activationHooks = NoopActivationHooks{}
	cacheHooks = NoopCacheHooks{}
}
