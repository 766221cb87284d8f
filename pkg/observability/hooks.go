// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module never import a metrics backend. Instead they call
// the hooks registered here, which default to no-ops. A binary that wants
// Prometheus counters or trace spans registers its own implementations once
// at startup.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSliceHooks(&mySliceHooks{})
//	    observability.SetExportHooks(&myExportHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Slice().OnSliceStart(ctx, "auto", path)
//	// ... detect regions ...
//	observability.Slice().OnSliceComplete(ctx, "auto", path, n, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Slice Hooks
// =============================================================================

// SliceHooks receives events from the auto and grid slicing stages.
// mode is "auto" or "grid".
type SliceHooks interface {
	OnSliceStart(ctx context.Context, mode, source string)
	OnSliceComplete(ctx context.Context, mode, source string, slices int, duration time.Duration, err error)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from the exporter.
type ExportHooks interface {
	// OnExportStart fires after the selection is validated, before any file
	// is written.
	OnExportStart(ctx context.Context, dir string, slices int)

	// OnSliceWritten fires once per PNG that reached the output directory.
	OnSliceWritten(ctx context.Context, path string)

	// OnExportComplete fires on success and on failure. written counts PNGs
	// written before the export stopped.
	OnExportComplete(ctx context.Context, dir string, written int, duration time.Duration, err error)
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
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSliceHooks is a no-op implementation of SliceHooks.
type NoopSliceHooks struct{}

func (NoopSliceHooks) OnSliceStart(context.Context, string, string) {}
func (NoopSliceHooks) OnSliceComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, string, int)                          {}
func (NoopExportHooks) OnSliceWritten(context.Context, string)                              {}
func (NoopExportHooks) OnExportComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	sliceHooks  SliceHooks  = NoopSliceHooks{}
	exportHooks ExportHooks = NoopExportHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	serverHooks ServerHooks = NoopServerHooks{}
	hooksMu     sync.RWMutex
)

// SetSliceHooks registers custom slice hooks. A nil argument is ignored.
func SetSliceHooks(h SliceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sliceHooks = h
	}
}

// SetExportHooks registers custom export hooks. A nil argument is ignored.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. A nil argument is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom server hooks. A nil argument is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Slice returns the registered slice hooks.
func Slice() SliceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sliceHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	sliceHooks = NoopSliceHooks{}
	exportHooks = NoopExportHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
