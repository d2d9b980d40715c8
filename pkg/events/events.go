// Package events provides the process-wide build event bus.
//
// The bus carries two signals the cache layer subscribes to:
//   - resource modified: a watched input file changed on disk
//   - compile cache reset: all compiled template functions must be discarded
//
// The bus is an explicitly constructed object rather than package-level
// state so tests can build a fresh instance per case and the CLI can tear
// it down on config reset. Handlers run synchronously on the emitting
// goroutine, in subscription order.
package events

import "sync"

// ResourceModifiedHandler receives the path of a modified input file.
type ResourceModifiedHandler func(path string)

// CompileCacheResetHandler is notified when compiled templates must be
// discarded wholesale, e.g. after a configuration reset.
type CompileCacheResetHandler func()

// Bus dispatches build lifecycle events to registered handlers.
// The zero value is not usable; use NewBus.
type Bus struct {
	mu       sync.RWMutex
	modified []ResourceModifiedHandler
	reset    []CompileCacheResetHandler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// OnResourceModified registers a handler for resource-modified events.
func (b *Bus) OnResourceModified(h ResourceModifiedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modified = append(b.modified, h)
}

// OnCompileCacheReset registers a handler for compile-cache-reset events.
func (b *Bus) OnCompileCacheReset(h CompileCacheResetHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset = append(b.reset, h)
}

// EmitResourceModified notifies all subscribers that path changed.
func (b *Bus) EmitResourceModified(path string) {
	b.mu.RLock()
	handlers := make([]ResourceModifiedHandler, len(b.modified))
	copy(handlers, b.modified)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(path)
	}
}

// EmitCompileCacheReset notifies all subscribers to discard compiled
// template functions.
func (b *Bus) EmitCompileCacheReset() {
	b.mu.RLock()
	handlers := make([]CompileCacheResetHandler, len(b.reset))
	copy(handlers, b.reset)
	b.mu.RUnlock()

	for _, h := range handlers {
		h()
	}
}

// Reset drops all registered handlers. Used on explicit teardown.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modified = nil
	b.reset = nil
}
