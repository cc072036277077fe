// SPDX-License-Identifier: MPL-2.0

// Package adapterreg holds the construction-time adapter registry: the
// only process-wide mutable state the engine carries, and only until
// Freeze is called. Grounded on the teacher's internal/runtime.Registry,
// generalized from a mutable map callers add to at any time into a
// write-once table that panics on Register after Freeze.
package adapterreg

import (
	"fmt"
	"sync"

	"github.com/xec-sh/xec/internal/xecore"
)

// Registry maps adapter tags to their Adapter implementation. Every method
// takes the registry's lock, so Get and All are safe to call concurrently;
// Register is expected to happen only at construction, before Freeze.
type Registry struct {
	mu       sync.RWMutex
	adapters map[xecore.AdapterTag]xecore.Adapter
	frozen   bool
}

// New constructs an empty, unfrozen Registry.
func New() *Registry {
	return &Registry{adapters: make(map[xecore.AdapterTag]xecore.Adapter)}
}

// Register binds an adapter to its tag. Panics if the registry is already
// frozen, or if tag is already registered.
func (r *Registry) Register(tag xecore.AdapterTag, adapter xecore.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic(fmt.Sprintf("adapterreg: Register(%s) after Freeze", tag))
	}
	if _, exists := r.adapters[tag]; exists {
		panic(fmt.Sprintf("adapterreg: %s already registered", tag))
	}
	r.adapters[tag] = adapter
}

// Freeze marks the registry read-only. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Get returns the adapter registered for tag, or false if none is.
func (r *Registry) Get(tag xecore.AdapterTag) (xecore.Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[tag]
	return a, ok
}

// All returns every registered adapter, for bulk Dispose.
func (r *Registry) All() []xecore.Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]xecore.Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	return out
}
