package action

import (
	"slices"
	"sync"
)

// Flavors is a concurrency-safe set of active flavor tokens. It
// implements Context.
type Flavors struct {
	mu  sync.RWMutex
	set map[string]struct{}
}

// NewFlavors creates a flavor set with the given tokens active.
func NewFlavors(initial ...string) *Flavors {
	f := &Flavors{set: make(map[string]struct{}, len(initial))}
	for _, name := range initial {
		f.set[name] = struct{}{}
	}
	return f
}

// Set activates a flavor.
func (f *Flavors) Set(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set[name] = struct{}{}
}

// Clear deactivates a flavor.
func (f *Flavors) Clear(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.set, name)
}

// Has returns true if the flavor is active.
func (f *Flavors) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.set[name]
	return ok
}

// Flavors returns the active flavors, sorted.
func (f *Flavors) Flavors() []string {
	f.mu.RLock()
	names := make([]string, 0, len(f.set))
	for name := range f.set {
		names = append(names, name)
	}
	f.mu.RUnlock()

	slices.Sort(names)
	return names
}
