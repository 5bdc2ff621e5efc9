package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a backend instance of T from a config map.
type Factory[T any] func(config map[string]string) (T, error)

// Registry holds named backend factories. A registry may carry a
// default backend name used when a caller does not specify one.
type Registry[T any] struct {
	mu          sync.RWMutex
	factories   map[string]Factory[T]
	defaultName string
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// Register adds a named factory. The first registered factory becomes
// the default until SetDefault overrides it.
func (r *Registry[T]) Register(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.factories) == 0 {
		r.defaultName = name
	}
	r.factories[name] = factory
}

// SetDefault marks the backend used when Create is called with an
// empty name.
func (r *Registry[T]) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultName = name
}

// Create instantiates T using the named factory. An empty name selects
// the default backend.
func (r *Registry[T]) Create(name string, config map[string]string) (T, error) {
	r.mu.RLock()
	if name == "" {
		name = r.defaultName
	}
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown backend %q", name)
	}
	return factory(config)
}

// List returns all registered backend names, sorted.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
