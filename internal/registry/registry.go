package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Factory builds a module object from its manifest settings. The returned
// value is either the object itself or a container holding it under the
// default export; see Export.
type Factory func(ctx context.Context, settings Settings) (Export, error)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the factories available to a single application instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to name. Registering the same name twice is a
// programmer error and panics.
func (r *Registry) Register(name string, f Factory) {
	if name == "" || f == nil {
		panic("registry: factory name and function are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("factory with name '%s' already registered", name))
	}
	slog.Debug("Registering module factory.", "name", name)
	r.factories[name] = f
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns every registered factory name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered factories.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}
