package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

// Registry holds the statically linked action factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register installs a factory under typeName
func (r *Registry) Register(typeName string, factory Factory) error {
	if typeName == "" {
		return fmt.Errorf("%w: action type is required", errors.ErrInvalidArgument)
	}
	if factory == nil {
		return fmt.Errorf("%w: factory is required for %s", errors.ErrInvalidArgument, typeName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[typeName]; exists {
		return fmt.Errorf("%w: %s", errors.ErrAlreadyRegistered, typeName)
	}
	r.factories[typeName] = factory
	return nil
}

// MustRegister panics if registration fails
func (r *Registry) MustRegister(typeName string, factory Factory) {
	if err := r.Register(typeName, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for typeName
func (r *Registry) Lookup(typeName string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[typeName]
	return factory, ok
}

// Types returns the registered type names, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for name := range r.factories {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
