package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
)

// Registry is a thread-safe registry of chat model plugins keyed by
// lower-cased provider name.
type Registry struct {
	mu       sync.RWMutex
	registry map[string]spi.PluginFactory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		registry: make(map[string]spi.PluginFactory),
	}
}

// Register adds a plugin factory under name.
// Returns an error if the name is already taken.
func (r *Registry) Register(name string, factory spi.PluginFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(name, factory)
}

func (r *Registry) registerLocked(name string, factory spi.PluginFactory) error {
	key := strings.ToLower(name)
	if _, ok := r.registry[key]; ok {
		return fmt.Errorf("provider %s is already registered", key)
	}
	r.registry[key] = factory
	return nil
}

// MustRegister is Register that panics on a duplicate name.
func (r *Registry) MustRegister(name string, factory spi.PluginFactory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Get returns the plugin factory for name (case-insensitive).
func (r *Registry) Get(name string) (spi.PluginFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q, supported: %s", name, strings.Join(r.listLocked(), ", "))
	}
	return factory, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.registry[strings.ToLower(name)]
	return ok
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge copies every plugin of other into r.
func (r *Registry) Merge(other *Registry) error {
	other.mu.RLock()
	defer other.mu.RUnlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, factory := range other.registry {
		if err := r.registerLocked(name, factory); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registry)
}
