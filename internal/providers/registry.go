package providers

import (
	"fmt"
	"sync"
)

// Registry holds configured providers with enable/disable state. It is
// constructed once per process and passed by reference; safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
	order   []string
}

type registryEntry struct {
	provider SearchProvider
	enabled  bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// Register adds a provider, enabled by default. Registering the same name
// twice replaces the earlier provider.
func (r *Registry) Register(p SearchProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = &registryEntry{provider: p, enabled: true}
}

// Get returns a provider by name regardless of enabled state.
func (r *Registry) Get(name string) (SearchProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("provider not registered: %s", name)
	}
	return entry.provider, nil
}

// SetEnabled toggles a provider.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("provider not registered: %s", name)
	}
	entry.enabled = enabled
	return nil
}

// Enabled returns all enabled providers in registration order.
func (r *Registry) Enabled() []SearchProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []SearchProvider
	for _, name := range r.order {
		if entry := r.entries[name]; entry.enabled {
			out = append(out, entry.provider)
		}
	}
	return out
}

// Names returns all registered provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
