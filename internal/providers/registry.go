package providers

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderExists is returned when trying to register a duplicate provider.
	ErrProviderExists = errors.New("provider already exists")

	// ErrNoAvailableProvider is returned when no provider is available.
	ErrNoAvailableProvider = errors.New("no available provider")
)

// Registry manages explain provider registration and lookup.
type Registry struct {
	mu          sync.RWMutex
	providers   map[string]ExplainProvider
	defaultName string
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]ExplainProvider),
	}
}

// Register registers a provider. The first available provider becomes the
// default.
func (r *Registry) Register(p ExplainProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return ErrProviderExists
	}

	r.providers[name] = p

	if r.defaultName == "" && p.Available() {
		r.defaultName = name
	}

	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (ExplainProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[name]
	if !exists {
		return nil, ErrProviderNotFound
	}

	return p, nil
}

// Default returns the default provider.
func (r *Registry) Default() (ExplainProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaultName == "" {
		return nil, ErrNoAvailableProvider
	}

	return r.providers[r.defaultName], nil
}

// SetDefault sets the default provider by name.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return ErrProviderNotFound
	}

	r.defaultName = name
	return nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available returns all available providers sorted by name.
func (r *Registry) Available() []ExplainProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ExplainProvider
	for _, p := range r.providers {
		if p.Available() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
