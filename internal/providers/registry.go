package providers

import (
	"fmt"

	"swap-router.backend/internal/domain/entities"
)

// Registry maps provider identifiers to their adapters. Unknown providers
// are rejected here, at the boundary, rather than at the quote step.
type Registry struct {
	order    []entities.Provider
	adapters map[entities.Provider]Adapter
}

// NewRegistry builds a registry from the given adapters, preserving
// registration order for deterministic graph assembly.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[entities.Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, dup := r.adapters[a.Provider()]; dup {
			continue
		}
		r.adapters[a.Provider()] = a
		r.order = append(r.order, a.Provider())
	}
	return r
}

// Get returns the adapter for a provider.
func (r *Registry) Get(p entities.Provider) (Adapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %q", p)
	}
	return a, nil
}

// All returns the adapters in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.adapters[p])
	}
	return out
}
