package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// SourceFunc produces synthetic parent-like property bags for a DynamicDependency.
type SourceFunc func(ctx context.Context) ([]Properties, error)

// GateFunc reports whether a feature is enabled for a FeatureGate.
type GateFunc func(ctx context.Context) (bool, error)

// CapabilityRegistry is a Capabilities implementation backed by named functions.
// Successful results are memoized for the lifetime of the registry, since they
// are stable for a given identity and session. Failures are not cached.
type CapabilityRegistry struct {
	mu      sync.Mutex
	sources map[string]SourceFunc
	gates   map[string]GateFunc

	sourceCache map[string][]Properties
	gateCache   map[string]bool
}

// NewCapabilityRegistry creates an empty registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{
		sources:     make(map[string]SourceFunc),
		gates:       make(map[string]GateFunc),
		sourceCache: make(map[string][]Properties),
		gateCache:   make(map[string]bool),
	}
}

// RegisterSource registers a dynamic dependency source under name.
func (r *CapabilityRegistry) RegisterSource(name string, fn SourceFunc) *CapabilityRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = fn
	delete(r.sourceCache, name)
	return r
}

// RegisterGate registers a feature gate check under name.
func (r *CapabilityRegistry) RegisterGate(name string, fn GateFunc) *CapabilityRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gates[name] = fn
	delete(r.gateCache, name)
	return r
}

// ListSource implements Capabilities.
func (r *CapabilityRegistry) ListSource(ctx context.Context, name string) ([]Properties, error) {
	r.mu.Lock()
	if cached, ok := r.sourceCache[name]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	fn, ok := r.sources[name]
	r.mu.Unlock()

	if !ok {
		return nil, NewConfigurationError(fmt.Sprintf("unknown dependency source: %s", name), nil).
			WithCode(ErrCodeUnknownCapability)
	}

	bags, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sourceCache[name] = bags
	r.mu.Unlock()
	return bags, nil
}

// CheckGate implements Capabilities.
func (r *CapabilityRegistry) CheckGate(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	if cached, ok := r.gateCache[name]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	fn, ok := r.gates[name]
	r.mu.Unlock()

	if !ok {
		return false, NewConfigurationError(fmt.Sprintf("unknown feature gate: %s", name), nil).
			WithCode(ErrCodeUnknownCapability)
	}

	enabled, err := fn(ctx)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	r.gateCache[name] = enabled
	r.mu.Unlock()
	return enabled, nil
}

// Names returns the registered source and gate names.
func (r *CapabilityRegistry) Names() (sources, gates []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.sources {
		sources = append(sources, name)
	}
	for name := range r.gates {
		gates = append(gates, name)
	}
	return sources, gates
}

// MissingCapabilities returns the capability names referenced by the catalog
// that are not registered, sorted.
func (c Catalog) MissingCapabilities(r *CapabilityRegistry) []string {
	sources, gates := r.Names()
	known := make(map[string]bool, len(sources)+len(gates))
	for _, name := range sources {
		known["source:"+name] = true
	}
	for _, name := range gates {
		known["gate:"+name] = true
	}

	seen := make(map[string]bool)
	var missing []string
	for _, dep := range c.Dependencies {
		var key, name string
		switch d := dep.(type) {
		case DynamicDependency:
			key, name = "source:"+d.Source, d.Source
		case FeatureGate:
			key, name = "gate:"+d.Check, d.Check
		default:
			continue
		}
		if !known[key] && !seen[key] {
			seen[key] = true
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
