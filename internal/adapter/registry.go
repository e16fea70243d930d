package adapter

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds every SourceAdapter constructed at startup, keyed by
// source type and indexed by declared prefix. It is built once and read
// concurrently for the lifetime of the process; there is no mutation
// after Register returns: an adapter registry constructed once at
// startup and read concurrently thereafter.
type Registry struct {
	mu        sync.RWMutex
	byType    map[string]SourceAdapter
	byPrefix  map[string]prefixEntry
	typeOrder []string
}

type prefixEntry struct {
	adapter   SourceAdapter
	transform func(string) string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byType:   make(map[string]SourceAdapter),
		byPrefix: make(map[string]prefixEntry),
	}
}

// Register adds a adapters to the registry. It panics on a duplicate
// source type, since that is a startup wiring bug, not a runtime
// condition any caller should recover from.
func (r *Registry) Register(a SourceAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := a.SourceType()
	if _, exists := r.byType[st]; exists {
		panic(fmt.Sprintf("adapter registry: duplicate source type %q", st))
	}
	r.byType[st] = a
	r.typeOrder = append(r.typeOrder, st)

	// The source type itself is always a valid prefix with identity
	// transform.
	r.byPrefix[st] = prefixEntry{adapter: a, transform: identity}

	for _, p := range a.Prefixes() {
		transform := p.IDTransform
		if transform == nil {
			transform = identity
		}
		r.byPrefix[p.Prefix] = prefixEntry{adapter: a, transform: transform}
	}
}

func identity(tail string) string { return tail }

// Get returns the adapter registered for a source type.
func (r *Registry) Get(sourceType string) (SourceAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byType[sourceType]
	return a, ok
}

// ByPrefix returns the adapter and transformed local id for a declared
// prefix, or (nil, "", false) if no adapter declares it.
func (r *Registry) ByPrefix(prefix, tail string) (SourceAdapter, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byPrefix[prefix]
	if !ok {
		return nil, "", false
	}
	return e.adapter, e.transform(tail), true
}

// SourceTypes returns every registered source type, sorted
// alphabetically (deterministic for tests and for default-source fallbacks).
func (r *Registry) SourceTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.typeOrder))
	copy(out, r.typeOrder)
	sort.Strings(out)
	return out
}

// All returns every registered adapter, in source-type-sorted order.
func (r *Registry) All() []SourceAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	out := make([]SourceAdapter, 0, len(types))
	for _, t := range types {
		out = append(out, r.byType[t])
	}
	return out
}
