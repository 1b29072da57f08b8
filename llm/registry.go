package llm

import (
	"sort"
	"sync"
)

// Registry holds the configured providers and tracks which one is active.
// Cycle advances through providers in sorted-ID order, wrapping around; it
// backs the cycle_llm gesture action.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces a provider by its ID. The first registered
// provider becomes active.
func (r *Registry) Register(p Provider) {
	if p == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[p.ID()] = p
	if r.active == "" {
		r.active = p.ID()
	}
}

// Get returns the provider with the given ID, or nil.
func (r *Registry) Get(id string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[id]
}

// IDs returns all registered provider IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.idsLocked()
}

func (r *Registry) idsLocked() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Active returns the active provider, or nil when the registry is empty.
func (r *Registry) Active() Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[r.active]
}

// SetActive selects the provider with the given ID. Unknown IDs are
// ignored and reported as false.
func (r *Registry) SetActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return false
	}
	r.active = id
	return true
}

// Cycle advances the active provider to the next ID in sorted order,
// wrapping at the end, and returns the new active ID. An empty registry
// returns "".
func (r *Registry) Cycle() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.idsLocked()
	if len(ids) == 0 {
		return ""
	}

	next := ids[0]
	for i, id := range ids {
		if id == r.active && i+1 < len(ids) {
			next = ids[i+1]
			break
		}
	}
	r.active = next
	return next
}
