package cdl

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry tracks every live ColorCorrection by id. It is safe for concurrent
// use; a zero Registry is not, use NewRegistry.
type Registry struct {
	mu      sync.Mutex
	members map[string]*ColorCorrection
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{members: make(map[string]*ColorCorrection)}
}

// NewCorrection creates and registers a correction. It fails with
// ErrDuplicateID when id is already taken and ErrParse when id is blank.
func (r *Registry) NewCorrection(id string) (*ColorCorrection, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, Parsef("color correction id must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.members[id]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	cc := &ColorCorrection{id: id}
	r.members[id] = cc
	return cc, nil
}

// Lookup returns the correction registered under id.
func (r *Registry) Lookup(id string) (*ColorCorrection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cc, ok := r.members[strings.TrimSpace(id)]
	return cc, ok
}

// Release unregisters the given corrections. An id is only removed while it
// still maps to the same entity.
func (r *Registry) Release(ccs ...*ColorCorrection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cc := range ccs {
		if cc == nil {
			continue
		}
		if current, ok := r.members[cc.id]; ok && current == cc {
			delete(r.members, cc.id)
		}
	}
}

// Reset forgets every registered id. Corrections already handed out keep
// their field values.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = make(map[string]*ColorCorrection)
}

// Len reports the number of registered corrections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
