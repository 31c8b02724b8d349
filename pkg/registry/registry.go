// Package registry is an optional, process-wide catalog of named owners.
// Nothing in pkg/manager requires it — owners are ordinary Go values the
// application is free to keep track of however it likes — but
// pkg/httpapi, pkg/snapshot, and nexusctl's inspect command all need a way
// to enumerate "every owner currently live" without the core importing
// them, so this package gives them a shared place to register into.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/marmos91/nexus/pkg/hook"
)

// Registry is a concurrency-safe name-to-Owner catalog.
type Registry struct {
	mu     sync.RWMutex
	owners map[string]hook.Owner
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{owners: make(map[string]hook.Owner)}
}

// Register adds o under name, replacing any owner previously registered
// under the same name.
func (r *Registry) Register(name string, o hook.Owner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[name] = o
}

// Unregister removes name, if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners, name)
}

// Get returns the owner registered under name.
func (r *Registry) Get(name string) (hook.Owner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.owners[name]
	return o, ok
}

// Names returns every registered name, sorted for stable output.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.owners))
	for name := range r.owners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot describes one registered owner's current state.
type Snapshot struct {
	Name   string         `json:"name"`
	Values map[string]any `json:"values"`
}

// Snapshots returns a stable-ordered snapshot of every registered owner's
// CurrentValues.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.owners))
	for name := range r.owners {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Snapshot, 0, len(names))
	for _, name := range names {
		values := make(map[string]any)
		for k, v := range r.owners[name].CurrentValues() {
			values[fmt.Sprint(k)] = v
		}
		out = append(out, Snapshot{Name: name, Values: values})
	}
	return out
}
