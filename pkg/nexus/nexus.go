// Package nexus implements the equivalence-class value cell that sits at
// the bottom of the reactive graph: a Nexus holds one stored immutable
// value shared by every hook joined into it.
package nexus

import (
	"sync"

	"github.com/marmos91/nexus/pkg/immutable"
)

// Nexus is an equivalence class of hooks sharing a single stored
// immutable value plus its prior snapshot (N1-N3). Member hooks are
// tracked generically as `any` so this package has no dependency on
// pkg/hook; pkg/hook holds *Nexus, not the other way around.
type Nexus struct {
	mu            sync.RWMutex
	storedValue   immutable.Value
	previousValue immutable.Value
	members       map[any]struct{}
}

// New creates a singleton nexus holding the given already-normalized
// value, with no members yet (the caller adds the founding hook
// immediately after construction).
func New(initial immutable.Value) *Nexus {
	return &Nexus{
		storedValue:   initial,
		previousValue: initial,
		members:       make(map[any]struct{}),
	}
}

// AddHook registers h as a member. Safe to call concurrently with
// ReadStored; callers mutating membership during the submission pipeline
// must already hold the manager's critical section.
func (n *Nexus) AddHook(h any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.members[h] = struct{}{}
}

// RemoveHook detaches h. Returns true if the nexus is now empty (N1: the
// caller must discard an empty nexus).
func (n *Nexus) RemoveHook(h any) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.members, h)
	return len(n.members) == 0
}

// Members returns a defensive snapshot of current member hooks, used by
// the submission pipeline's notification fan-out (Step 8).
func (n *Nexus) Members() []any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]any, 0, len(n.members))
	for m := range n.members {
		out = append(out, m)
	}
	return out
}

// MemberCount reports the number of member hooks.
func (n *Nexus) MemberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.members)
}

// ReadStored takes a short read lock to snapshot the current stored
// value. Unrestricted: callers never need the manager's critical section
// just to read.
func (n *Nexus) ReadStored() immutable.Value {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.storedValue
}

// ReadPrevious snapshots the value stored before the most recent commit.
func (n *Nexus) ReadPrevious() immutable.Value {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.previousValue
}

// WriteStored commits newValue as the new stored value, moving the
// current stored value into previousValue. It is only invoked by the
// submission pipeline under the manager's critical section, and takes the
// nexus's write lock so a concurrent ReadStored never observes a torn
// value.
func (n *Nexus) WriteStored(newValue immutable.Value) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.previousValue = n.storedValue
	n.storedValue = newValue
}

// AbsorbMembers transfers every member of other into n and returns the
// transferred member set, used by the join protocol to merge two nexuses
// while preserving n's identity and stored value.
func (n *Nexus) AbsorbMembers(other *Nexus) []any {
	other.mu.Lock()
	transferred := make([]any, 0, len(other.members))
	for m := range other.members {
		transferred = append(transferred, m)
	}
	other.members = make(map[any]struct{})
	other.mu.Unlock()

	n.mu.Lock()
	for _, m := range transferred {
		n.members[m] = struct{}{}
	}
	n.mu.Unlock()

	return transferred
}
