// Package xset provides Set, an unordered-collection observable: a single
// writable hook holding an immutable.ImmutableSet. It mirrors nexpy's
// set-like x_objects as a thin consumer of the public Owner contract.
package xset

import (
	"fmt"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/immutable"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/owner"
)

// Elements marks a plain slice as representing an unordered collection, so
// Normalize produces an immutable.ImmutableSet instead of an
// ImmutableSlice for it.
type Elements []any

// Elements implements immutable.SetLike.
func (e Elements) Elements() []any { return e }

// Set owns a single "elements" hook holding an unordered collection.
type Set struct {
	owner.Base
	elements *hook.Hook
}

// New builds a Set holding initial (normalized to an ImmutableSet) on mgr.
func New(mgr *manager.Manager, initial []any) (*Set, error) {
	x := &Set{}
	x.Init(x)

	h, err := mgr.NewHookOwned(x.SelfAddr(), Elements(initial), false)
	if err != nil {
		return nil, err
	}
	x.elements = h
	x.Bind("elements", h)
	return x, nil
}

// ElementsHook returns the underlying handle, for joining with other
// observables.
func (x *Set) ElementsHook() *hook.Hook { return x.elements }

// Elements returns the current collection as a plain slice.
func (x *Set) Elements() []any {
	set, ok := x.elements.Value().(immutable.ImmutableSet)
	if !ok {
		return nil
	}
	out := make([]any, 0, set.Len())
	for _, v := range set.Elements() {
		out = append(out, v.Raw())
	}
	return out
}

// Len returns the number of elements currently in the set.
func (x *Set) Len() int {
	set, ok := x.elements.Value().(immutable.ImmutableSet)
	if !ok {
		return 0
	}
	return set.Len()
}

// Contains reports whether v is currently a member of the set.
func (x *Set) Contains(v any) bool {
	set, ok := x.elements.Value().(immutable.ImmutableSet)
	if !ok {
		return false
	}
	return set.Contains(v)
}

// Replace submits an entirely new collection in Normal mode.
func (x *Set) Replace(elements []any) error {
	ok, msg := x.elements.Set(Elements(elements))
	if !ok {
		return fmt.Errorf("xset: %s", msg)
	}
	return nil
}

// Add submits the current collection with v added, a no-op if v is already
// a member.
func (x *Set) Add(v any) error {
	if x.Contains(v) {
		return nil
	}
	return x.Replace(append(x.Elements(), v))
}

// Remove submits the current collection with v removed, a no-op if v is
// not a member.
func (x *Set) Remove(v any) error {
	current := x.Elements()
	out := make([]any, 0, len(current))
	found := false
	for _, e := range current {
		if !found && e == v {
			found = true
			continue
		}
		out = append(out, e)
	}
	if !found {
		return nil
	}
	return x.Replace(out)
}

// Complete implements hook.Owner: a single-key owner never derives
// additional keys.
func (x *Set) Complete(submitted, current map[any]any) map[any]any { return nil }

// Validate implements hook.Owner. A Set accepts any collection.
func (x *Set) Validate(complete map[any]any) (bool, string) { return true, "" }

// Invalidate implements hook.Owner. Set keeps no derived cache to drop.
func (x *Set) Invalidate() {}
