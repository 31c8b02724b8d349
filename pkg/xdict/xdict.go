// Package xdict provides Dict, a keyed-mapping observable: a single
// writable hook holding an immutable.ImmutableMap. It mirrors nexpy's
// mapping-like x_objects as a thin consumer of the public Owner contract.
package xdict

import (
	"fmt"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/immutable"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/owner"
)

// Dict owns a single "entries" hook holding a keyed mapping.
type Dict struct {
	owner.Base
	entries *hook.Hook
}

// New builds a Dict holding initial (normalized to an ImmutableMap) on
// mgr.
func New(mgr *manager.Manager, initial map[string]any) (*Dict, error) {
	x := &Dict{}
	x.Init(x)

	h, err := mgr.NewHookOwned(x.SelfAddr(), initial, false)
	if err != nil {
		return nil, err
	}
	x.entries = h
	x.Bind("entries", h)
	return x, nil
}

// EntriesHook returns the underlying handle, for joining with other
// observables.
func (x *Dict) EntriesHook() *hook.Hook { return x.entries }

// Entries returns the current mapping as a plain map.
func (x *Dict) Entries() map[string]any {
	m, ok := x.entries.Value().(immutable.ImmutableMap)
	if !ok {
		return nil
	}
	out := make(map[string]any, m.Len())
	m.Each(func(key, value immutable.Value) {
		k, ok := key.Raw().(string)
		if !ok {
			k = fmt.Sprint(key.Raw())
		}
		out[k] = value.Raw()
	})
	return out
}

// Get returns the value stored under key, if any.
func (x *Dict) Get(key string) (any, bool) {
	m, ok := x.entries.Value().(immutable.ImmutableMap)
	if !ok {
		return nil, false
	}
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return v.Raw(), true
}

// Len returns the number of entries currently in the mapping.
func (x *Dict) Len() int {
	m, ok := x.entries.Value().(immutable.ImmutableMap)
	if !ok {
		return 0
	}
	return m.Len()
}

// Replace submits an entirely new mapping in Normal mode.
func (x *Dict) Replace(entries map[string]any) error {
	ok, msg := x.entries.Set(entries)
	if !ok {
		return fmt.Errorf("xdict: %s", msg)
	}
	return nil
}

// Set submits the current mapping with key bound to v.
func (x *Dict) Set(key string, v any) error {
	entries := x.Entries()
	entries[key] = v
	return x.Replace(entries)
}

// Delete submits the current mapping with key removed, a no-op if key is
// absent.
func (x *Dict) Delete(key string) error {
	entries := x.Entries()
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return x.Replace(entries)
}

// Complete implements hook.Owner: a single-key owner never derives
// additional keys.
func (x *Dict) Complete(submitted, current map[any]any) map[any]any { return nil }

// Validate implements hook.Owner. A Dict accepts any mapping.
func (x *Dict) Validate(complete map[any]any) (bool, string) { return true, "" }

// Invalidate implements hook.Owner. Dict keeps no derived cache to drop.
func (x *Dict) Invalidate() {}
