// Package xlist provides List, an ordered-sequence observable: a single
// writable hook holding an immutable.ImmutableSlice. It mirrors nexpy's
// list-like x_objects as a thin consumer of the public Owner contract.
package xlist

import (
	"fmt"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/immutable"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/owner"
)

// List owns a single "items" hook holding an ordered sequence.
type List struct {
	owner.Base
	items *hook.Hook
}

// New builds a List holding initial (normalized to an ImmutableSlice) on
// mgr.
func New(mgr *manager.Manager, initial []any) (*List, error) {
	x := &List{}
	x.Init(x)

	h, err := mgr.NewHookOwned(x.SelfAddr(), initial, false)
	if err != nil {
		return nil, err
	}
	x.items = h
	x.Bind("items", h)
	return x, nil
}

// ItemsHook returns the underlying handle, for joining with other
// observables.
func (x *List) ItemsHook() *hook.Hook { return x.items }

// Items returns the current sequence as a plain slice.
func (x *List) Items() []any {
	seq, ok := x.items.Value().(immutable.ImmutableSlice)
	if !ok {
		return nil
	}
	out := make([]any, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		out[i] = seq.At(i).Raw()
	}
	return out
}

// Len returns the current sequence length.
func (x *List) Len() int {
	seq, ok := x.items.Value().(immutable.ImmutableSlice)
	if !ok {
		return 0
	}
	return seq.Len()
}

// Set replaces the entire sequence in Normal mode.
func (x *List) Set(items []any) error {
	ok, msg := x.items.Set(items)
	if !ok {
		return fmt.Errorf("xlist: %s", msg)
	}
	return nil
}

// Append submits the current sequence with item added to the end.
func (x *List) Append(item any) error {
	return x.Set(append(x.Items(), item))
}

// Complete implements hook.Owner: a single-key owner never derives
// additional keys.
func (x *List) Complete(submitted, current map[any]any) map[any]any { return nil }

// Validate implements hook.Owner. A List accepts any sequence.
func (x *List) Validate(complete map[any]any) (bool, string) { return true, "" }

// Invalidate implements hook.Owner. List keeps no derived cache to drop.
func (x *List) Invalidate() {}
