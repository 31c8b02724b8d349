// Package xselect provides Set, a selection observable: a "selected" value
// that must always be a member of an "options" set, plus a derived
// read-only count of available options. It mirrors nexpy's
// XOptionalSelectionSet as a thin consumer of the public Owner contract.
package xselect

import (
	"fmt"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/immutable"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/owner"
)

// OptionSet marks a plain slice as representing an unordered collection, so
// Normalize produces an immutable.ImmutableSet instead of an
// ImmutableSlice for it.
type OptionSet []any

// Elements implements immutable.SetLike.
func (s OptionSet) Elements() []any { return s }

// Set owns three hooks: a writable "selected" value (nil permitted), a
// writable "options" set, and a read-only "count" derived by Complete.
type Set struct {
	owner.Base
	selected *hook.Hook
	options  *hook.Hook
	count    *hook.Hook
}

// New builds a Set with the given initial selection and options. selected
// may be nil, meaning nothing is currently selected.
func New(mgr *manager.Manager, selected any, options []any) (*Set, error) {
	x := &Set{}
	x.Init(x)

	selHook, err := mgr.NewHookOwned(x.SelfAddr(), selected, false)
	if err != nil {
		return nil, err
	}
	optHook, err := mgr.NewHookOwned(x.SelfAddr(), OptionSet(options), false)
	if err != nil {
		return nil, err
	}
	countHook, err := mgr.NewHookOwned(x.SelfAddr(), len(options), true)
	if err != nil {
		return nil, err
	}

	x.selected = selHook
	x.options = optHook
	x.count = countHook
	x.Bind("selected", selHook)
	x.Bind("options", optHook)
	x.Bind("count", countHook)
	return x, nil
}

// SelectedHook returns the writable hook backing the selection, for
// joining with other observables.
func (x *Set) SelectedHook() *hook.Hook { return x.selected }

// Selected returns the current selection, or nil if nothing is selected.
func (x *Set) Selected() any { return x.selected.Value() }

// Options returns the current option set as a plain slice.
func (x *Set) Options() []any {
	set, ok := x.options.Value().(immutable.ImmutableSet)
	if !ok {
		return nil
	}
	out := make([]any, 0, set.Len())
	for _, v := range set.Elements() {
		out = append(out, v.Raw())
	}
	return out
}

// Count returns the number of available options.
func (x *Set) Count() int {
	n, _ := x.count.Value().(int)
	return n
}

// Select submits a new selection in Normal mode.
func (x *Set) Select(v any) error {
	ok, msg := x.selected.Set(v)
	if !ok {
		return fmt.Errorf("xselect: %s", msg)
	}
	return nil
}

// SetOptions submits a new option set in Normal mode.
func (x *Set) SetOptions(options []any) error {
	ok, msg := x.options.Set(OptionSet(options))
	if !ok {
		return fmt.Errorf("xselect: %s", msg)
	}
	return nil
}

// SelectAndSetOptions submits both changes atomically, so a selection
// change that depends on a simultaneous options change never sees an
// intermediate invalid state.
func (x *Set) SelectAndSetOptions(mgr *manager.Manager, selected any, options []any) error {
	ok, msg := mgr.Submit(map[hook.Handle]any{
		x.selected: selected,
		x.options:  OptionSet(options),
	}, hook.ModeNormal)
	if !ok {
		return fmt.Errorf("xselect: %s", msg)
	}
	return nil
}

// Complete implements hook.Owner, deriving "count" from "options" whenever
// options changes without an explicit count submission (O2: count is never
// submitted directly by callers).
func (x *Set) Complete(submitted, current map[any]any) map[any]any {
	if _, ok := submitted["count"]; ok {
		return nil
	}
	options, ok := submitted["options"]
	if !ok {
		return nil
	}
	return map[any]any{"count": elementCount(options)}
}

func elementCount(v any) int {
	switch opts := v.(type) {
	case immutable.ImmutableSet:
		return opts.Len()
	case immutable.ImmutableSlice:
		return opts.Len()
	default:
		return 0
	}
}

// Validate implements hook.Owner: a non-nil selection must be a member of
// options.
func (x *Set) Validate(complete map[any]any) (bool, string) {
	selected := complete["selected"]
	if selected == nil {
		return true, ""
	}
	options, ok := complete["options"].(immutable.ImmutableSet)
	if !ok {
		return false, "options is not a set"
	}
	if !options.Contains(selected) {
		return false, fmt.Sprintf("selected option %v is not a member of the available options", selected)
	}
	return true, ""
}

// Invalidate implements hook.Owner. Set keeps no derived cache to drop.
func (x *Set) Invalidate() {}
