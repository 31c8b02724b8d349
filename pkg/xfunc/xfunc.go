// Package xfunc provides Function, a pure derived-value node: N named
// writable inputs (optionally joined to external hooks), a pure transform,
// and M named read-only outputs recomputed by Complete whenever an input
// changes. It mirrors nexpy's XOneWayFunction as a thin consumer of the
// public Owner contract.
package xfunc

import (
	"fmt"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/owner"
)

// Transform computes every output key from a complete set of input values.
// It must be pure and must return every key named in Function's output set.
type Transform func(inputs map[any]any) map[any]any

// Function owns a fixed set of writable input hooks and read-only output
// hooks, keeping the outputs recomputed as a pure function of the inputs.
type Function struct {
	owner.Base
	transform Transform
	inputs    map[any]*hook.Hook
	outputs   map[any]*hook.Hook
}

// New builds a Function. inputs maps each input key to its initial value.
// outputKeys names every key transform must return. transform is invoked
// once immediately, with the initial inputs, to seed the output hooks.
func New(mgr *manager.Manager, inputs map[any]any, transform Transform, outputKeys []any) (*Function, error) {
	x := &Function{
		transform: transform,
		inputs:    make(map[any]*hook.Hook, len(inputs)),
		outputs:   make(map[any]*hook.Hook, len(outputKeys)),
	}
	x.Init(x)

	inputValues := make(map[any]any, len(inputs))
	for key, v := range inputs {
		h, err := mgr.NewHookOwned(x.SelfAddr(), v, false)
		if err != nil {
			return nil, err
		}
		x.inputs[key] = h
		x.Bind(key, h)
		inputValues[key] = v
	}

	outputValues := transform(inputValues)
	for _, key := range outputKeys {
		v, ok := outputValues[key]
		if !ok {
			return nil, fmt.Errorf("xfunc: transform did not return output key %v", key)
		}
		h, err := mgr.NewHookOwned(x.SelfAddr(), v, true)
		if err != nil {
			return nil, err
		}
		x.outputs[key] = h
		x.Bind(key, h)
	}

	return x, nil
}

// InputHook returns the writable hook for an input key, e.g. to join it
// with an external hook.
func (x *Function) InputHook(key any) (*hook.Hook, bool) {
	h, ok := x.inputs[key]
	return h, ok
}

// OutputHook returns the read-only hook for an output key.
func (x *Function) OutputHook(key any) (*hook.Hook, bool) {
	h, ok := x.outputs[key]
	return h, ok
}

// Value returns the current value at key, input or output.
func (x *Function) Value(key any) (any, bool) {
	if h, ok := x.inputs[key]; ok {
		return h.Value(), true
	}
	if h, ok := x.outputs[key]; ok {
		return h.Value(), true
	}
	return nil, false
}

// SetInput submits a new value for a single input in Normal mode.
func (x *Function) SetInput(key any, v any) error {
	h, ok := x.inputs[key]
	if !ok {
		return fmt.Errorf("xfunc: unknown input key %v", key)
	}
	ok2, msg := h.Set(v)
	if !ok2 {
		return fmt.Errorf("xfunc: %s", msg)
	}
	return nil
}

// Complete implements hook.Owner: whenever any input key is among
// submitted, re-run transform against the complete merged input view and
// propose every output key transform returns, skipping any key already in
// submitted (O2).
func (x *Function) Complete(submitted, current map[any]any) map[any]any {
	touched := false
	for key := range x.inputs {
		if _, ok := submitted[key]; ok {
			touched = true
			break
		}
	}
	if !touched {
		return nil
	}

	merged := make(map[any]any, len(x.inputs))
	for key := range x.inputs {
		if v, ok := submitted[key]; ok {
			merged[key] = v
		} else {
			merged[key] = current[key]
		}
	}

	outputValues := x.transform(merged)
	derived := make(map[any]any, len(x.outputs))
	for key := range x.outputs {
		if _, already := submitted[key]; already {
			continue
		}
		if v, ok := outputValues[key]; ok {
			derived[key] = v
		}
	}
	return derived
}

// Validate implements hook.Owner. Function has no cross-key invariant of
// its own beyond what transform already enforces by construction.
func (x *Function) Validate(complete map[any]any) (bool, string) { return true, "" }

// Invalidate implements hook.Owner. Function keeps no derived cache beyond
// its hooks' stored values.
func (x *Function) Invalidate() {}
