// Package xvalue provides Value, the simplest concrete observable flavor: a
// single hook wrapped with a Go-idiomatic get/set surface and an optional
// validator. It is a thin consumer of the public Owner/Handle contracts,
// not part of the core.
package xvalue

import (
	"fmt"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/owner"
	"github.com/marmos91/nexus/pkg/pubsub"
)

// Validator checks a proposed value before it reaches the manager,
// independent of whatever cross-owner validation runs during a submission.
type Validator func(v any) (bool, string)

// Value wraps a single writable hook.
type Value struct {
	owner.Base
	hook      *hook.Hook
	validator Validator
	pub       *pubsub.ValuePublisher
}

// New builds a Value holding initial on mgr. A nil validator accepts every
// value.
func New(mgr *manager.Manager, initial any, validator Validator) (*Value, error) {
	x := &Value{validator: validator}
	x.Init(x)
	h, err := mgr.NewHookOwned(x.SelfAddr(), initial, false)
	if err != nil {
		return nil, err
	}
	x.hook = h
	x.Bind("value", h)
	return x, nil
}

// ValueHook returns the underlying handle, for joining with other
// observables. Named distinctly from owner.Base's Hook(key), which this
// type must keep exposing unshadowed to satisfy hook.Owner.
func (x *Value) ValueHook() *hook.Hook { return x.hook }

// Get returns the current value.
func (x *Value) Get() any { return x.hook.Value() }

// Set submits a new value in Normal mode.
func (x *Value) Set(v any) error {
	ok, msg := x.hook.Set(v)
	if !ok {
		return fmt.Errorf("xvalue: %s", msg)
	}
	return nil
}

// ChangeValue is Set exposed as a plain method value, for callers that want
// a func(any) error callback (e.g. as a pubsub.Subscriber.Receive body).
func (x *Value) ChangeValue(v any) error { return x.Set(v) }

// Complete implements hook.Owner: a single-key owner never derives
// additional keys.
func (x *Value) Complete(submitted, current map[any]any) map[any]any { return nil }

// Validate implements hook.Owner by delegating to the configured
// Validator, if any.
func (x *Value) Validate(complete map[any]any) (bool, string) {
	if x.validator == nil {
		return true, ""
	}
	return x.validator(complete["value"])
}

// Invalidate implements hook.Owner. Value keeps no derived cache to drop.
func (x *Value) Invalidate() {}

// UsePublisher attaches pub so every committed change is broadcast over it
// after the commit, adapting Value into the manager's optional Publish()
// capability. pub's Source is overwritten with x.Get.
func (x *Value) UsePublisher(pub *pubsub.ValuePublisher) {
	pub.Source = x.Get
	x.pub = pub
}

// Publish implements the manager pipeline's optional publisher capability.
// A Value with no attached publisher is a no-op.
func (x *Value) Publish() {
	if x.pub == nil {
		return
	}
	x.pub.Publish()
}
