// Package xsubscriber bridges a pkg/pubsub Publisher into an Owner: each
// publication recomputes a fixed set of hook values via a user callback and
// submits them, giving pkg/pubsub a concrete owner-side consumer beyond the
// bare Subscriber interface. It mirrors nexpy's XSubscriber.
package xsubscriber

import (
	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/owner"
)

// Callback derives this subscriber's hook values from a publication
// payload. It is called once with a nil payload at construction time to
// seed the initial values, then once per subsequent publication. Every key
// it ever returns must appear in its very first (nil-payload) call, since
// that call determines the fixed hook set.
type Callback func(payload any) map[any]any

// Subscriber owns one hook per key named by Callback's initial call, kept
// in sync with whatever Publisher it is registered against.
type Subscriber struct {
	owner.Base
	mgr      *manager.Manager
	name     string
	callback Callback
	hooks    map[any]*hook.Hook
}

// New builds a Subscriber named name, seeding its hooks from callback(nil).
func New(mgr *manager.Manager, name string, callback Callback) (*Subscriber, error) {
	x := &Subscriber{
		mgr:      mgr,
		name:     name,
		callback: callback,
		hooks:    make(map[any]*hook.Hook),
	}
	x.Init(x)

	for key, v := range callback(nil) {
		h, err := mgr.NewHookOwned(x.SelfAddr(), v, false)
		if err != nil {
			return nil, err
		}
		x.hooks[key] = h
		x.Bind(key, h)
	}
	return x, nil
}

// Name implements pubsub.Subscriber.
func (x *Subscriber) Name() string { return x.name }

// Receive implements pubsub.Subscriber: re-run the callback against this
// publication and submit whatever it returns, in Normal mode. A payload
// that maps to no change (or to no recognized keys) is a silent no-op.
func (x *Subscriber) Receive(payload any) {
	values := x.callback(payload)
	if len(values) == 0 {
		return
	}
	requests := make(map[hook.Handle]any, len(values))
	for key, v := range values {
		h, ok := x.hooks[key]
		if !ok {
			continue
		}
		requests[h] = v
	}
	if len(requests) == 0 {
		return
	}
	x.mgr.Submit(requests, hook.ModeNormal)
}

// Value returns the current value at key.
func (x *Subscriber) Value(key any) (any, bool) {
	h, ok := x.hooks[key]
	if !ok {
		return nil, false
	}
	return h.Value(), true
}

// RawHook returns the concrete hook bound to key, for joining with other
// observables. Named distinctly from owner.Base's Hook, which this type
// must keep exposing unshadowed to satisfy hook.Owner.
func (x *Subscriber) RawHook(key any) (*hook.Hook, bool) {
	h, ok := x.hooks[key]
	return h, ok
}

// Complete implements hook.Owner. Subscriber's keys are independent; none
// is derived from another.
func (x *Subscriber) Complete(submitted, current map[any]any) map[any]any { return nil }

// Validate implements hook.Owner. Subscriber trusts its callback's output.
func (x *Subscriber) Validate(complete map[any]any) (bool, string) { return true, "" }

// Invalidate implements hook.Owner. Subscriber keeps no derived cache.
func (x *Subscriber) Invalidate() {}
