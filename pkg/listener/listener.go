// Package listener implements the weakly-held callback lists attached to
// hooks and owners. Registering a *Listener does not keep it alive: the
// caller must retain its own strong reference to the returned *Listener
// (typically stored in a field) for as long as it wants the callback to
// keep firing. Once the caller drops its reference, the registry silently
// and lazily forgets the listener the next time it is walked (spec's
// "shared-resource policy").
package listener

import "weak"

// Listener wraps a callback for weak registration. Construct one with New
// and keep the result alive for as long as the callback should fire.
type Listener struct {
	fn func()
}

// New wraps fn as a listener. The returned value must be kept reachable
// by the caller; the registry itself only ever holds a weak reference.
func New(fn func()) *Listener {
	return &Listener{fn: fn}
}

// Registry is a per-hook or per-owner list of weakly-held listener
// callbacks, invoked after a successful commit affects the owning hook or
// owner.
type Registry struct {
	refs []weak.Pointer[Listener]
}

// Add registers l. Safe to call with the same *Listener more than once;
// duplicates fire once per registration.
func (r *Registry) Add(l *Listener) {
	r.refs = append(r.refs, weak.Make(l))
}

// Remove unregisters every still-registered reference to l.
func (r *Registry) Remove(l *Listener) {
	target := weak.Make(l)
	live := r.refs[:0]
	for _, ref := range r.refs {
		if ref != target {
			live = append(live, ref)
		}
	}
	r.refs = live
}

// Notify invokes every still-live listener in registration order, lazily
// dropping any whose target has been garbage collected. It does not
// recover panics; callers (the submission pipeline) are responsible for
// per-listener panic recovery per the error-handling design.
func (r *Registry) Notify() {
	live := r.refs[:0]
	var callbacks []func()
	for _, ref := range r.refs {
		if l := ref.Value(); l != nil {
			live = append(live, ref)
			callbacks = append(callbacks, l.fn)
		}
	}
	r.refs = live
	for _, fn := range callbacks {
		fn()
	}
}

// Len reports the number of currently registered references, including
// ones that may resolve to nil on the next Notify.
func (r *Registry) Len() int {
	return len(r.refs)
}
