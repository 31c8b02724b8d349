// Package owner provides Base, an embeddable helper that gives concrete
// observable flavors (pkg/xvalue, pkg/xselect, pkg/xfunc, pkg/xsubscriber)
// the bookkeeping every hook.Owner implementation needs: a keyed hook map
// and the self-pointer hook.NewOwnedWritable/NewOwnedReadOnly require to
// set up a correctly-scoped weak owner reference.
package owner

import (
	"reflect"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/listener"
	"github.com/marmos91/nexus/pkg/nexuserr"
)

// Owner is an alias for hook.Owner, so consumers of this package don't
// need to import pkg/hook just to spell the interface name.
type Owner = hook.Owner

// Base is embedded by value (not by pointer) into a concrete owner
// struct. Callers must call Init once, after the owner struct has its
// final address (e.g. immediately after a `&T{...}` composite literal),
// passing that same pointer back as self.
type Base struct {
	self  hook.Owner
	hooks map[any]hook.Handle

	listeners listener.Registry
	retained  []retainedListener
}

type retainedListener struct {
	l   *listener.Listener
	ptr uintptr
}

// Init binds self — the address of the owner struct that embeds this
// Base — so SelfAddr can hand it to hook constructors for weak-reference
// setup, and so the hook map can be built.
func (b *Base) Init(self hook.Owner) {
	b.self = self
	b.hooks = make(map[any]hook.Handle)
}

// SelfAddr returns the stable address hook.NewOwnedWritable/
// NewOwnedReadOnly need: a *hook.Owner living inside the owner's own
// memory, so the weak reference clears exactly when the owner is
// collected.
func (b *Base) SelfAddr() *hook.Owner {
	return &b.self
}

// Bind records key -> h so Hook/KeyOf/Keys can answer from the map built
// here, once per hook at construction time.
func (b *Base) Bind(key any, h hook.Handle) {
	b.hooks[key] = h
}

// Keys implements hook.Owner.
func (b *Base) Keys() map[any]struct{} {
	out := make(map[any]struct{}, len(b.hooks))
	for k := range b.hooks {
		out[k] = struct{}{}
	}
	return out
}

// Hook implements hook.Owner.
func (b *Base) Hook(key any) (hook.Handle, bool) {
	h, ok := b.hooks[key]
	return h, ok
}

// KeyOf implements hook.Owner.
func (b *Base) KeyOf(h hook.Handle) (any, bool) {
	for k, candidate := range b.hooks {
		if candidate == h {
			return k, true
		}
	}
	return nil, false
}

// CurrentValues implements hook.Owner.
func (b *Base) CurrentValues() map[any]any {
	out := make(map[any]any, len(b.hooks))
	for k, h := range b.hooks {
		out[k] = h.Value()
	}
	return out
}

// AddListener registers an owner-level callback invoked once, after a
// successful commit affecting any of this owner's hooks, in addition to the
// per-hook listeners the commit notifies separately.
func (b *Base) AddListener(fn func()) {
	l := listener.New(fn)
	b.listeners.Add(l)
	b.retained = append(b.retained, retainedListener{l: l, ptr: reflect.ValueOf(fn).Pointer()})
}

// RemoveListener reverses AddListener by function-pointer identity.
func (b *Base) RemoveListener(fn func()) {
	target := reflect.ValueOf(fn).Pointer()
	kept := b.retained[:0]
	for _, r := range b.retained {
		if r.ptr == target {
			b.listeners.Remove(r.l)
			continue
		}
		kept = append(kept, r)
	}
	b.retained = kept
}

// NotifyListeners invokes every live owner-level listener. Implements the
// optional ownerNotifier capability pkg/manager looks for during Step 8.
func (b *Base) NotifyListeners(onPanic func(recovered any)) {
	defer func() {
		if r := recover(); r != nil {
			if _, reentrant := r.(*nexuserr.ReentrantPanic); reentrant {
				panic(r)
			}
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	b.listeners.Notify()
}
