package hook

import (
	"reflect"
	"sync"
	"weak"

	"github.com/marmos91/nexus/pkg/listener"
	"github.com/marmos91/nexus/pkg/nexus"
	"github.com/marmos91/nexus/pkg/nexuserr"
)

type kind int

const (
	kindOwnedWritable kind = iota
	kindOwnedReadOnly
	kindFloating
)

// Hook is the concrete implementation of Handle. Three flavors share this
// type, distinguished by kind and by whether ownerSelf is set:
// OwnedWritable, OwnedReadOnly, and Floating.
type Hook struct {
	mu sync.Mutex // guards everything below except Nexus, which has its own lock

	kind   kind
	Nexus  *nexus.Nexus
	mgr    Manager
	owner  weak.Pointer[Owner] // zero value (never resolves) for floating hooks
	hasOwner bool

	reaction         func(newValue any)
	isolatedValidate func(newValue any) (bool, string)

	listeners listener.Registry
	retained  []retainedListener
}

type retainedListener struct {
	l   *listener.Listener
	ptr uintptr
}

var _ Handle = (*Hook)(nil)

// NewOwnedWritable builds a writable hook bound to ownerSelf. ownerSelf
// must be the address of the field on the owning struct that holds its own
// Owner interface value (see pkg/owner.Base), so the weak reference
// resolves to nil exactly when the owner becomes unreachable (H2).
func NewOwnedWritable(ownerSelf *Owner, mgr Manager, nx *nexus.Nexus) *Hook {
	h := &Hook{kind: kindOwnedWritable, Nexus: nx, mgr: mgr, owner: weak.Make(ownerSelf), hasOwner: true}
	nx.AddHook(h)
	return h
}

// NewOwnedReadOnly builds a read-only owned hook. See NewOwnedWritable for
// the ownerSelf contract.
func NewOwnedReadOnly(ownerSelf *Owner, mgr Manager, nx *nexus.Nexus) *Hook {
	h := &Hook{kind: kindOwnedReadOnly, Nexus: nx, mgr: mgr, owner: weak.Make(ownerSelf), hasOwner: true}
	nx.AddHook(h)
	return h
}

// NewFloating builds a hook with no owner.
func NewFloating(mgr Manager, nx *nexus.Nexus) *Hook {
	h := &Hook{kind: kindFloating, Nexus: nx, mgr: mgr}
	nx.AddHook(h)
	return h
}

// Mgr returns the Manager this hook is permanently bound to, used by
// Manager.Join to reject cross-manager joins.
func (h *Hook) Mgr() Manager {
	return h.mgr
}

// Owner resolves the weakly-held owner reference, returning (nil, false)
// for floating hooks or once the owner has been garbage collected (H2).
func (h *Hook) Owner() (Owner, bool) {
	if !h.hasOwner {
		return nil, false
	}
	ownerPtr := h.owner.Value()
	if ownerPtr == nil {
		return nil, false
	}
	return *ownerPtr, true
}

// IsReadOnly reports whether this hook rejects direct writes (H3).
func (h *Hook) IsReadOnly() bool {
	return h.kind == kindOwnedReadOnly
}

// IsFloating reports whether this hook has no owner.
func (h *Hook) IsFloating() bool {
	return h.kind == kindFloating
}

// Value returns the current stored value of this hook's nexus.
func (h *Hook) Value() any {
	return h.Nexus.ReadStored().Raw()
}

// Set submits a new value for this hook in Normal mode.
func (h *Hook) Set(v any) (bool, string) {
	if h.kind == kindOwnedReadOnly {
		return false, nexuserr.ErrReadOnlyHook.Error()
	}
	return h.mgr.Submit(map[Handle]any{h: v}, ModeNormal)
}

// ChangeValue is Set exposed as a plain method value, matching nexpy's
// change_value lambda-callable convention.
func (h *Hook) ChangeValue(v any) (bool, string) {
	return h.Set(v)
}

// Join merges this hook's nexus with other's.
func (h *Hook) Join(other Handle, policy JoinPolicy) (bool, string) {
	return h.mgr.Join(h, other, policy)
}

// Isolate splits this hook into a fresh singleton nexus.
func (h *Hook) Isolate() {
	h.mgr.Isolate(h)
}

// AddListener registers fn, invoked after a successful commit affecting
// this hook. The Hook retains fn's wrapper itself, since the bare
// func()-based API gives callers no object to hold a weak reference
// against; RemoveListener reverses this by function-pointer identity.
func (h *Hook) AddListener(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	l := listener.New(fn)
	h.listeners.Add(l)
	h.retained = append(h.retained, retainedListener{l: l, ptr: reflect.ValueOf(fn).Pointer()})
}

// RemoveListener unregisters every listener previously added with a
// function sharing fn's code pointer. Best-effort for closures: two
// distinct closures over the same function literal compare equal here,
// matching the only identity Go exposes for plain func values.
func (h *Hook) RemoveListener(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	target := reflect.ValueOf(fn).Pointer()
	kept := h.retained[:0]
	for _, r := range h.retained {
		if r.ptr == target {
			h.listeners.Remove(r.l)
			continue
		}
		kept = append(kept, r)
	}
	h.retained = kept
}

// NotifyListeners invokes every live listener, recovering and logging any
// panic except a ReentrantPanic, which is re-raised. Called by the
// manager's notification phase with its critical section still held.
func (h *Hook) NotifyListeners(onPanic func(recovered any)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			if _, isReentrant := r.(*nexuserr.ReentrantPanic); isReentrant {
				panic(r)
			}
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	h.listeners.Notify()
}

// AddReactionCallback installs the single reaction slot (
// single-slot — a second call replaces the first).
func (h *Hook) AddReactionCallback(fn func(newValue any)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reaction = fn
}

// React invokes the reaction callback, if any, recovering and forwarding
// panics the same way NotifyListeners does.
func (h *Hook) React(newValue any, onPanic func(recovered any)) {
	h.mu.Lock()
	fn := h.reaction
	h.mu.Unlock()
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			if _, isReentrant := r.(*nexuserr.ReentrantPanic); isReentrant {
				panic(r)
			}
			if onPanic != nil {
				onPanic(r)
			}
		}
	}()
	fn(newValue)
}

// HasReaction reports whether a reaction callback is installed.
func (h *Hook) HasReaction() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reaction != nil
}

// HasIsolatedValidation reports whether an isolated validation callback is
// installed.
func (h *Hook) HasIsolatedValidation() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.isolatedValidate != nil
}

// AddIsolatedValidationCallback installs a validation callback that runs
// with only this hook's proposed value in view, floating hooks only.
func (h *Hook) AddIsolatedValidationCallback(fn func(newValue any) (bool, string)) error {
	if h.kind != kindFloating {
		return nexuserr.ErrNotFloating
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.isolatedValidate = fn
	return nil
}

// ValidateIsolated runs the isolated validation callback, if any. Returns
// (true, "") when no callback is installed.
func (h *Hook) ValidateIsolated(newValue any) (bool, string) {
	h.mu.Lock()
	fn := h.isolatedValidate
	h.mu.Unlock()
	if fn == nil {
		return true, ""
	}
	return fn(newValue)
}
