// Package hook implements the handle into a Nexus: the unit applications
// hold, read, write, join, and isolate. A Hook never talks to pkg/manager
// directly — it depends only on the small Manager interface below, which
// pkg/manager satisfies, keeping hook and manager from importing each
// other.
package hook

// Mode selects how Submit treats the requests it is given.
type Mode int

const (
	// ModeNormal skips requests whose proposed value already equals the
	// current stored value under the manager's equality predicate.
	ModeNormal Mode = iota
	// ModeForced treats every request as effective regardless of
	// equality.
	ModeForced
	// ModeCheckOnly runs validation and reports the verdict without
	// mutating state or firing notifications.
	ModeCheckOnly
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModeForced:
		return "Forced"
	case ModeCheckOnly:
		return "CheckOnly"
	default:
		return "Unknown"
	}
}

// JoinPolicy selects which side's current value survives a join.
type JoinPolicy int

const (
	// UseCallerValue keeps the value of the hook Join was called on.
	UseCallerValue JoinPolicy = iota
	// UseTargetValue keeps the value of the hook passed as the argument.
	UseTargetValue
)

// Handle is the full interface exposed by a hook, regardless of flavor
// (owned writable, owned read-only, or floating).
type Handle interface {
	// Value returns the current stored value of this hook's nexus.
	Value() any
	// Set submits a new value for this hook in Normal mode. Fails with
	// ErrReadOnlyHook on read-only hooks.
	Set(v any) (bool, string)
	// ChangeValue is Set, exposed as a plain method value so it can be
	// passed around as a func(any) (bool, string) callback.
	ChangeValue(v any) (bool, string)
	// Join merges this hook's nexus with other's.
	Join(other Handle, policy JoinPolicy) (bool, string)
	// Isolate splits this hook into a fresh singleton nexus, preserving
	// its current value.
	Isolate()
	// AddListener registers a callback invoked after a successful commit
	// affecting this hook. The hook keeps the callback reachable until
	// RemoveListener is called; it is not dropped when the caller lets go
	// of it.
	AddListener(fn func())
	// RemoveListener unregisters every listener added with a function
	// sharing fn's code pointer.
	RemoveListener(fn func())
	// AddReactionCallback installs the single reaction slot, replacing
	// whatever was previously registered.
	AddReactionCallback(fn func(newValue any))
	// AddIsolatedValidationCallback installs a validation callback that
	// runs in isolation (only this hook's nexus in view) during Step 5.
	// Returns ErrNotFloating on owned hooks.
	AddIsolatedValidationCallback(fn func(newValue any) (bool, string)) error
}

// Owner is the external contract implemented by concrete observable
// flavors (single values, lists, selection sets, one-way functions, ...).
// The core never constructs one; it only calls into whatever the
// application registers.
type Owner interface {
	// Keys returns the set of local keys this owner exposes.
	Keys() map[any]struct{}
	// Hook returns the hook bound to key.
	Hook(key any) (Handle, bool)
	// KeyOf does the reverse lookup: the local key for one of this
	// owner's hooks.
	KeyOf(h Handle) (any, bool)
	// CurrentValues returns every key's current value.
	CurrentValues() map[any]any
	// Complete derives any additional key/value pairs implied by
	// submitted, given the owner's remaining current values. It must
	// never return a key already present in submitted (O2), and must be
	// deterministic and side-effect free.
	Complete(submitted, current map[any]any) map[any]any
	// Validate checks a complete value view (every key populated) and
	// returns (true, "") or (false, reason).
	Validate(complete map[any]any) (bool, string)
	// Invalidate is called once per successful commit affecting this
	// owner, idempotent, for owner-internal cache invalidation.
	Invalidate()
}

// Manager is the subset of *manager.Manager a Hook needs to perform
// writes, joins, and isolation. Defining it here (rather than importing
// pkg/manager) keeps hook and manager from forming an import cycle:
// pkg/manager depends on pkg/hook, not the reverse.
type Manager interface {
	Submit(requests map[Handle]any, mode Mode) (bool, string)
	Join(a, b Handle, policy JoinPolicy) (bool, string)
	Isolate(h Handle)
}
