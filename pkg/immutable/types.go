// Package immutable implements the normalization table that converts
// arbitrary Go values into the deeply-immutable form a Nexus stores. Every
// value that crosses into the nexus graph passes through Normalize exactly
// once per submission.
package immutable

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Value boxes a normalized, deeply-immutable representation. The zero
// Value is not meaningful; construct one via Normalize.
type Value struct {
	v any
}

// Wrap boxes an already-normalized value without re-running the
// normalization table. Used internally by Normalize's recursive calls and
// by tests that construct fixtures directly.
func Wrap(v any) Value {
	return Value{v: v}
}

// Raw returns the boxed value as an any, for callers (equality, owners)
// that need to type-switch on the underlying representation.
func (val Value) Raw() any {
	return val.v
}

// IsZero reports whether this Value was never assigned (as opposed to
// holding a normalized nil).
func (val Value) IsZero() bool {
	return val == Value{}
}

// Frozen marks a struct type as already deeply immutable, exempting it
// from the "non-frozen record" normalization error. Implement it with a
// no-op method; the method exists purely as a type-level declaration.
type Frozen interface {
	ImmutableStruct()
}

// SetLike marks a type as representing an unordered collection, so
// Normalize can convert it to an ImmutableSet instead of erroring out on
// an unrecognized struct. Types using the map[T]struct{} convention are
// detected automatically and do not need to implement this.
type SetLike interface {
	Elements() []any
}

// Range is a first-class primitive in the normalization table, covering
// the "ranges" entry of the immutable-value table. It is a plain
// comparable struct and therefore passes through Normalize unchanged.
type Range struct {
	Start, Stop, Step int64
}

// TypeRegistry holds user-registered types that should pass through
// Normalize unchanged without needing to implement Frozen. A nil
// *TypeRegistry behaves as an empty registry.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[reflect.Type]struct{}
}

// NewTypeRegistry returns an empty TypeRegistry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[reflect.Type]struct{})}
}

// Register declares sample's type as already immutable. Subsequent values
// of that exact type pass through Normalize unchanged.
func (r *TypeRegistry) Register(sample any) {
	if r == nil || sample == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[reflect.TypeOf(sample)] = struct{}{}
}

// IsRegistered reports whether v's type was previously registered.
func (r *TypeRegistry) IsRegistered(v any) bool {
	if r == nil || v == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[reflect.TypeOf(v)]
	return ok
}

// Clone returns a new TypeRegistry with the same registered types,
// independent of further mutation to either.
func (r *TypeRegistry) Clone() *TypeRegistry {
	clone := NewTypeRegistry()
	if r == nil {
		return clone
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for t := range r.types {
		clone.types[t] = struct{}{}
	}
	return clone
}

// ImmutableSlice is the normalized form of an ordered sequence (list or
// tuple in the source table). It carries no exported mutator: once built
// by Normalize, its contents never change.
type ImmutableSlice struct {
	elems []Value
}

func newImmutableSlice(elems []Value) ImmutableSlice {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return ImmutableSlice{elems: cp}
}

// Len returns the number of elements.
func (s ImmutableSlice) Len() int { return len(s.elems) }

// At returns the element at index i.
func (s ImmutableSlice) At(i int) Value { return s.elems[i] }

// All returns a defensive copy of the elements, safe for the caller to
// range over or mutate without affecting the slice.
func (s ImmutableSlice) All() []Value {
	cp := make([]Value, len(s.elems))
	copy(cp, s.elems)
	return cp
}

func (s ImmutableSlice) String() string {
	return fmt.Sprintf("ImmutableSlice%v", s.elems)
}

// mapEntry is one key/value pair of an ImmutableMap, kept sorted by sortKey
// for deterministic iteration and reflect.DeepEqual-compatible structural
// equality regardless of insertion order.
type mapEntry struct {
	key     Value
	value   Value
	sortKey string
}

// ImmutableMap is the normalized form of a mapping. There is no Go port of
// Python's immutables.Map in the example pack, so this is a small
// copy-on-construct persistent map: entries are fixed at construction time
// and exposed only through read accessors.
type ImmutableMap struct {
	entries []mapEntry
}

func newImmutableMap(pairs []mapEntry) ImmutableMap {
	cp := make([]mapEntry, len(pairs))
	copy(cp, pairs)
	sort.Slice(cp, func(i, j int) bool { return cp[i].sortKey < cp[j].sortKey })
	return ImmutableMap{entries: cp}
}

// Len returns the number of entries.
func (m ImmutableMap) Len() int { return len(m.entries) }

// Get looks up key by its normalized sort-key representation, returning
// the value and whether it was present.
func (m ImmutableMap) Get(key any) (Value, bool) {
	sk := sortKeyFor(key)
	for _, e := range m.entries {
		if e.sortKey == sk {
			return e.value, true
		}
	}
	return Value{}, false
}

// Keys returns the normalized keys in deterministic sorted order.
func (m ImmutableMap) Keys() []Value {
	out := make([]Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.key
	}
	return out
}

// Each calls fn for every key/value pair in deterministic order.
func (m ImmutableMap) Each(fn func(key, value Value)) {
	for _, e := range m.entries {
		fn(e.key, e.value)
	}
}

func (m ImmutableMap) String() string {
	return fmt.Sprintf("ImmutableMap(%d entries)", len(m.entries))
}

// ImmutableSet is the normalized form of an unordered collection.
type ImmutableSet struct {
	elems []Value
	keys  []string
}

func newImmutableSet(elems []Value) ImmutableSet {
	type pair struct {
		v Value
		k string
	}
	pairs := make([]pair, 0, len(elems))
	seen := make(map[string]struct{}, len(elems))
	for _, v := range elems {
		k := sortKeyFor(v.Raw())
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		pairs = append(pairs, pair{v: v, k: k})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	out := ImmutableSet{elems: make([]Value, len(pairs)), keys: make([]string, len(pairs))}
	for i, p := range pairs {
		out.elems[i] = p.v
		out.keys[i] = p.k
	}
	return out
}

// Len returns the number of distinct elements.
func (s ImmutableSet) Len() int { return len(s.elems) }

// Contains reports whether v (after normalization-equivalent key
// comparison) is a member.
func (s ImmutableSet) Contains(v any) bool {
	k := sortKeyFor(v)
	for _, existing := range s.keys {
		if existing == k {
			return true
		}
	}
	return false
}

// Elements returns the normalized members in deterministic sorted order.
func (s ImmutableSet) Elements() []Value {
	out := make([]Value, len(s.elems))
	copy(out, s.elems)
	return out
}

func (s ImmutableSet) String() string {
	return fmt.Sprintf("ImmutableSet%v", s.elems)
}

// sortKeyFor produces a deterministic string key for an arbitrary
// normalized value, used to order map entries and set elements and to
// detect set membership without requiring Go comparability.
func sortKeyFor(v any) string {
	return fmt.Sprintf("%T:%#v", v, v)
}
