package immutable

import (
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Normalize converts v into deeply-immutable form per the normalization
// table: primitives and registered/frozen types pass through unchanged,
// sequences become ImmutableSlice, mappings become ImmutableMap, and
// unordered collections become ImmutableSet. reg may be nil, in which case
// only the built-in primitives and Frozen/SetLike types are recognized.
//
// Normalize is a pure function of (v, reg) and is idempotent:
// Normalize(Normalize(v)) == Normalize(v).
func Normalize(v any, reg *TypeRegistry) (Value, error) {
	inner, err := normalizeInner(v, reg)
	if err != nil {
		return Value{}, err
	}
	return Value{v: inner}, nil
}

func normalizeInner(v any, reg *TypeRegistry) (any, error) {
	if v == nil {
		return nil, nil
	}

	// Idempotency: unwrap an already-boxed Value and re-derive from its
	// raw contents, which are themselves already normalized.
	if boxed, ok := v.(Value); ok {
		return boxed.v, nil
	}

	switch x := v.(type) {
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128,
		string, *big.Rat, *big.Float, time.Time, uuid.UUID, Range:
		return x, nil
	case []byte:
		cp := make([]byte, len(x))
		copy(cp, x)
		return cp, nil
	}

	if reg.IsRegistered(v) {
		return v, nil
	}

	if _, ok := v.(Frozen); ok {
		return v, nil
	}

	if setLike, ok := v.(SetLike); ok {
		return normalizeSetElements(setLike.Elements(), reg)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128, reflect.String:
		// A named type over a primitive kind (Go's stand-in for an enum
		// member) passes through unchanged, same as the predeclared types
		// matched by the type switch above.
		return v, nil
	case reflect.Slice, reflect.Array:
		return normalizeSequence(rv, reg)
	case reflect.Map:
		if isSetConvention(rv.Type()) {
			return normalizeSetFromMap(rv, reg)
		}
		return normalizeMapping(rv, reg)
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, nil
		}
		return nil, normErr(ErrUnknownType, v)
	case reflect.Struct:
		return nil, normErr(ErrNotFrozen, v)
	default:
		return nil, normErr(ErrUnknownType, v)
	}
}

// isSetConvention recognizes the map[T]struct{} idiom Go code uses to
// represent sets.
func isSetConvention(t reflect.Type) bool {
	elem := t.Elem()
	return elem.Kind() == reflect.Struct && elem.NumField() == 0
}

func normalizeSequence(rv reflect.Value, reg *TypeRegistry) (ImmutableSlice, error) {
	n := rv.Len()
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		elemVal, err := Normalize(rv.Index(i).Interface(), reg)
		if err != nil {
			return ImmutableSlice{}, err
		}
		out[i] = elemVal
	}
	return newImmutableSlice(out), nil
}

func normalizeMapping(rv reflect.Value, reg *TypeRegistry) (ImmutableMap, error) {
	iter := rv.MapRange()
	entries := make([]mapEntry, 0, rv.Len())
	for iter.Next() {
		keyVal, err := Normalize(iter.Key().Interface(), reg)
		if err != nil {
			return ImmutableMap{}, normErr(ErrUnhashableKey, iter.Key().Interface())
		}
		valVal, err := Normalize(iter.Value().Interface(), reg)
		if err != nil {
			return ImmutableMap{}, err
		}
		entries = append(entries, mapEntry{
			key:     keyVal,
			value:   valVal,
			sortKey: sortKeyFor(keyVal.Raw()),
		})
	}
	return newImmutableMap(entries), nil
}

func normalizeSetFromMap(rv reflect.Value, reg *TypeRegistry) (ImmutableSet, error) {
	iter := rv.MapRange()
	elems := make([]Value, 0, rv.Len())
	for iter.Next() {
		elemVal, err := Normalize(iter.Key().Interface(), reg)
		if err != nil {
			return ImmutableSet{}, normErr(ErrUnhashableElement, iter.Key().Interface())
		}
		elems = append(elems, elemVal)
	}
	return newImmutableSet(elems), nil
}

func normalizeSetElements(raw []any, reg *TypeRegistry) (ImmutableSet, error) {
	elems := make([]Value, 0, len(raw))
	for _, e := range raw {
		elemVal, err := Normalize(e, reg)
		if err != nil {
			return ImmutableSet{}, normErr(ErrUnhashableElement, e)
		}
		elems = append(elems, elemVal)
	}
	return newImmutableSet(elems), nil
}
