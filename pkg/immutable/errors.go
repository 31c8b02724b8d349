package immutable

import (
	"errors"
	"fmt"

	"github.com/marmos91/nexus/pkg/nexuserr"
)

var (
	// ErrNotFrozen is returned when a struct value is passed to Normalize
	// without implementing Frozen.
	ErrNotFrozen = errors.New("immutable: struct does not implement Frozen")

	// ErrUnhashableKey is returned when a mapping key fails to normalize.
	ErrUnhashableKey = errors.New("immutable: map key could not be normalized")

	// ErrUnhashableElement is returned when a set element fails to
	// normalize.
	ErrUnhashableElement = errors.New("immutable: set element could not be normalized")

	// ErrUnknownType is returned for any value outside the normalization
	// table and not registered with a TypeRegistry.
	ErrUnknownType = errors.New("immutable: value type is not normalizable")
)

// NormalizationError wraps the underlying cause with the offending Go
// type's name, and always unwraps to nexuserr.ErrNormalization so callers
// can test for normalization failure without caring about the specific
// cause.
type NormalizationError struct {
	Cause error
	Type  string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s: %s (type %s)", nexuserr.ErrNormalization, e.Cause, e.Type)
}

func (e *NormalizationError) Unwrap() []error {
	return []error{nexuserr.ErrNormalization, e.Cause}
}

func normErr(cause error, v any) *NormalizationError {
	return &NormalizationError{Cause: cause, Type: fmt.Sprintf("%T", v)}
}
