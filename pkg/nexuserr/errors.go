// Package nexuserr defines the sentinel errors shared across the nexus
// runtime's packages. Callers use errors.Is against these sentinels rather
// than matching on message text.
package nexuserr

import "errors"

var (
	// ErrNormalization is returned when a submitted value cannot be
	// converted to immutable form.
	ErrNormalization = errors.New("nexus: value could not be normalized")

	// ErrConflict is returned when two pending entries disagree on the
	// value for the same nexus, whether from the caller's own request or
	// from a completion callback.
	ErrConflict = errors.New("nexus: conflicting values submitted for the same nexus")

	// ErrCompletionCycle is returned when completion does not reach a
	// fixed point within the iteration cap.
	ErrCompletionCycle = errors.New("nexus: completion did not converge within the iteration cap")

	// ErrValidation is returned when an owner or floating hook rejects the
	// complete value view.
	ErrValidation = errors.New("nexus: validation rejected the submitted values")

	// ErrJoinRejected is returned when a join's underlying submission
	// fails.
	ErrJoinRejected = errors.New("nexus: join submission was rejected")

	// ErrReentrantSubmission indicates a callback issued a new Submit
	// while already inside the pipeline on the same goroutine. Unlike the
	// other sentinels, this one is never returned quietly — it is always
	// delivered via a ReentrantPanic.
	ErrReentrantSubmission = errors.New("nexus: submit called re-entrantly from within the pipeline")

	// ErrReadOnlyHook is returned by Set on a read-only hook.
	ErrReadOnlyHook = errors.New("nexus: cannot write directly to a read-only hook")

	// ErrNotFloating is returned by AddIsolatedValidationCallback on a
	// hook that has an owner.
	ErrNotFloating = errors.New("nexus: isolated validation callbacks are only valid on floating hooks")

	// ErrForeignHook is returned when two hooks passed to Join belong to
	// different managers.
	ErrForeignHook = errors.New("nexus: hooks belong to different managers")

	// ErrClosed reports a closed manager. Manager has no shutdown step, so
	// no operation in this module returns it.
	ErrClosed = errors.New("nexus: manager is closed")
)

// ReentrantPanic is the panic value raised when a callback invoked from
// inside the pipeline calls Submit again on the same goroutine. The manager
// never recovers it; it propagates to the caller of the outermost
// Submit/SubmitErr/Join.
type ReentrantPanic struct {
	Err error
}

func (p *ReentrantPanic) Error() string {
	return p.Err.Error()
}

func (p *ReentrantPanic) Unwrap() error {
	return p.Err
}

// NewReentrantPanic builds the panic value raised on re-entrant submission.
func NewReentrantPanic() *ReentrantPanic {
	return &ReentrantPanic{Err: ErrReentrantSubmission}
}
