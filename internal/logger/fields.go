package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the nexus runtime.
// Use these keys consistently across all log statements for log aggregation
// and querying.
const (
	// ========================================================================
	// Submission pipeline
	// ========================================================================
	KeySubmissionID = "submission_id" // Unique ID assigned to a submit() call
	KeyMode         = "mode"          // Normal, Forced, CheckOnly
	KeyPhase        = "phase"         // normalize, dedupe, complete, validate, commit, notify
	KeyIteration    = "iteration"     // Completion round number
	KeyNexusCount   = "nexus_count"   // Number of nexuses touched by a submission
	KeyOwnerCount   = "owner_count"   // Number of owners affected by a submission

	// ========================================================================
	// Graph identity
	// ========================================================================
	KeyOwnerKey = "owner_key" // Local key an owner uses for one of its hooks
	KeyHookID   = "hook_id"   // Opaque hook identity (pointer-derived)
	KeyNexusID  = "nexus_id"  // Opaque nexus identity (pointer-derived)

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyReason     = "reason"      // Human-readable validation/conflict reason

	// ========================================================================
	// Pub/Sub
	// ========================================================================
	KeyDeliveryMode   = "delivery_mode"   // direct, sync, async
	KeySubscriberName = "subscriber_name" // Name/label of a subscriber, for logs
)

// SubmissionID returns a slog.Attr for a submission's identifier.
func SubmissionID(id string) slog.Attr {
	return slog.String(KeySubmissionID, id)
}

// Mode returns a slog.Attr for the submission mode.
func Mode(mode string) slog.Attr {
	return slog.String(KeyMode, mode)
}

// Phase returns a slog.Attr for the current pipeline phase.
func Phase(phase string) slog.Attr {
	return slog.String(KeyPhase, phase)
}

// Iteration returns a slog.Attr for a completion round number.
func Iteration(n int) slog.Attr {
	return slog.Int(KeyIteration, n)
}

// NexusCount returns a slog.Attr for the number of nexuses touched.
func NexusCount(n int) slog.Attr {
	return slog.Int(KeyNexusCount, n)
}

// OwnerCount returns a slog.Attr for the number of owners affected.
func OwnerCount(n int) slog.Attr {
	return slog.Int(KeyOwnerCount, n)
}

// OwnerKey returns a slog.Attr for a local owner key.
func OwnerKey(key any) slog.Attr {
	return slog.Any(KeyOwnerKey, key)
}

// HookID returns a slog.Attr for a hook's opaque identity.
func HookID(id string) slog.Attr {
	return slog.String(KeyHookID, id)
}

// NexusID returns a slog.Attr for a nexus's opaque identity.
func NexusID(id string) slog.Attr {
	return slog.String(KeyNexusID, id)
}

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Reason returns a slog.Attr for a human-readable reason string.
func Reason(reason string) slog.Attr {
	return slog.String(KeyReason, reason)
}

// DeliveryMode returns a slog.Attr for a pub/sub delivery mode.
func DeliveryMode(mode string) slog.Attr {
	return slog.String(KeyDeliveryMode, mode)
}

// SubscriberName returns a slog.Attr for a subscriber's label.
func SubscriberName(name string) slog.Attr {
	return slog.String(KeySubscriberName, name)
}
