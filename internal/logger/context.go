package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds submission-scoped logging context, threaded through a
// manager's Submit call so every phase log line carries the same
// identifiers.
type LogContext struct {
	SubmissionID   string    // Opaque ID assigned to the originating Submit call
	Mode           string    // Normal, Forced, CheckOnly
	AffectedOwners int       // Owners touched by the submission so far
	StartTime      time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a submission.
func NewLogContext(submissionID, mode string) *LogContext {
	return &LogContext{
		SubmissionID: submissionID,
		Mode:         mode,
		StartTime:    time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		SubmissionID:   lc.SubmissionID,
		Mode:           lc.Mode,
		AffectedOwners: lc.AffectedOwners,
		StartTime:      lc.StartTime,
	}
}

// WithAffectedOwners returns a copy with the affected-owner count set
func (lc *LogContext) WithAffectedOwners(n int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.AffectedOwners = n
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
