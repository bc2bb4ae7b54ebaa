package invoke

import (
	"context"
	"errors"
)

// Error reports that a validator process could not be run or measured at
// all: the Java runtime is missing, the jar could not be resolved, the
// process failed to spawn, or it exceeded its timeout. Validator-reported
// failures (nonzero exit codes) are not Errors; they come back inside a
// Result.
type Error struct {
	version string
	reason  string
	err     error
}

func (e *Error) Error() string {
	if e.version != "" {
		return "invoke " + e.version + ": " + e.reason
	}
	return "invoke: " + e.reason
}

func (e *Error) Unwrap() error { return e.err }

// Version returns the validator version the failure belongs to, if known.
func (e *Error) Version() string { return e.version }

// IsInvokerError reports whether err is an invocation-infrastructure
// failure.
func IsInvokerError(err error) bool {
	var ie *Error
	return errors.As(err, &ie)
}

// IsTimeout reports whether err is an invoker error caused by the
// per-invocation timeout.
func IsTimeout(err error) bool {
	var ie *Error
	return errors.As(err, &ie) && errors.Is(ie.err, context.DeadlineExceeded)
}
