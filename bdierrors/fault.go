// Package bdierrors provides structured error kinds for the BDI engine.
// Faults preserve a cause chain so callers can use errors.Is/As while
// still carrying a machine-readable Kind for dispatch and logging.
package bdierrors

import (
	"errors"
	"fmt"
)

// Kind enumerates the error kinds the engine distinguishes. Kinds are
// not Go types: a single Fault type carries a Kind field so callers can
// branch on it without a type switch per kind.
type Kind string

const (
	// KindValidation covers schema mismatches, unknown goal/plan/service
	// references, and malformed parameters. Rejected at the event
	// boundary; no agent state change.
	KindValidation Kind = "validation_error"

	// KindResourceViolation covers unbalanced resource lock/unlock pairs.
	// A programmer bug: fatal assertion in debug builds, clamped in
	// release builds.
	KindResourceViolation Kind = "resource_violation"

	// KindUnhandledAction covers an action with no local handler and no
	// attached service able to run it.
	KindUnhandledAction Kind = "unhandled_action"

	// KindExecutorFault covers an action handler that raised or aborted;
	// the owning intention FAILs and the tactic policy decides on retry.
	KindExecutorFault Kind = "executor_fault"

	// KindTransportLoss covers best-effort bus sends that did not reach
	// their destination. Never blocks core progress.
	KindTransportLoss Kind = "transport_loss"

	// KindCriticalBootstrap covers an unknown agent template at
	// Engine.CreateAgent time; the engine refuses to start.
	KindCriticalBootstrap Kind = "critical_bootstrap_error"
)

// Fault is a structured engine error. It implements Unwrap so errors.Is/As
// can walk the cause chain, while Kind lets callers dispatch without type
// assertions.
type Fault struct {
	Kind    Kind
	Message string
	Cause   error
}

// New constructs a Fault of the given kind with a message and no cause.
func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

// Newf formats message according to format and args.
func Newf(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a Fault of the given kind wrapping an existing error.
func Wrap(kind Kind, message string, cause error) *Fault {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Fault{Kind: kind, Message: message, Cause: cause}
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f == nil {
		return ""
	}
	if f.Cause != nil {
		return f.Message + ": " + f.Cause.Error()
	}
	return f.Message
}

// Unwrap returns the wrapped cause, supporting errors.Is/As.
func (f *Fault) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Cause
}

// Is reports whether target is a *Fault with the same Kind, enabling
// errors.Is(err, bdierrors.New(bdierrors.KindValidation, "")) style checks
// that ignore the message.
func (f *Fault) Is(target error) bool {
	var t *Fault
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == f.Kind
}

// KindOf extracts the Kind from err if it is (or wraps) a *Fault.
func KindOf(err error) (Kind, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}
