package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in the coroutine lifecycle the error occurred
type Phase string

const (
	PhaseAlloc  Phase = "alloc"  // stack allocation
	PhaseCreate Phase = "create" // context creation
	PhaseSwitch Phase = "switch" // low-level context switch
	PhaseResume Phase = "resume" // coroutine resumption
	PhaseUnwind Phase = "unwind" // panic relay / cancellation
	PhaseBridge Phase = "bridge" // sync/async bridge
)

// Kind categorizes the error
type Kind string

const (
	KindStackTooSmall      Kind = "stack_too_small"
	KindStackOverrun       Kind = "stack_overrun"
	KindBackendFailure     Kind = "backend_failure"
	KindTerminated         Kind = "terminated"
	KindInvalidState       Kind = "invalid_state"
	KindCanceled           Kind = "canceled"
	KindNotInitialized     Kind = "not_initialized"
	KindDoubleRegistration Kind = "double_registration"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// KindOf returns the Kind of err if it is (or wraps) a structured Error,
// and "" otherwise.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// StackTooSmall creates an error for an undersized stack region. The phase
// distinguishes allocator rejections (alloc) from regions that cannot hold
// a backend control block (create).
func StackTooSmall(phase Phase, size, min int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStackTooSmall,
		Detail: fmt.Sprintf("region of %d bytes is below the required minimum of %d", size, min),
		Value:  size,
	}
}

// StackOverrun creates an error for a corrupted guard canary
func StackOverrun(offset int) *Error {
	return &Error{
		Phase:  PhaseSwitch,
		Kind:   KindStackOverrun,
		Detail: fmt.Sprintf("guard canary overwritten at offset %d", offset),
		Value:  offset,
	}
}

// Terminated creates an error for resuming a finished or panicked coroutine
func Terminated(state string) *Error {
	return &Error{
		Phase:  PhaseResume,
		Kind:   KindTerminated,
		Detail: fmt.Sprintf("coroutine already %s", state),
	}
}

// InvalidState creates a contract-violation error
func InvalidState(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Detail: detail,
	}
}

// Canceled creates a cancellation error
func Canceled(detail string) *Error {
	return &Error{
		Phase:  PhaseUnwind,
		Kind:   KindCanceled,
		Detail: detail,
	}
}

// BackendFailure creates a fatal backend error
func BackendFailure(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBackendFailure,
		Detail: detail,
		Cause:  cause,
	}
}

// DoubleRegistration creates an error for registering a global twice
func DoubleRegistration(what string) *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindDoubleRegistration,
		Detail: fmt.Sprintf("%s already registered or resolved", what),
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}
