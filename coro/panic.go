package coro

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// PanicPayload is an opaque, movable capture of an abnormal termination. It
// crosses the switch boundary exactly like ordinary transfer data and is
// only re-raised once control is back on a stack Go's unwinder understands.
type PanicPayload struct {
	// Value is the original value passed to panic, or the cancellation
	// reason for a forced unwind.
	Value any
	// Stack is the coroutine-side stack trace at capture time. Empty for
	// forced unwinds.
	Stack []byte

	canceled bool
}

func (p *PanicPayload) Error() string {
	return fmt.Sprintf("coroutine panic: %v", p.Value)
}

// ErrorWithStack formats the payload together with the captured
// coroutine-side stack trace.
func (p *PanicPayload) ErrorWithStack() string {
	if len(p.Stack) == 0 {
		return p.Error()
	}
	return fmt.Sprintf("coroutine panic: %v\n\n%s", p.Value, p.Stack)
}

func (p *PanicPayload) Unwrap() error {
	err, ok := p.Value.(error)
	if !ok {
		return nil
	}
	return err
}

// Canceled reports whether the payload stems from a forced unwind rather
// than a panic in the body.
func (p *PanicPayload) Canceled() bool {
	return p.canceled
}

func capturePanic(v any) *PanicPayload {
	if u, ok := v.(*unwindSignal); ok {
		return &PanicPayload{Value: u.reason, canceled: true}
	}
	return &PanicPayload{Value: v, Stack: debug.Stack()}
}

// PanicHook decides the outcome of a coroutine panic. It receives the
// captured payload and either returns a replacement coroutine to rewind
// into — which is resumed with the payload's value — or nil to re-raise the
// payload on the resumer's stack.
type PanicHook interface {
	Rewind(p *PanicPayload) *Co
}

// HookFunc adapts a function to the PanicHook interface.
type HookFunc func(p *PanicPayload) *Co

// Rewind implements PanicHook.
func (f HookFunc) Rewind(p *PanicPayload) *Co { return f(p) }

// AbortHook is the default policy: there is no meaningful continuation for
// an un-rooted panic, so the payload is re-raised and propagates to the
// process boundary.
type AbortHook struct{}

// Rewind implements PanicHook by declining to rewind.
func (AbortHook) Rewind(*PanicPayload) *Co { return nil }

// AsPayload extracts a *PanicPayload from a recovered value or error chain.
func AsPayload(v any) (*PanicPayload, bool) {
	if p, ok := v.(*PanicPayload); ok {
		return p, true
	}
	if err, ok := v.(error); ok {
		var p *PanicPayload
		if errors.As(err, &p) {
			return p, true
		}
	}
	return nil, false
}
