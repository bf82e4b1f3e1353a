package coro

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/coro-runtime/engine"
	"github.com/wippyai/coro-runtime/errors"
	"github.com/wippyai/coro-runtime/stack"
)

// ErrCanceled is the default reason a coroutine is unwound with.
var ErrCanceled = errors.Canceled("coroutine canceled")

// Body is the coroutine's code. It receives a Source for yielding back to
// the resumer and the data passed to the first Resume; its return value is
// handed to the final Resume.
type Body func(src *Source, in any) any

// Co is a symmetric coroutine: a suspendable unit of computation owning one
// context and the stack backing it.
type Co struct {
	backend engine.Backend
	stk     *stack.Stack
	hook    PanicHook
	cont    *engine.Context // next continuation; nil while running or terminated
	state   atomic.Int32
	ownsStk bool
}

// Option configures New.
type Option func(*options)

type options struct {
	stackSize int
	stk       *stack.Stack
	alloc     stack.Allocator
	backend   engine.Backend
	hook      PanicHook
}

// WithStackSize requests a stack of at least n bytes.
func WithStackSize(n int) Option {
	return func(o *options) { o.stackSize = n }
}

// WithStack supplies an explicit, caller-owned stack region.
func WithStack(s *stack.Stack) Option {
	return func(o *options) { o.stk = s }
}

// WithAllocator overrides the process-wide stack allocator.
func WithAllocator(a stack.Allocator) Option {
	return func(o *options) { o.alloc = a }
}

// WithBackend overrides the process-wide context-switch backend.
func WithBackend(b engine.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithPanicHook installs the root panic hook. The default aborts on an
// un-rooted panic.
func WithPanicHook(h PanicHook) Option {
	return func(o *options) { o.hook = h }
}

// New builds a coroutine running fn. Creation errors (undersized stack,
// backend failure at context creation) surface immediately.
func New(fn Body, opts ...Option) (*Co, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	backend := o.backend
	if backend == nil {
		backend = engine.Default()
	}

	c := &Co{backend: backend, hook: o.hook}

	if o.stk != nil {
		c.stk = o.stk
	} else {
		alloc := o.alloc
		if alloc == nil {
			alloc = stack.Global()
		}
		size := o.stackSize
		if size == 0 {
			size = stack.DefaultSize
		}
		stk, err := alloc.Allocate(size)
		if err != nil {
			return nil, err
		}
		c.stk = stk
		c.ownsStk = true
	}

	cont, err := backend.NewOn(c.stk, c.entry(fn))
	if err != nil {
		if c.ownsStk {
			c.stk.Release()
		}
		return nil, err
	}
	c.cont = cont
	return c, nil
}

// entry wraps fn so that both normal completion and a recovered panic leave
// through a final switch whose on-top callback releases the stack off the
// dead context and seals the terminal state.
func (c *Co) entry(fn Body) engine.Entry {
	return func(t engine.Transfer) engine.Transfer {
		src := &Source{co: c, back: t.Context}

		var out any
		var pp *PanicPayload
		if u, ok := t.Data.(*unwindSignal); ok {
			// canceled before the body ever ran
			pp = &PanicPayload{Value: u.reason, canceled: true}
		} else {
			func() {
				defer func() {
					if r := recover(); r != nil {
						pp = capturePanic(r)
					}
				}()
				out = fn(src, t.Data)
			}()
		}

		back := src.back
		if pp != nil {
			return engine.Transfer{Context: back, Data: pp, OnTop: c.seal(StatePanicked)}
		}
		return engine.Transfer{Context: back, Data: out, OnTop: c.seal(StateFinished)}
	}
}

// seal returns the on-top callback for the final switch: it runs on the
// resumer's side, after control has irrevocably left the coroutine's stack.
func (c *Co) seal(final State) engine.OnTop {
	return func(in engine.Transfer) engine.Transfer {
		c.state.Store(int32(final))
		if c.ownsStk {
			c.stk.Release()
		}
		return in
	}
}

// State returns the coroutine's current lifecycle state.
func (c *Co) State() State {
	return State(c.state.Load())
}

// Resume switches into the coroutine, passing data, and blocks the calling
// flow of control (not an OS thread) until the coroutine yields back or
// terminates. It returns whatever the coroutine passed at that point.
//
// If the coroutine terminated with a panic, the root PanicHook decides the
// outcome: a replacement coroutine is resumed with the payload, or the
// payload is re-raised natively on the caller's stack.
func (c *Co) Resume(data any) (any, error) {
	target, err := c.begin()
	if err != nil {
		return nil, err
	}

	t := c.backend.Resume(engine.Transfer{Context: target, Data: data})
	return c.settle(t)
}

func (c *Co) begin() (*engine.Context, error) {
	for {
		st := State(c.state.Load())
		if st.Terminal() {
			return nil, errors.Terminated(st.String())
		}
		if st == StateRunning {
			return nil, errors.InvalidState(errors.PhaseResume, "coroutine is already running")
		}
		if c.state.CompareAndSwap(int32(st), int32(StateRunning)) {
			target := c.cont
			c.cont = nil
			return target, nil
		}
	}
}

func (c *Co) settle(t engine.Transfer) (any, error) {
	switch State(c.state.Load()) {
	case StateFinished:
		return t.Data, nil
	case StatePanicked:
		pp := t.Data.(*PanicPayload)
		if c.hook != nil {
			if next := c.hook.Rewind(pp); next != nil {
				Logger().Debug("rewinding panicked coroutine", zap.Any("panic", pp.Value))
				return next.Resume(pp.Value)
			}
		}
		// Back on a stack the unwinder understands; re-raise natively. An
		// un-rooted payload propagates to the process boundary and aborts.
		Logger().Error("relaying un-rooted coroutine panic", zap.Any("panic", pp.Value))
		panic(pp)
	default:
		c.cont = t.Context
		c.state.Store(int32(StateSuspended))
		return t.Data, nil
	}
}

// Cancel unwinds a suspended (or not yet started) coroutine: the body's
// deferred cleanup runs on its own stack and the stack is reclaimed. The
// reason is swallowed on the way out; a different panic raised during the
// unwind is re-raised. Canceling a terminated coroutine is a no-op.
func (c *Co) Cancel(reason error) error {
	if reason == nil {
		reason = ErrCanceled
	}
	if c.State().Terminal() {
		return nil
	}
	target, err := c.begin()
	if err != nil {
		if errors.KindOf(err) == errors.KindTerminated {
			return nil
		}
		return err
	}

	Logger().Debug("unwinding coroutine", zap.Error(reason))
	t := c.backend.Resume(engine.Transfer{Context: target, Data: &unwindSignal{reason: reason}})

	if State(c.state.Load()) == StatePanicked {
		pp := t.Data.(*PanicPayload)
		if pp.canceled && pp.Value == reason {
			return nil
		}
		panic(pp)
	}
	if State(c.state.Load()) == StateFinished {
		// body returned normally while unwinding; acceptable
		return nil
	}

	// the body swallowed the unwind signal and yielded again
	c.cont = t.Context
	c.state.Store(int32(StateSuspended))
	return errors.InvalidState(errors.PhaseUnwind, "coroutine ignored cancellation")
}

// Source is the coroutine's view of its resumer.
type Source struct {
	co   *Co
	back *engine.Context
}

// Yield resumes back to the last resumer, passing data, and returns the
// payload of the next Resume. If the coroutine is being canceled, Yield
// re-raises the unwind signal so deferred cleanup runs.
func (s *Source) Yield(data any) any {
	back := s.back
	if back == nil {
		panic(errors.InvalidState(errors.PhaseResume, "yield with no resumer to return to"))
	}
	s.back = nil

	t := s.co.backend.Resume(engine.Transfer{Context: back, Data: data})
	s.back = t.Context

	if u, ok := t.Data.(*unwindSignal); ok {
		panic(u)
	}
	return t.Data
}

// unwindSignal rides the transfer data channel to request a forced unwind;
// Yield converts it into a panic on the coroutine's own stack.
type unwindSignal struct {
	reason error
}
