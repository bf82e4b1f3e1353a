package bridge

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/coro-runtime/coro"
	"github.com/wippyai/coro-runtime/errors"
)

// ErrCanceled is the reason a canceled task's closure is unwound with.
var ErrCanceled = coro.ErrCanceled

// Status classifies the outcome of a single Poll.
type Status int

const (
	// StatusPending means the task is suspended on an awaitable that is not
	// ready yet.
	StatusPending Status = iota
	// StatusReady means the closure returned; Value holds its result.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Poll is the result of driving a Task one step.
type Poll struct {
	Status Status
	// Value is the closure's return value when Status is StatusReady.
	Value any
	// Pending is the awaitable the task is suspended on when Status is
	// StatusPending. Drivers may use it to register wakeups instead of
	// polling blindly.
	Pending Awaitable
}

// Task is a bridged closure the caller drives by polling. A Task must not
// be polled concurrently from multiple goroutines, but may move between
// goroutines across polls.
type Task struct {
	mu       sync.Mutex
	fn       func(*Waiter) any
	w        *worker
	pending  Awaitable
	done     bool
	canceled bool
}

// Sync hosts fn as a pollable task. The closure does not start until the
// first Poll.
func Sync(fn func(*Waiter) any) *Task {
	return &Task{fn: fn}
}

// Poll drives the task as far as it can go without blocking: it starts the
// closure on the first call, polls the pending awaitable on later ones, and
// resumes the closure whenever a wait completes. It returns StatusReady
// with the closure's result, or StatusPending with the awaitable the task
// is stuck on.
//
// Polling a finished or canceled task returns a terminated error. A panic
// in the closure relays to the poller natively.
func (t *Task) Poll(ctx context.Context) (Poll, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.done:
		return Poll{}, errors.New(errors.PhaseBridge, errors.KindTerminated).
			Detail("task already finished").Build()
	case t.canceled:
		return Poll{}, errors.New(errors.PhaseBridge, errors.KindTerminated).
			Detail("task canceled").Build()
	}
	if err := ctx.Err(); err != nil {
		return Poll{}, err
	}

	if t.w == nil {
		w, err := acquire()
		if err != nil {
			return Poll{}, err
		}
		t.w = w
		out, err := t.resume(&job{fn: t.fn})
		if err != nil {
			return Poll{}, err
		}
		return t.absorb(ctx, out)
	}

	return t.absorb(ctx, &pendingWait{aw: t.pending})
}

// absorb interprets the value the closure yielded and keeps driving while
// awaitables complete immediately.
func (t *Task) absorb(ctx context.Context, out any) (Poll, error) {
	for {
		switch v := out.(type) {
		case *jobDone:
			t.done = true
			t.pending = nil
			release(t.w)
			t.w = nil
			return Poll{Status: StatusReady, Value: v.value}, nil

		case *pendingWait:
			value, ready, err := v.aw.Poll(ctx)
			if !ready && err == nil {
				t.pending = v.aw
				return Poll{Status: StatusPending, Pending: v.aw}, nil
			}
			t.pending = nil
			next, rerr := t.resume(&waitResult{value: value, err: err})
			if rerr != nil {
				return Poll{}, rerr
			}
			out = next

		default:
			return Poll{}, errors.InvalidState(errors.PhaseBridge,
				"closure yielded an unexpected payload")
		}
	}
}

// resume drives the worker one step. A relayed closure panic marks the task
// dead before propagating, so later polls report terminated instead of
// touching a dead coroutine.
func (t *Task) resume(data any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			t.done = true
			t.pending = nil
			t.w = nil
			Logger().Error("bridged closure panicked", zap.Any("panic", r))
			panic(r)
		}
	}()
	out, err = t.w.co.Resume(data)
	if err != nil {
		t.done = true
		t.pending = nil
		t.w = nil
	}
	return out, err
}

// Cancel forcibly unwinds a task suspended mid-wait: the closure's deferred
// cleanup runs on its own stack and the stack is reclaimed. Canceling a
// finished or never-polled task is a no-op (the closure of a never-polled
// task simply never runs).
func (t *Task) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done || t.canceled {
		return nil
	}
	t.canceled = true
	if t.w == nil {
		return nil
	}

	w := t.w
	t.w = nil
	t.pending = nil
	Logger().Debug("canceling bridged task")
	return w.co.Cancel(ErrCanceled)
}

// Waiter is the blocking-style view handed to bridged closures.
type Waiter struct {
	src *coro.Source
}

// Wait suspends the closure until aw is ready, handing the awaitable to the
// poller in the meantime, and returns the awaitable's value or error. If
// the task is canceled while suspended here, Wait never returns: the
// closure unwinds and its defers run.
func (w *Waiter) Wait(aw Awaitable) (any, error) {
	out := w.src.Yield(&pendingWait{aw: aw})
	r, ok := out.(*waitResult)
	if !ok {
		panic(errors.InvalidState(errors.PhaseBridge, "wait resumed without a result"))
	}
	return r.value, r.err
}

// Markers exchanged between a worker coroutine and the task driving it.
type (
	job         struct{ fn func(*Waiter) any }
	jobDone     struct{ value any }
	pendingWait struct{ aw Awaitable }
	waitResult  struct {
		value any
		err   error
	}
)

// worker is a reusable coroutine that runs one job at a time and parks
// between jobs.
type worker struct {
	co *coro.Co
}

var workers sync.Pool

func workerBody(src *coro.Source, in any) any {
	for {
		j, ok := in.(*job)
		if !ok {
			panic(errors.InvalidState(errors.PhaseBridge, "worker resumed without a job"))
		}
		out := j.fn(&Waiter{src: src})
		in = src.Yield(&jobDone{value: out})
	}
}

func acquire() (*worker, error) {
	if v := workers.Get(); v != nil {
		return v.(*worker), nil
	}
	co, err := coro.New(workerBody)
	if err != nil {
		return nil, err
	}
	w := &worker{co: co}
	// A parked worker the pool drops still owns a suspended coroutine;
	// unwind it so its stack is reclaimed.
	runtime.SetFinalizer(w, func(w *worker) {
		if !w.co.State().Terminal() {
			_ = w.co.Cancel(nil)
		}
	})
	return w, nil
}

func release(w *worker) {
	workers.Put(w)
}
