//go:build runtimecoro

package engine

import (
	"unsafe"

	"github.com/wippyai/coro-runtime/errors"
	"github.com/wippyai/coro-runtime/stack"
)

var _ unsafe.Pointer

// The pull linknames below reach runtime internals, which the linker
// rejects by default since Go 1.23. Building with this file's tag needs
//
//	go build -tags runtimecoro -ldflags=-checklinkname=0
//
// The default build carries only the channel backend and needs no flags.

// coroutine is the runtime's opaque coroutine object.
type coroutine struct{}

//go:linkname newcoro runtime.newcoro
func newcoro(func(*coroutine)) *coroutine

//go:linkname coroswitch runtime.coroswitch
func coroswitch(*coroutine)

// rcCell pairs a runtime coroutine with a single transfer slot. The slot is
// written just before a switch and read immediately after, since coroswitch
// cannot pass an argument directly; it is never accessed by both sides at
// once because exactly one flow of control is runnable per cell.
type rcCell struct {
	c    *coroutine
	slot Transfer
	done bool
}

// RuntimeCoro switches through the Go runtime's coroutine support. Cheaper
// than the channel backend because switches stay on the same thread and
// never enter the scheduler. The exit switch of a terminating context is
// performed by the runtime itself and always targets the most recent
// resumer, so arbitrary switch graphs must use the channel backend instead.
type RuntimeCoro struct{}

// NewOn carves a control block from stk and binds a fresh runtime coroutine
// that will invoke entry on first resumption.
func (RuntimeCoro) NewOn(stk *stack.Stack, entry Entry) (*Context, error) {
	block, err := stk.CarveTop(controlBlockSize)
	if err != nil {
		return nil, err
	}
	stampControlBlock(block)

	cell := &rcCell{}
	cell.c = newcoro(func(*coroutine) {
		in := arrive(cell.slot)
		final := entry(in)
		// Returning hands control back to the flow parked in this cell,
		// which must be the final transfer's target. Leave the payload in
		// the slot for it to pick up.
		if final.Context == nil || final.Context.rc != cell {
			Logger().Error("exit switch does not target the last resumer")
			panic(errors.BackendFailure(errors.PhaseSwitch, "exit switch must target the last resumer", nil))
		}
		final.Context.consume()
		final.Context = nil
		cell.slot = final
		cell.done = true
	})
	return &Context{rc: cell}, nil
}

// Resume switches into t.Context and parks the caller in the target's cell
// until something switches back through it.
func (RuntimeCoro) Resume(t Transfer) Transfer {
	target := t.Context
	target.consume()
	cell := target.rc
	if cell == nil {
		panic(errors.BackendFailure(errors.PhaseSwitch, "context does not belong to the runtime-coro backend", nil))
	}
	if cell.done {
		panic(errors.BackendFailure(errors.PhaseSwitch, "switch into dead context", nil))
	}

	// The caller parks inside the cell, so its continuation is the same
	// cell under a fresh one-shot handle.
	t.Context = &Context{rc: cell}
	cell.slot = t
	coroswitch(cell.c)
	return arrive(cell.slot)
}

// ResumeWith is Resume with onTop spliced to run on the target on arrival.
func (r RuntimeCoro) ResumeWith(t Transfer, onTop OnTop) Transfer {
	t.OnTop = onTop
	return r.Resume(t)
}
