package engine

import (
	"github.com/wippyai/coro-runtime/errors"
	"github.com/wippyai/coro-runtime/stack"
)

// chanCell is the rendezvous point of the channel backend. The buffer of one
// lets a resumer hand off the Transfer and park without the target being
// mid-receive yet.
type chanCell struct {
	ch chan Transfer
}

// Channel is the default, fully symmetric backend. Each context created by
// NewOn owns a fresh cell; every Resume mints a one-shot continuation cell
// for the suspending side, so the root context of a calling flow comes into
// existence lazily at its first switch.
type Channel struct{}

// NewOn carves a control block from stk and parks a new flow of control
// waiting for its first resumption.
func (Channel) NewOn(stk *stack.Stack, entry Entry) (*Context, error) {
	block, err := stk.CarveTop(controlBlockSize)
	if err != nil {
		return nil, err
	}
	stampControlBlock(block)

	cx := &Context{cell: &chanCell{ch: make(chan Transfer, 1)}}
	go func() {
		in := arrive(<-cx.cell.ch)
		final := entry(in)
		chanExit(final)
	}()
	return cx, nil
}

// Resume switches into t.Context and parks the caller until something
// switches back.
func (Channel) Resume(t Transfer) Transfer {
	target := t.Context
	target.consume()
	if target.cell == nil {
		panic(errors.BackendFailure(errors.PhaseSwitch, "context does not belong to the channel backend", nil))
	}

	cont := &Context{cell: &chanCell{ch: make(chan Transfer, 1)}}
	t.Context = cont
	target.cell.ch <- t
	return arrive(<-cont.cell.ch)
}

// ResumeWith is Resume with onTop spliced to run on the target on arrival.
func (c Channel) ResumeWith(t Transfer, onTop OnTop) Transfer {
	t.OnTop = onTop
	return c.Resume(t)
}

// chanExit performs the final switch out of a terminating context. The
// terminated side passes Context == nil so the receiver knows there is
// nothing left to resume, and the entry goroutine simply returns.
func chanExit(final Transfer) {
	target := final.Context
	target.consume()
	if target.cell == nil {
		panic(errors.BackendFailure(errors.PhaseSwitch, "exit switch into foreign context", nil))
	}
	final.Context = nil
	target.cell.ch <- final
}
