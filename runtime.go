package cororuntime

import (
	"github.com/wippyai/coro-runtime/bridge"
	"github.com/wippyai/coro-runtime/coro"
)

// Awaitable is the contract between bridged closures and the external
// executor. See bridge.Awaitable.
type Awaitable = bridge.Awaitable

// Task is a pollable bridged computation. See bridge.Task.
type Task = bridge.Task

// Waiter is the blocking-style view handed to bridged closures.
type Waiter = bridge.Waiter

// Coroutine is a symmetric, stackful coroutine. See coro.Co.
type Coroutine = coro.Co

// Sync hosts fn as a pollable task. Shorthand for bridge.Sync.
func Sync(fn func(*bridge.Waiter) any) *bridge.Task {
	return bridge.Sync(fn)
}

// NewCoroutine builds a symmetric coroutine running fn. Shorthand for
// coro.New.
func NewCoroutine(fn func(*coro.Source, any) any, opts ...coro.Option) (*coro.Co, error) {
	return coro.New(fn, opts...)
}
