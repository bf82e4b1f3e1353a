package stack

import (
	"sync"
	"sync/atomic"

	"github.com/wippyai/coro-runtime/errors"
)

var (
	registered  atomic.Pointer[allocatorBox]
	resolveOnce sync.Once
	global      Allocator
)

type allocatorBox struct{ a Allocator }

// SetAllocator registers the process-wide allocator. It must be called at
// most once, before any coroutine is created; registering twice or after
// Global has resolved is a contract violation.
func SetAllocator(a Allocator) {
	if global != nil || !registered.CompareAndSwap(nil, &allocatorBox{a: a}) {
		panic(errors.DoubleRegistration("stack allocator"))
	}
}

// Global resolves the process-wide allocator exactly once. If SetAllocator
// was never called, a pooled allocator is installed.
func Global() Allocator {
	resolveOnce.Do(func() {
		if box := registered.Load(); box != nil {
			global = box.a
			return
		}
		def := NewPooledAllocator()
		if !registered.CompareAndSwap(nil, &allocatorBox{a: def}) {
			global = registered.Load().a
			return
		}
		global = def
	})
	return global
}
