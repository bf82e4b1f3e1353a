// Package stack supplies and reclaims the memory regions backing coroutine
// contexts.
//
// A Stack is a single-owner handle: from Allocate until Deallocate the
// region belongs to exactly one context, and Deallocate must happen only
// after the context built on it has fully terminated. The coroutine layer
// enforces this by releasing the stack from an on-top callback that runs
// after control has left the coroutine for the last time.
//
// Both edges of every region carry guard canaries. CheckGuards detects
// overruns of the control block the backend carves from the region's top.
// Execution frames themselves live on runtime-managed goroutine stacks; the
// region holds the backend's control block, so the ownership and reclaim
// contract is identical across backends.
//
// Exactly one Allocator serves the whole process. Register a custom one with
// SetAllocator before any coroutine is created; Global resolves once and is
// never consulted per call afterwards.
package stack
