// Package coro implements symmetric, stackful coroutines on top of the
// engine's context-switch backends.
//
// A Co owns one context and the stack region backing it. Its lifecycle is
//
//	Created → Running ⇄ Suspended → Finished | Panicked
//
// Running and Suspended alternate across resumptions; Finished and Panicked
// are terminal and trigger stack reclamation. The release happens inside an
// on-top callback installed on the coroutine's final switch, so it always
// runs after control has left the dead stack and before the result reaches
// the resumer. Resuming a terminated coroutine is rejected with a
// terminated error.
//
// A panic raised inside the body is captured by the entry wrapper, carried
// across the switch boundary as ordinary transfer data, and consulted
// against the coroutine's PanicHook on the resumer's side. The hook may
// return a replacement coroutine to rewind into; otherwise the payload is
// re-raised with Go's native panic once control is back on a stack the
// unwinder understands, which for an un-rooted coroutine aborts the
// process.
//
// Cancellation is a forced unwind: Cancel resumes the coroutine with an
// unwind signal that Yield re-raises inside the body, so deferred cleanup
// runs on the coroutine's own stack before the stack is reclaimed.
package coro
