// Package engine implements the low-level context-switching backends the
// coroutine layer is built on.
//
// A Context is an opaque handle to a suspended flow of control. It is
// exclusively owned: every switch consumes the handle it targets and mints a
// fresh one for the side that just suspended, so a Context is resumable at
// most once until it is produced again by a switch. The Transfer exchanged
// at a switch boundary is the only channel for passing values between the
// two sides; the root context of a calling flow is created lazily by its
// first Resume.
//
// Two interchangeable backends satisfy the Backend contract:
//
//   - Channel (default): every switch parks the calling flow on a buffered
//     rendezvous cell and hands the freshly minted continuation to the other
//     side. Fully symmetric; any suspended context may be resumed from any
//     goroutine.
//   - RuntimeCoro: wraps the Go runtime's coroutine primitives
//     (runtime.newcoro / runtime.coroswitch) via go:linkname. Switches do
//     not cross the scheduler, which makes them considerably cheaper, but
//     the final switch out of a terminating context must target its most
//     recent resumer, so this backend supports the pairwise resume/yield
//     discipline the coroutine layer uses rather than arbitrary switch
//     graphs. It is compiled only under the runtimecoro build tag and
//     needs the linkname check disabled:
//
//     go build -tags runtimecoro -ldflags=-checklinkname=0
//
//     The default build contains the channel backend only.
//
// The backend is selected once per process with SetBackend before first
// use; Default resolves exactly once and is never dispatched per call
// afterwards.
//
// An on-top callback installed with ResumeWith runs on the target context
// immediately after it regains control and before its ordinary continuation.
// The coroutine layer uses this to release a terminated coroutine's stack
// after control has left it but before the result reaches the resumer,
// without an extra round trip. An on-top callback may itself perform one
// further switch; deeper recursive on-top chaining is not exercised by this
// runtime and callers should not rely on it.
//
// Failures of a switch itself (resuming a consumed handle, switching into a
// dead context) are fatal: the flow-of-control state can no longer be
// trusted, so the backend logs and panics rather than returning an error.
// Creation failures are ordinary errors returned to the caller.
package engine
