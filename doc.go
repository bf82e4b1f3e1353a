// Package cororuntime provides a stackful-coroutine runtime for Go.
//
// The runtime lets a computation suspend and resume with its own independent
// flow of control, so synchronous-looking code can be driven cooperatively
// from inside an asynchronous, poll-based executor without dedicating an OS
// thread to each task.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	coro-runtime/        Root package with top-level convenience API
//	├── engine/          Low-level context switching: Transfer, Entry, Backend
//	├── stack/           Stack-memory ownership: allocators, guard canaries
//	├── coro/            Symmetric coroutines and the panic/unwind relay
//	├── bridge/          Sync/async bridge: pollable tasks and Wait
//	├── errors/          Structured error types for debugging
//	└── testbed/         Cross-package integration tests
//
// # Quick Start
//
// Host a blocking-style closure as a pollable task:
//
//	task := bridge.Sync(func(w *bridge.Waiter) any {
//	    v, err := w.Wait(bridge.After(100 * time.Millisecond))
//	    if err != nil {
//	        return err
//	    }
//	    _ = v
//	    return "done"
//	})
//
//	for {
//	    p, err := task.Poll(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if p.Status == bridge.StatusReady {
//	        fmt.Println(p.Value) // "done"
//	        break
//	    }
//	    // hand p.Pending to the executor's normal polling machinery
//	}
//
// Or drive a symmetric coroutine directly:
//
//	co, err := coro.New(func(src *coro.Source, in any) any {
//	    for i := 0; i < 3; i++ {
//	        in = src.Yield(in)
//	    }
//	    return in
//	})
//
// # Scheduling Model
//
// Scheduling is cooperative with a single flow of control per coroutine
// chain. A Resume call is synchronous from the caller's perspective: it does
// not return until the target later switches back. Suspension happens only
// at an explicit switch or at a Wait point inside the bridge; there is no
// implicit preemption and no parallelism.
//
// # Process-Wide Configuration
//
// The context-switch backend and the stack allocator are each selected once
// per process, before first use, through engine.SetBackend and
// stack.SetAllocator. They are resolved exactly once and never dispatched
// per call afterwards.
//
// # Panics
//
// A panic raised inside a coroutine cannot unwind through a raw context
// switch. The entry wrapper captures the payload, carries it across the
// switch boundary as ordinary transfer data, and re-raises it with Go's
// native panic mechanism only once control is back on a stack the unwinder
// understands. A coro.PanicHook installed at the coroutine root may instead
// rewind into a replacement coroutine; the default hook aborts the process.
//
// # Thread Safety
//
// A coroutine may only be resumed by one flow of control at a time. Moving
// a suspended coroutine between goroutines is permitted; resuming it from
// two goroutines concurrently is a contract violation and is rejected.
package cororuntime
