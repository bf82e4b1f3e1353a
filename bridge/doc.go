// Package bridge hosts blocking-style closures as pollable tasks.
//
// Sync wraps a closure into a Task the caller drives by polling. Inside the
// closure, Waiter.Wait suspends on an Awaitable: the coroutine yields the
// awaitable to the poller, which drives it through its normal machinery and
// resumes the closure with the result once it is ready. The closure is thus
// written in plain blocking style while the outside world only ever sees a
// non-blocking Poll.
//
//	task := bridge.Sync(func(w *bridge.Waiter) any {
//		v, err := w.Wait(bridge.After(time.Second))
//		if err != nil {
//			return err
//		}
//		return v
//	})
//	for {
//		p, err := task.Poll(ctx)
//		if err != nil || p.Status == bridge.StatusReady {
//			break
//		}
//	}
//
// Closures run on worker coroutines recycled through a process-wide pool,
// so steady-state bridging allocates no stacks. A task canceled mid-wait is
// forcibly unwound: the closure's deferred cleanup runs on its own stack
// and the stack is reclaimed exactly once.
package bridge
