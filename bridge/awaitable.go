package bridge

import (
	"context"
	"time"
)

// Awaitable is the boundary contract with the external executor. Poll
// reports whether the awaited value is available; it must not block. Once
// ready (or failed) an Awaitable is not polled again.
type Awaitable interface {
	Poll(ctx context.Context) (value any, ready bool, err error)
}

// AwaitableFunc adapts a function to the Awaitable interface.
type AwaitableFunc func(ctx context.Context) (any, bool, error)

// Poll implements Awaitable.
func (f AwaitableFunc) Poll(ctx context.Context) (any, bool, error) {
	return f(ctx)
}

// Ready returns an Awaitable that is ready with v on the first poll.
func Ready(v any) Awaitable {
	return AwaitableFunc(func(context.Context) (any, bool, error) {
		return v, true, nil
	})
}

// After returns an Awaitable that becomes ready once d has elapsed from its
// first poll.
func After(d time.Duration) Awaitable {
	var deadline time.Time
	return AwaitableFunc(func(context.Context) (any, bool, error) {
		if deadline.IsZero() {
			deadline = time.Now().Add(d)
		}
		if time.Now().Before(deadline) {
			return nil, false, nil
		}
		return nil, true, nil
	})
}
