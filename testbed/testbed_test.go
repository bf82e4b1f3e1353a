// Package testbed holds integration tests that span the runtime's packages.
package testbed

import (
	"sync/atomic"
	"testing"

	cororuntime "github.com/wippyai/coro-runtime"
	"github.com/wippyai/coro-runtime/coro"
	"github.com/wippyai/coro-runtime/engine"
	"github.com/wippyai/coro-runtime/errors"
	"github.com/wippyai/coro-runtime/stack"
)

// countingAlloc wraps fresh regions and counts reclaims.
type countingAlloc struct {
	allocs   atomic.Int64
	deallocs atomic.Int64
}

func (c *countingAlloc) Allocate(size int) (*stack.Stack, error) {
	if size < stack.MinSize {
		return nil, errors.StackTooSmall(errors.PhaseAlloc, size, stack.MinSize)
	}
	c.allocs.Add(1)
	return stack.New(make([]byte, size), c), nil
}

func (c *countingAlloc) Deallocate(*stack.Stack) {
	c.deallocs.Add(1)
}

// the runtime-coro backend adds itself under the runtimecoro build tag
var backends = map[string]engine.Backend{
	"channel": engine.Channel{},
}

func TestFacadeRoundTrip(t *testing.T) {
	co, err := cororuntime.NewCoroutine(func(src *coro.Source, in any) any {
		return src.Yield(in)
	})
	if err != nil {
		t.Fatal(err)
	}

	payload := &struct{ n int }{n: 7}
	out, err := co.Resume(payload)
	if err != nil {
		t.Fatal(err)
	}
	if out != payload {
		t.Fatalf("round trip returned %v, want the identical value", out)
	}
	if _, err := co.Resume(nil); err != nil {
		t.Fatal(err)
	}
}

func TestLIFONestingAcrossBackends(t *testing.T) {
	const depth = 16

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			var order []int

			var spawn func(level int) *coro.Co
			spawn = func(level int) *coro.Co {
				co, err := coro.New(func(src *coro.Source, in any) any {
					if level+1 < depth {
						if _, err := spawn(level + 1).Resume(nil); err != nil {
							t.Errorf("level %d: %v", level, err)
						}
					}
					order = append(order, level)
					return nil
				}, coro.WithBackend(backend))
				if err != nil {
					t.Fatal(err)
				}
				return co
			}

			if _, err := spawn(0).Resume(nil); err != nil {
				t.Fatal(err)
			}

			for i, lvl := range order {
				if lvl != depth-1-i {
					t.Fatalf("unwind order = %v, want strict reverse of resumption", order)
				}
			}
		})
	}
}

func TestGuardCanariesUnderStress(t *testing.T) {
	stk, err := stack.FixedAllocator{}.Allocate(stack.MinSize)
	if err != nil {
		t.Fatal(err)
	}

	co, err := coro.New(func(src *coro.Source, in any) any {
		for i := 0; i < 10_000; i++ {
			src.Yield(i)
		}
		return nil
	}, coro.WithStack(stk))
	if err != nil {
		t.Fatal(err)
	}

	for {
		if _, err := co.Resume(nil); err != nil {
			t.Fatal(err)
		}
		if co.State().Terminal() {
			break
		}
		if err := stk.CheckGuards(); err != nil {
			t.Fatal(err)
		}
	}
	stk.Release()
}

func TestPooledStacksRecycleCleanly(t *testing.T) {
	alloc := stack.NewPooledAllocator()

	for i := 0; i < 1000; i++ {
		co, err := coro.New(func(src *coro.Source, in any) any {
			src.Yield(nil)
			return nil
		}, coro.WithAllocator(alloc), coro.WithStackSize(4096))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := co.Resume(nil); err != nil {
			t.Fatal(err)
		}
		// Release's guard check panics if a recycled region was corrupted
		if _, err := co.Resume(nil); err != nil {
			t.Fatal(err)
		}
	}
}
