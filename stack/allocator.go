package stack

import (
	"math/bits"
	"sync"

	"github.com/wippyai/coro-runtime/errors"
)

// Allocator supplies and reclaims stack regions. A region returned by
// Allocate remains valid and exclusively owned by the context built on it
// until Deallocate, which must happen only after that context has fully
// terminated.
type Allocator interface {
	Allocate(size int) (*Stack, error)
	Deallocate(s *Stack)
}

// FixedAllocator hands out freshly made regions and lets the garbage
// collector reclaim them. Useful for tests and as a baseline.
type FixedAllocator struct{}

// Allocate returns a new region of at least size bytes.
func (FixedAllocator) Allocate(size int) (*Stack, error) {
	if size < MinSize {
		return nil, errors.StackTooSmall(errors.PhaseAlloc, size, MinSize)
	}
	return newStack(make([]byte, size), FixedAllocator{}), nil
}

// Deallocate drops the region reference.
func (FixedAllocator) Deallocate(*Stack) {}

const (
	// Pool limits to prevent memory bloat
	poolMinClass = 12 // 4 KiB
	poolMaxClass = 22 // 4 MiB; larger regions bypass the pool
)

// PooledAllocator recycles regions through per-size-class sync.Pools.
// Requests are rounded up to the next power of two.
type PooledAllocator struct {
	classes [poolMaxClass - poolMinClass + 1]sync.Pool
}

// NewPooledAllocator returns an empty pooled allocator.
func NewPooledAllocator() *PooledAllocator {
	return &PooledAllocator{}
}

func classFor(size int) (idx int, rounded int, ok bool) {
	if size <= 1<<poolMinClass {
		return 0, 1 << poolMinClass, true
	}
	c := bits.Len(uint(size - 1)) // ceil(log2(size))
	if c > poolMaxClass {
		return 0, size, false
	}
	return c - poolMinClass, 1 << c, true
}

// Allocate returns a pooled region of at least size bytes, re-arming its
// guards.
func (p *PooledAllocator) Allocate(size int) (*Stack, error) {
	if size < MinSize {
		return nil, errors.StackTooSmall(errors.PhaseAlloc, size, MinSize)
	}
	idx, rounded, ok := classFor(size)
	if !ok {
		// oversized, don't pool
		return newStack(make([]byte, size), p), nil
	}
	if v := p.classes[idx].Get(); v != nil {
		return newStack(v.([]byte), p), nil
	}
	return newStack(make([]byte, rounded), p), nil
}

// Deallocate returns the region's buffer to its size-class pool. Oversized
// buffers are rejected and left to the garbage collector.
func (p *PooledAllocator) Deallocate(s *Stack) {
	idx, rounded, ok := classFor(len(s.buf))
	if !ok || rounded != len(s.buf) {
		return
	}
	buf := s.buf
	s.buf = nil
	p.classes[idx].Put(buf)
}
