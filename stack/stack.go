package stack

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/wippyai/coro-runtime/errors"
)

const (
	// GuardSize is the number of canary bytes stamped at each edge of a
	// region.
	GuardSize = 8

	// MinSize is the smallest region an Allocator will hand out: two guards
	// plus room for a backend control block.
	MinSize = 2*GuardSize + 64

	// DefaultSize is used when no explicit size is requested.
	DefaultSize = 8 * 1024

	canary uint64 = 0x5AFE57ACC0DEC0DE
)

// Stack is a single-owner handle over a contiguous memory region. It is
// valid from the Allocate that produced it until Deallocate, and must be
// handed to at most one context in between.
type Stack struct {
	alloc    Allocator
	buf      []byte
	carved   int // bytes reserved at the top for the control block
	released atomic.Bool
}

// New wraps a caller-supplied region so custom Allocators can hand out
// their own memory. The region must at least hold the two guards; whether
// it can hold a backend control block is decided at context creation.
func New(buf []byte, alloc Allocator) *Stack {
	if len(buf) < 2*GuardSize {
		panic(errors.InvalidState(errors.PhaseAlloc, "region smaller than its guards"))
	}
	return newStack(buf, alloc)
}

func newStack(buf []byte, alloc Allocator) *Stack {
	s := &Stack{buf: buf, alloc: alloc}
	s.armGuards()
	return s
}

func (s *Stack) armGuards() {
	binary.LittleEndian.PutUint64(s.buf[:GuardSize], canary)
	binary.LittleEndian.PutUint64(s.buf[len(s.buf)-GuardSize:], canary)
}

// Size returns the total region size in bytes, guards included.
func (s *Stack) Size() int {
	return len(s.buf)
}

// CarveTop reserves n bytes at the top of the region, just below the upper
// guard, for a backend control block. It fails with a stack_too_small error
// when the region cannot hold the block.
func (s *Stack) CarveTop(n int) ([]byte, error) {
	// keep the control block 8-byte aligned
	n = (n + 7) &^ 7
	if len(s.buf) < 2*GuardSize+n {
		return nil, errors.StackTooSmall(errors.PhaseCreate, len(s.buf), 2*GuardSize+n)
	}
	top := len(s.buf) - GuardSize
	s.carved = n
	return s.buf[top-n : top], nil
}

// Carved reports how many bytes CarveTop reserved.
func (s *Stack) Carved() int {
	return s.carved
}

// CheckGuards verifies the edge canaries and returns a stack_overrun error
// naming the corrupted offset if either was overwritten.
func (s *Stack) CheckGuards() error {
	if binary.LittleEndian.Uint64(s.buf[:GuardSize]) != canary {
		return errors.StackOverrun(0)
	}
	if binary.LittleEndian.Uint64(s.buf[len(s.buf)-GuardSize:]) != canary {
		return errors.StackOverrun(len(s.buf) - GuardSize)
	}
	return nil
}

// Release returns the region to its allocator. Releasing twice is a
// contract violation.
func (s *Stack) Release() {
	if !s.released.CompareAndSwap(false, true) {
		panic(errors.InvalidState(errors.PhaseAlloc, "stack released twice"))
	}
	if err := s.CheckGuards(); err != nil {
		panic(err)
	}
	s.alloc.Deallocate(s)
}

// Released reports whether the region has been returned to its allocator.
func (s *Stack) Released() bool {
	return s.released.Load()
}
