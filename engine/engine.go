package engine

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/wippyai/coro-runtime/errors"
	"github.com/wippyai/coro-runtime/stack"
)

// Transfer is the ordered pair exchanged at a switch boundary. Context is
// the continuation of the side that just suspended (nil once that side has
// terminated); Data is an opaque payload whose meaning is a private
// agreement between the two sides of a given switch.
type Transfer struct {
	Context *Context
	Data    any
	// OnTop, when set, runs on the receiving side immediately after it
	// regains control and before its ordinary continuation.
	OnTop OnTop
}

// Entry runs exactly once, when a freshly created context first receives
// control. It is handed the initial Transfer; the Transfer it returns is the
// exit switch the backend performs after it returns. The exit target must be
// resumable; its OnTop runs on the receiving side, off the dead context.
type Entry func(Transfer) Transfer

// OnTop is deferred work spliced to run right after a context regains
// control. It receives the arriving Transfer and returns the Transfer the
// continuation proceeds with.
type OnTop func(Transfer) Transfer

// Context is a one-shot handle to a suspended flow of control. It is
// produced by NewOn or by a switch, and consumed by exactly one Resume.
type Context struct {
	cell *chanCell
	rc   *rcCell
	used atomic.Bool
}

func (c *Context) consume() {
	if c == nil || !c.used.CompareAndSwap(false, true) {
		Logger().Error("resume of consumed or nil context")
		panic(errors.BackendFailure(errors.PhaseSwitch, "resume of consumed or nil context", nil))
	}
}

// Backend is the context-switch capability contract. Implementations must
// be safe for use from multiple goroutines as long as each Context is
// consumed by exactly one of them.
type Backend interface {
	// NewOn carves a new context inside stk that will invoke entry on first
	// resumption. It fails with a stack_too_small error if the region cannot
	// hold the control block.
	//
	// A created context must eventually be driven to its exit switch: one
	// that is never resumed keeps its flow of control parked and its stack
	// region unreleased. The coroutine layer's Cancel is the standard way
	// to unwind a context that will not be resumed.
	NewOn(stk *stack.Stack, entry Entry) (*Context, error)

	// Resume switches the flow of control into t.Context, suspending the
	// caller's own flow. It returns only when some other switch targets the
	// caller again, yielding the Transfer that arrived then.
	Resume(t Transfer) Transfer

	// ResumeWith is Resume with onTop installed to run on the target
	// immediately after it regains control.
	ResumeWith(t Transfer, onTop OnTop) Transfer
}

// control block layout: magic, then a process-unique context id. The block
// lives at the top of the stack region so guard checks also cover it.
const (
	controlBlockSize = 64
	controlMagic     = uint64(0xC02085AC4C0DE001)
)

var contextSeq atomic.Uint64

func stampControlBlock(block []byte) {
	binary.LittleEndian.PutUint64(block[0:8], controlMagic)
	binary.LittleEndian.PutUint64(block[8:16], contextSeq.Add(1))
}

// arrive runs the on-top callback, if any, on the side that just regained
// control.
func arrive(t Transfer) Transfer {
	if f := t.OnTop; f != nil {
		t.OnTop = nil
		t = f(t)
	}
	return t
}

var (
	registeredBackend atomic.Pointer[backendBox]
	backendOnce       sync.Once
	defaultBackend    Backend
)

type backendBox struct{ b Backend }

// SetBackend registers the process-wide backend. It must be called at most
// once, before any context is created; registering twice or after Default
// has resolved is a contract violation.
func SetBackend(b Backend) {
	if defaultBackend != nil || !registeredBackend.CompareAndSwap(nil, &backendBox{b: b}) {
		panic(errors.DoubleRegistration("context-switch backend"))
	}
}

// Default resolves the process-wide backend exactly once. If SetBackend was
// never called, the channel backend is installed.
func Default() Backend {
	backendOnce.Do(func() {
		if box := registeredBackend.Load(); box != nil {
			defaultBackend = box.b
			return
		}
		def := Channel{}
		if !registeredBackend.CompareAndSwap(nil, &backendBox{b: def}) {
			defaultBackend = registeredBackend.Load().b
			return
		}
		defaultBackend = def
	})
	return defaultBackend
}
