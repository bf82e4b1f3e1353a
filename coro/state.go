package coro

// State is a coroutine lifecycle state.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateSuspended
	StateFinished
	StatePanicked
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateFinished:
		return "finished"
	case StatePanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is Finished or Panicked.
func (s State) Terminal() bool {
	return s == StateFinished || s == StatePanicked
}
