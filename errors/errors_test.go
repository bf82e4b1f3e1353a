package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseCreate,
				Kind:   KindStackTooSmall,
				Detail: "region of 16 bytes is below the required minimum of 80",
			},
			contains: []string{"[create]", "stack_too_small", "16 bytes"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseResume,
				Kind:  KindTerminated,
			},
			contains: []string{"[resume]", "terminated"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseSwitch,
				Kind:   KindBackendFailure,
				Detail: "switch into consumed context",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[switch]", "backend_failure", "consumed context", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseAlloc,
		Kind:  KindBackendFailure,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not match through Unwrap")
	}
}

func TestError_Is(t *testing.T) {
	err := StackTooSmall(PhaseAlloc, 16, 64)

	if !errors.Is(err, &Error{Phase: PhaseAlloc, Kind: KindStackTooSmall}) {
		t.Error("Is did not match same phase/kind")
	}
	if errors.Is(err, &Error{Phase: PhaseAlloc, Kind: KindTerminated}) {
		t.Error("Is matched different kind")
	}
	if errors.Is(err, &Error{Phase: PhaseResume, Kind: KindStackTooSmall}) {
		t.Error("Is matched different phase")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("swap failed")
	err := New(PhaseSwitch, KindBackendFailure).
		Detail("resume of context %d", 7).
		Value(7).
		Cause(cause).
		Build()

	if err.Phase != PhaseSwitch || err.Kind != KindBackendFailure {
		t.Fatalf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Detail != "resume of context 7" {
		t.Errorf("unexpected detail: %q", err.Detail)
	}
	if err.Value != 7 {
		t.Errorf("unexpected value: %v", err.Value)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not wrapped")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
	}{
		{StackTooSmall(PhaseAlloc, 8, 64), PhaseAlloc, KindStackTooSmall},
		{StackTooSmall(PhaseCreate, 24, 80), PhaseCreate, KindStackTooSmall},
		{StackOverrun(12), PhaseSwitch, KindStackOverrun},
		{Terminated("finished"), PhaseResume, KindTerminated},
		{InvalidState(PhaseResume, "already running"), PhaseResume, KindInvalidState},
		{Canceled("task dropped"), PhaseUnwind, KindCanceled},
		{BackendFailure(PhaseSwitch, "dead cell", nil), PhaseSwitch, KindBackendFailure},
		{DoubleRegistration("stack allocator"), PhaseCreate, KindDoubleRegistration},
		{NotInitialized(PhaseBridge, "task"), PhaseBridge, KindNotInitialized},
	}

	for _, tt := range tests {
		if tt.err.Phase != tt.phase || tt.err.Kind != tt.kind {
			t.Errorf("%v: got %s/%s, want %s/%s", tt.err, tt.err.Phase, tt.err.Kind, tt.phase, tt.kind)
		}
		if tt.err.Error() == "" {
			t.Errorf("empty message for %s/%s", tt.phase, tt.kind)
		}
	}
}
