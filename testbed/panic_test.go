package testbed

import (
	stderrors "errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/wippyai/coro-runtime/coro"
)

func TestRewindChainDeliversPayload(t *testing.T) {
	// three coroutines deep; the innermost panics and the hook rewinds into
	// a recovery coroutine that must receive the exact panic value
	recovery, err := coro.New(func(src *coro.Source, in any) any {
		return in
	})
	if err != nil {
		t.Fatal(err)
	}

	sentinel := &struct{ tag string }{tag: "exact payload"}

	inner, err := coro.New(
		func(src *coro.Source, in any) any { panic(sentinel) },
		coro.WithPanicHook(coro.HookFunc(func(p *coro.PanicPayload) *coro.Co {
			return recovery
		})),
	)
	if err != nil {
		t.Fatal(err)
	}

	outer, err := coro.New(func(src *coro.Source, in any) any {
		out, err := inner.Resume(nil)
		if err != nil {
			t.Errorf("inner resume: %v", err)
		}
		return out
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := outer.Resume(nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != sentinel {
		t.Fatalf("rewound coroutine got %v, want the identical panic value", out)
	}
}

func TestDefaultHookAbortsProcess(t *testing.T) {
	if os.Getenv("TESTBED_UNROOTED_PANIC") == "1" {
		co, err := coro.New(func(src *coro.Source, in any) any {
			panic("unrooted")
		})
		if err != nil {
			t.Fatal(err)
		}
		_, _ = co.Resume(nil)
		t.Fatal("resume of a panicking coroutine returned")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run", "^TestDefaultHookAbortsProcess$")
	cmd.Env = append(os.Environ(), "TESTBED_UNROOTED_PANIC=1")
	out, err := cmd.CombinedOutput()

	var ee *exec.ExitError
	if !stderrors.As(err, &ee) {
		t.Fatalf("subprocess did not abort; err=%v output:\n%s", err, out)
	}
	if !strings.Contains(string(out), "coroutine panic: unrooted") {
		t.Fatalf("abort output missing the relayed payload:\n%s", out)
	}
}
