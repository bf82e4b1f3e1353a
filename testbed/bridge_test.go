package testbed

import (
	"context"
	"sync"
	"testing"
	"time"

	cororuntime "github.com/wippyai/coro-runtime"
	"github.com/wippyai/coro-runtime/bridge"
)

// step is an awaitable that needs two polls per wait, forcing a bridged
// task to surface as pending between steps.
func step(v any) bridge.Awaitable {
	n := 0
	return bridge.AwaitableFunc(func(context.Context) (any, bool, error) {
		n++
		return v, n >= 2, nil
	})
}

func TestBridgedTasksInterleave(t *testing.T) {
	ctx := context.Background()

	timer := cororuntime.Sync(func(w *bridge.Waiter) any {
		_, err := w.Wait(bridge.After(40 * time.Millisecond))
		if err != nil {
			t.Errorf("timer wait: %v", err)
		}
		return "timer"
	})

	var progress []int
	cpu := cororuntime.Sync(func(w *bridge.Waiter) any {
		for i := 0; i < 5; i++ {
			v, err := w.Wait(step(i))
			if err != nil {
				t.Errorf("cpu wait %d: %v", i, err)
			}
			progress = append(progress, v.(int))
		}
		return "cpu"
	})

	// minimal round-robin driver
	var cpuDone, timerDone bool
	var cpuDoneAt, timerPendingSeen int
	for round := 0; !(cpuDone && timerDone); round++ {
		if round > 10_000 {
			t.Fatal("driver did not converge")
		}
		if !timerDone {
			p, err := timer.Poll(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if p.Status == bridge.StatusReady {
				timerDone = true
				if p.Value != "timer" {
					t.Errorf("timer result = %v", p.Value)
				}
			} else if !cpuDone {
				timerPendingSeen++
			}
		}
		if !cpuDone {
			p, err := cpu.Poll(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if p.Status == bridge.StatusReady {
				cpuDone = true
				cpuDoneAt = round
				if p.Value != "cpu" {
					t.Errorf("cpu result = %v", p.Value)
				}
			}
		}
		time.Sleep(time.Millisecond)
	}

	if !cpuDone || cpuDoneAt == 0 {
		t.Fatal("cpu task never finished")
	}
	if timerPendingSeen == 0 {
		t.Error("cpu task made no progress while the timer was pending")
	}
	for i, v := range progress {
		if v != i {
			t.Fatalf("cpu progress = %v, want 0..4 in order", progress)
		}
	}
}

func TestBridgePoolUnderConcurrency(t *testing.T) {
	const goroutines = 16
	const tasksPer = 32
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < tasksPer; i++ {
				want := g*tasksPer + i
				task := bridge.Sync(func(w *bridge.Waiter) any {
					v, _ := w.Wait(bridge.Ready(want))
					return v
				})
				p, err := task.Poll(ctx)
				if err != nil {
					t.Errorf("goroutine %d task %d: %v", g, i, err)
					return
				}
				if p.Status != bridge.StatusReady || p.Value != want {
					t.Errorf("goroutine %d task %d: poll = %+v", g, i, p)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}
