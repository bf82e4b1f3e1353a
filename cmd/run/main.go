package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/coro-runtime/bridge"
	"github.com/wippyai/coro-runtime/coro"
	"github.com/wippyai/coro-runtime/engine"
)

func main() {
	var (
		demo        = flag.String("demo", "middleware", "Demo to run (middleware)")
		blocks      = flag.Int("blocks", 8, "Number of input blocks")
		blockSize   = flag.Int("block-size", 64, "Bytes per block")
		stackSize   = flag.Int("stack", 8*1024, "Coroutine stack size in bytes")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.SetLogger(log)
		coro.SetLogger(log)
		bridge.SetLogger(log)
	}

	if *interactive {
		if err := runInteractive(*stackSize); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	switch *demo {
	case "middleware":
		if err := runMiddleware(*blocks, *blockSize, *stackSize); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "Usage: run [-demo middleware] [-blocks n] [-block-size n] [-stack n]")
		fmt.Fprintln(os.Stderr, "       run -i  (interactive mode)")
		os.Exit(1)
	}
}

// runMiddleware pushes the same blocks through the prefix-xor middleware
// twice, first driving the coroutine directly and then hosted as a bridged
// task over an awaitable block source, and checks both paths agree.
func runMiddleware(blocks, blockSize, stackSize int) error {
	input := makeBlocks(blocks, blockSize)

	fmt.Printf("Middleware demo: %d blocks x %d bytes\n", blocks, blockSize)

	direct, err := transformDirect(input, stackSize)
	if err != nil {
		return fmt.Errorf("direct pass: %w", err)
	}
	fmt.Printf("Direct pass:  %d blocks out\n", len(direct))

	bridged, err := transformBridged(input)
	if err != nil {
		return fmt.Errorf("bridged pass: %w", err)
	}
	fmt.Printf("Bridged pass: %d blocks out\n", len(bridged))

	for i := range direct {
		if !bytes.Equal(direct[i], bridged[i]) {
			return fmt.Errorf("block %d: direct and bridged outputs differ", i)
		}
	}
	fmt.Println("Both paths agree.")
	return nil
}

func makeBlocks(n, size int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		b := make([]byte, size)
		for j := range b {
			b[j] = byte(i*31 + j)
		}
		out[i] = b
	}
	return out
}

// prefixXor rewrites a block in a fresh buffer, xoring each byte with the
// running xor of everything seen so far. The key survives across blocks on
// the coroutine's own stack.
func prefixXor(key *byte, block []byte) []byte {
	out := make([]byte, len(block))
	for i, b := range block {
		*key ^= b
		out[i] = b ^ *key
	}
	return out
}

// transformDirect feeds blocks through a coroutine one Resume at a time. A
// nil block signals the end of input.
func transformDirect(input [][]byte, stackSize int) ([][]byte, error) {
	co, err := coro.New(func(src *coro.Source, in any) any {
		var key byte
		for in != nil {
			in = src.Yield(prefixXor(&key, in.([]byte)))
		}
		return nil
	}, coro.WithStackSize(stackSize))
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(input))
	for _, block := range input {
		v, err := co.Resume(block)
		if err != nil {
			return nil, err
		}
		out = append(out, v.([]byte))
	}
	if _, err := co.Resume(nil); err != nil {
		return nil, err
	}
	return out, nil
}

// blockSource hands blocks out through awaitables that need one extra poll
// each, standing in for I/O that is not ready immediately.
type blockSource struct {
	blocks [][]byte
	next   int
}

func (s *blockSource) recv() bridge.Awaitable {
	polled := false
	return bridge.AwaitableFunc(func(context.Context) (any, bool, error) {
		if !polled {
			polled = true
			return nil, false, nil
		}
		if s.next >= len(s.blocks) {
			return nil, true, nil
		}
		b := s.blocks[s.next]
		s.next++
		return b, true, nil
	})
}

// transformBridged hosts the same middleware as a pollable task reading
// blocks from an awaitable source.
func transformBridged(input [][]byte) ([][]byte, error) {
	src := &blockSource{blocks: input}

	task := bridge.Sync(func(w *bridge.Waiter) any {
		var key byte
		var out [][]byte
		for {
			v, err := w.Wait(src.recv())
			if err != nil {
				return err
			}
			if v == nil {
				return out
			}
			out = append(out, prefixXor(&key, v.([]byte)))
		}
	})

	ctx := context.Background()
	for {
		p, err := task.Poll(ctx)
		if err != nil {
			return nil, err
		}
		if p.Status == bridge.StatusReady {
			if err, ok := p.Value.(error); ok {
				return nil, err
			}
			return p.Value.([][]byte), nil
		}
	}
}
