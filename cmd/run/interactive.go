package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/coro-runtime/bridge"
	"github.com/wippyai/coro-runtime/coro"
	"github.com/wippyai/coro-runtime/stack"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	taskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateConfigure modelState = iota
	stateRunning
	stateDone
)

type interactiveModel struct {
	err       error
	state     modelState
	input     textinput.Model
	stackSize int

	timer   *bridge.Task
	counter *bridge.Task

	timerDone   bool
	counterDone bool
	timerOut    string
	counterOut  string
	count       *atomic.Int64
	ticks       int
}

type tickMsg time.Time

func newInteractiveModel(stackSize int) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(stackSize)
	ti.Prompt = "stack size (bytes): "
	ti.Width = 20
	ti.Focus()

	return &interactiveModel{
		state:     stateConfigure,
		input:     ti,
		stackSize: stackSize,
		count:     &atomic.Int64{},
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *interactiveModel) start() error {
	size := m.stackSize
	if v := strings.TrimSpace(m.input.Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("stack size: %w", err)
		}
		if n < stack.MinSize {
			return fmt.Errorf("stack size %d below minimum %d", n, stack.MinSize)
		}
		size = n
	}
	m.stackSize = size

	m.timer = bridge.Sync(func(w *bridge.Waiter) any {
		if _, err := w.Wait(bridge.After(3 * time.Second)); err != nil {
			return err
		}
		return "fired after 3s"
	})

	count := m.count
	m.counter = bridge.Sync(func(w *bridge.Waiter) any {
		// the increments come from a coroutine on a stack of the
		// configured size
		co, err := coro.New(func(src *coro.Source, in any) any {
			for n := 1; ; n++ {
				src.Yield(n)
			}
		}, coro.WithStackSize(size))
		if err != nil {
			return err
		}
		defer co.Cancel(nil)

		for i := 0; i < 40; i++ {
			if _, err := w.Wait(bridge.After(60 * time.Millisecond)); err != nil {
				return err
			}
			v, err := co.Resume(nil)
			if err != nil {
				return err
			}
			count.Store(int64(v.(int)))
		}
		return fmt.Sprintf("counted to %d", count.Load())
	})

	return nil
}

func (m *interactiveModel) step() {
	ctx := context.Background()
	m.ticks++

	if !m.timerDone {
		p, err := m.timer.Poll(ctx)
		if err != nil {
			m.err = err
			m.state = stateDone
			return
		}
		if p.Status == bridge.StatusReady {
			m.timerDone = true
			m.timerOut = fmt.Sprintf("%v", p.Value)
		}
	}
	if !m.counterDone {
		p, err := m.counter.Poll(ctx)
		if err != nil {
			m.err = err
			m.state = stateDone
			return
		}
		if p.Status == bridge.StatusReady {
			m.counterDone = true
			m.counterOut = fmt.Sprintf("%v", p.Value)
		}
	}
	if m.timerDone && m.counterDone {
		m.state = stateDone
	}
}

func (m *interactiveModel) cancelRunning() {
	if m.timer != nil && !m.timerDone {
		_ = m.timer.Cancel()
	}
	if m.counter != nil && !m.counterDone {
		_ = m.counter.Cancel()
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelRunning()
			return m, tea.Quit

		case "enter":
			if m.state == stateConfigure {
				if err := m.start(); err != nil {
					m.err = err
					return m, nil
				}
				m.err = nil
				m.state = stateRunning
				return m, tick()
			}
		}

	case tickMsg:
		if m.state == stateRunning {
			m.step()
			if m.state == stateRunning {
				return m, tick()
			}
		}
		return m, nil
	}

	if m.state == stateConfigure {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Coroutine Runner"))
	b.WriteString("\n\n")

	switch m.state {
	case stateConfigure:
		b.WriteString("Two tasks will be polled round-robin: a 3s timer and a\n")
		b.WriteString("counter stepping a coroutine once per 60ms.\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("enter start • q quit"))

	case stateRunning, stateDone:
		b.WriteString(fmt.Sprintf("stack size: %d bytes • polls: %d\n\n", m.stackSize, m.ticks))

		b.WriteString(taskStyle.Render("timer  "))
		if m.timerDone {
			b.WriteString(readyStyle.Render("ready: " + m.timerOut))
		} else {
			b.WriteString(pendingStyle.Render("pending"))
		}
		b.WriteString("\n")

		b.WriteString(taskStyle.Render("counter"))
		b.WriteString(" ")
		if m.counterDone {
			b.WriteString(readyStyle.Render("ready: " + m.counterOut))
		} else {
			b.WriteString(pendingStyle.Render(fmt.Sprintf("pending, count=%d", m.count.Load())))
		}
		b.WriteString("\n\n")

		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		}
		if m.state == stateDone {
			b.WriteString(helpStyle.Render("q quit"))
		} else {
			b.WriteString(helpStyle.Render("q cancel and quit"))
		}
	}

	return b.String()
}

func runInteractive(stackSize int) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(stackSize), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
