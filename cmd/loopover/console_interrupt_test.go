package main

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/OnslaughtSnail/loopover/core/solve"
)

type stubLineEditor struct {
	lines []string
	idx   int
	reads int
}

func (s *stubLineEditor) ReadLine(prompt string) (string, error) {
	_ = prompt
	s.reads++
	if s.idx >= len(s.lines) {
		return "", errInputEOF
	}
	line := s.lines[s.idx]
	s.idx++
	return line, nil
}

func (s *stubLineEditor) Output() io.Writer { return io.Discard }
func (s *stubLineEditor) Close() error      { return nil }

func TestHandleInterruptSignals_ReadlineIdleIgnoresSignal(t *testing.T) {
	c := &console{editor: &readlineEditor{}}
	sigCh := make(chan os.Signal, 1)
	exitCh := make(chan struct{}, 1)
	stop := make(chan struct{})
	go c.handleInterruptSignals(sigCh, exitCh, stop)
	defer close(stop)

	sigCh <- os.Interrupt
	select {
	case <-exitCh:
		t.Fatal("expected no exit on first readline Ctrl+C")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestHandleInterruptSignals_NonReadlineDoubleInterruptExits(t *testing.T) {
	c := &console{editor: &stubLineEditor{}}
	sigCh := make(chan os.Signal, 2)
	exitCh := make(chan struct{}, 1)
	stop := make(chan struct{})
	go c.handleInterruptSignals(sigCh, exitCh, stop)
	defer close(stop)

	sigCh <- os.Interrupt
	select {
	case <-exitCh:
		t.Fatal("expected first interrupt not to exit")
	case <-time.After(80 * time.Millisecond):
	}

	sigCh <- os.Interrupt
	select {
	case <-exitCh:
	case <-time.After(120 * time.Millisecond):
		t.Fatal("expected second interrupt to request exit")
	}
}

func TestRegisterInterruptWindowResets(t *testing.T) {
	c := &console{}
	if c.registerInterruptAndShouldExit() {
		t.Fatal("first interrupt should not exit")
	}
	if !c.registerInterruptAndShouldExit() {
		t.Fatal("second interrupt inside the window should exit")
	}
	c.resetInterruptWindow()
	if c.registerInterruptAndShouldExit() {
		t.Fatal("interrupt after reset should not exit")
	}
}

func TestLoopRunsScriptedCommands(t *testing.T) {
	c, out := newTestConsole(t, solve.ModeNormal)
	c.commands = commandTable()
	c.editor = &stubLineEditor{lines: []string{"/version", "", "/exit"}}
	if err := c.loop(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "version=") {
		t.Fatalf("expected version output, got: %s", out.String())
	}
}

func TestLoopExitsOnEOF(t *testing.T) {
	c, _ := newTestConsole(t, solve.ModeNormal)
	c.commands = commandTable()
	c.editor = &stubLineEditor{}
	if err := c.loop(); err != nil {
		t.Fatal(err)
	}
}

func TestLoopReportsCommandErrors(t *testing.T) {
	c, out := newTestConsole(t, solve.ModeNormal)
	c.commands = commandTable()
	c.editor = &stubLineEditor{lines: []string{"/warp", "bogus", "/exit"}}
	if err := c.loop(); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "unknown command") {
		t.Fatalf("expected unknown command report, got: %s", text)
	}
	if !strings.Contains(text, "invalid move") {
		t.Fatalf("expected invalid move report, got: %s", text)
	}
}
