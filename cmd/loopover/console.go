package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OnslaughtSnail/loopover/core/grid"
	"github.com/OnslaughtSnail/loopover/core/puzzle"
	"github.com/OnslaughtSnail/loopover/core/session"
	"github.com/OnslaughtSnail/loopover/core/solve"
	"github.com/OnslaughtSnail/loopover/prefs"
	"github.com/OnslaughtSnail/loopover/store"
)

type console struct {
	baseCtx context.Context
	sess    *session.Session
	board   *grid.Grid
	prefs   *prefs.Store
	store   store.Store
	sampled *atomic.Int64
	version string

	editor   lineEditor
	out      io.Writer
	commands map[string]slashCommand

	interruptMu     sync.Mutex
	lastInterruptAt time.Time
}

const interruptExitWindow = 2 * time.Second

type slashCommand struct {
	Usage       string
	Description string
	Handle      func(*console, []string) (bool, error)
}

type consoleConfig struct {
	BaseContext context.Context
	Session     *session.Session
	Board       *grid.Grid
	Prefs       *prefs.Store
	Store       store.Store
	Sampled     *atomic.Int64
	HistoryFile string
	Version     string
}

func newConsole(cfg consoleConfig) *console {
	table := commandTable()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	editor, _ := newLineEditor(lineEditorConfig{
		HistoryFile: cfg.HistoryFile,
		Commands:    names,
	})
	var out io.Writer = os.Stdout
	if editor != nil {
		out = editor.Output()
	}
	return &console{
		baseCtx:  cfg.BaseContext,
		sess:     cfg.Session,
		board:    cfg.Board,
		prefs:    cfg.Prefs,
		store:    cfg.Store,
		sampled:  cfg.Sampled,
		version:  strings.TrimSpace(cfg.Version),
		editor:   editor,
		out:      out,
		commands: table,
	}
}

func commandTable() map[string]slashCommand {
	return map[string]slashCommand{
		"help":     {Usage: "/help", Description: "show command help", Handle: handleHelp},
		"version":  {Usage: "/version", Description: "show version info", Handle: handleVersion},
		"exit":     {Usage: "/exit", Description: "leave the console", Handle: handleExit},
		"scramble": {Usage: "/scramble", Description: "scramble the board and arm a new attempt", Handle: handleScramble},
		"show":     {Usage: "/show", Description: "print the board and attempt status", Handle: handleShow},
		"undo":     {Usage: "/undo [count]", Description: "take back the latest moves", Handle: handleUndo},
		"redo":     {Usage: "/redo [count]", Description: "replay undone moves", Handle: handleRedo},
		"done":     {Usage: "/done", Description: "finish a blind attempt and reveal the board", Handle: handleDone},
		"history":  {Usage: "/history [count]", Description: "list recent solves for the current event", Handle: handleHistory},
		"stats":    {Usage: "/stats", Description: "show solve statistics for the current event", Handle: handleStats},
		"sessions": {Usage: "/sessions", Description: "list recorded play sessions", Handle: handleSessions},
		"inspect":  {Usage: "/inspect <n>", Description: "replay a recorded solve step by step", Handle: handleInspect},
		"back":     {Usage: "/back", Description: "leave replay and return to the live board", Handle: handleBack},
		"size":     {Usage: "/size <cols>x<rows>", Description: "switch the board dimensions", Handle: handleSize},
		"mode":     {Usage: "/mode <normal|blind|moves>", Description: "switch the event mode", Handle: handleMode},
		"noregrips": {
			Usage:       "/noregrips <on|off>",
			Description: "toggle the anchor constraint",
			Handle:      handleNoRegrips,
		},
		"letters": {Usage: "/letters <on|off>", Description: "label tiles with letters instead of numbers", Handle: handleLetters},
		"prefs":   {Usage: "/prefs", Description: "print persisted preferences", Handle: handlePrefs},
	}
}

func (c *console) loop() error {
	cols, rows := c.sess.Dimensions()
	c.printf("loopover %dx%d %s. /help for commands, /scramble to start.\n", cols, rows, c.sess.Mode())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt)
	exitCh := make(chan struct{}, 1)
	stopSignals := make(chan struct{})
	go c.handleInterruptSignals(sigCh, exitCh, stopSignals)
	defer func() {
		close(stopSignals)
		signal.Stop(sigCh)
		if c.editor != nil {
			_ = c.editor.Close()
		}
	}()
	for {
		select {
		case <-exitCh:
			c.printf("\n")
			return nil
		default:
		}
		line, err := c.editor.ReadLine(c.prompt())
		if err != nil {
			if errors.Is(err, errInputInterrupt) {
				if c.registerInterruptAndShouldExit() {
					c.printf("\n")
					return nil
				}
				c.printf("\n")
				continue
			}
			if errors.Is(err, errInputEOF) {
				c.printf("\n")
				return nil
			}
			return err
		}
		if line == "" {
			c.resetInterruptWindow()
			continue
		}
		c.resetInterruptWindow()
		if strings.HasPrefix(line, "/") {
			exitNow, err := c.handleSlash(line)
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			if exitNow {
				return nil
			}
			continue
		}
		if err := c.applyMoves(line); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
}

func (c *console) handleInterruptSignals(sigCh <-chan os.Signal, exitCh chan<- struct{}, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-sigCh:
			// readline already reports Ctrl+C via errInputInterrupt; avoid
			// double-counting the same keypress as two interrupts.
			if c.usesReadlineEditor() {
				continue
			}
			if c.registerInterruptAndShouldExit() {
				select {
				case exitCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (c *console) handleSlash(line string) (bool, error) {
	parts := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(parts) == 0 {
		return false, nil
	}
	cmd := strings.ToLower(parts[0])
	handler, ok := c.commands[cmd]
	if !ok {
		return false, fmt.Errorf("unknown command %q, use /help", cmd)
	}
	return handler.Handle(c, parts[1:])
}

// applyMoves parses a whole line of move tokens before touching the board,
// so a typo cannot leave a half-applied sequence behind.
func (c *console) applyMoves(line string) error {
	tokens := strings.Fields(line)
	moves := make([]puzzle.Move, 0, len(tokens))
	cols, rows := c.sess.Dimensions()
	for _, token := range tokens {
		mv, err := parseMoveToken(token)
		if err != nil {
			return err
		}
		limit := rows
		if mv.Axis == puzzle.AxisCol {
			limit = cols
		}
		if mv.Index >= limit {
			return fmt.Errorf("move %s is out of range for %dx%d", token, cols, rows)
		}
		moves = append(moves, mv)
	}
	if len(moves) == 0 {
		return nil
	}
	wasFinished := c.sess.Phase() == session.PhaseFinished
	for i, mv := range moves {
		if !c.board.PlayerMove(mv.Axis, mv.Index, mv.N) {
			return fmt.Errorf("move %s is blocked by the anchor constraint", tokens[i])
		}
	}
	c.printBoard()
	if !wasFinished && c.sess.Phase() == session.PhaseFinished {
		c.printResult()
		return nil
	}
	c.printStatus()
	return nil
}

// parseMoveToken parses move notation: r<row> or c<col>, an optional
// trailing ' for the reverse direction and an optional x<count> repeat.
// r0 shifts row 0 right once, c2' shifts column 2 up, r1x3 repeats.
func parseMoveToken(token string) (puzzle.Move, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if len(t) < 2 {
		return puzzle.Move{}, fmt.Errorf("invalid move %q, expected r<row> or c<col>", token)
	}
	var axis int
	switch t[0] {
	case 'r':
		axis = puzzle.AxisRow
	case 'c':
		axis = puzzle.AxisCol
	default:
		return puzzle.Move{}, fmt.Errorf("invalid move %q, expected r<row> or c<col>", token)
	}
	rest := t[1:]
	count := 1
	if at := strings.IndexByte(rest, 'x'); at >= 0 {
		parsed, err := strconv.Atoi(rest[at+1:])
		if err != nil || parsed < 1 {
			return puzzle.Move{}, fmt.Errorf("invalid repeat in %q", token)
		}
		count = parsed
		rest = rest[:at]
	}
	n := count
	if strings.HasSuffix(rest, "'") {
		n = -count
		rest = strings.TrimSuffix(rest, "'")
	}
	index, err := strconv.Atoi(rest)
	if err != nil || index < 0 {
		return puzzle.Move{}, fmt.Errorf("invalid move %q, expected r<row> or c<col>", token)
	}
	return puzzle.Move{Axis: axis, Index: index, N: n}, nil
}

// prompt shows the latest sampler reading while an attempt is running. The
// sampler pushes into an atomic, so drawing the prompt never takes locks.
func (c *console) prompt() string {
	switch c.sess.Phase() {
	case session.PhaseTiming, session.PhaseMemorizing, session.PhaseBlindSolving:
		return formatMillis(c.sampledElapsed()) + " > "
	default:
		return "> "
	}
}

func (c *console) sampledElapsed() int64 {
	if c.sampled == nil {
		return 0
	}
	return c.sampled.Load()
}

func (c *console) ctx() context.Context {
	if c.baseCtx != nil {
		return c.baseCtx
	}
	return context.Background()
}

func (c *console) usesReadlineEditor() bool {
	_, ok := c.editor.(*readlineEditor)
	return ok
}

func (c *console) registerInterruptAndShouldExit() bool {
	c.interruptMu.Lock()
	defer c.interruptMu.Unlock()
	now := time.Now()
	shouldExit := !c.lastInterruptAt.IsZero() && now.Sub(c.lastInterruptAt) <= interruptExitWindow
	c.lastInterruptAt = now
	return shouldExit
}

func (c *console) resetInterruptWindow() {
	c.interruptMu.Lock()
	defer c.interruptMu.Unlock()
	c.lastInterruptAt = time.Time{}
}

func (c *console) printBoard() {
	renderBoard(c.out, c.board, c.usesLetters())
}

func (c *console) printStatus() {
	renderStatus(c.out, c.sess)
}

func (c *console) printResult() {
	hist := c.sess.History()
	if len(hist) == 0 {
		return
	}
	last := hist[len(hist)-1]
	label := "solved"
	if last.DNF() {
		label = "finished"
	}
	c.printf("%s: %s\n", label, formatSolve(last, c.sess.Mode()))
}

func (c *console) usesLetters() bool {
	if c.prefs == nil {
		return false
	}
	return c.prefs.UseLetters()
}

func (c *console) persistEvent() {
	if c.prefs == nil {
		return
	}
	cols, rows := c.sess.Dimensions()
	if err := c.prefs.SetEvent(cols, rows, c.sess.Mode(), c.sess.NoRegrips()); err != nil {
		c.printf("warn: persist preferences failed: %v\n", err)
	}
}

func (c *console) printf(format string, args ...any) {
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

func handleHelp(c *console, args []string) (bool, error) {
	_ = args
	c.printf("Available commands:\n")
	order := []string{"help", "version", "scramble", "show", "undo", "redo", "done", "history", "stats", "sessions", "inspect", "back", "size", "mode", "noregrips", "letters", "prefs", "exit"}
	for _, name := range order {
		cmd := c.commands[name]
		c.printf("  %-24s %s\n", cmd.Usage, cmd.Description)
	}
	c.printf("Moves are typed without a slash: r0 shifts row 0 right, c2' shifts column 2 up, r1x3 repeats.\n")
	return false, nil
}

func handleVersion(c *console, args []string) (bool, error) {
	_ = args
	if c.version == "" {
		c.printf("version=unknown\n")
		return false, nil
	}
	c.printf("version=%s\n", c.version)
	return false, nil
}

func handleExit(c *console, args []string) (bool, error) {
	_ = c
	_ = args
	return true, nil
}

func handleScramble(c *console, args []string) (bool, error) {
	_ = args
	c.sess.Scramble()
	if c.sampled != nil {
		c.sampled.Store(0)
	}
	c.printBoard()
	if c.sess.Phase() == session.PhaseMemorizing {
		c.printf("memorize now: the first move hides the board, /done reveals it\n")
	}
	c.printStatus()
	return false, nil
}

func handleShow(c *console, args []string) (bool, error) {
	_ = args
	c.printBoard()
	c.printStatus()
	return false, nil
}

func handleUndo(c *console, args []string) (bool, error) {
	count, err := stepCount(args, "/undo")
	if err != nil {
		return false, err
	}
	stepped := 0
	for i := 0; i < count; i++ {
		if !c.sess.Undo() {
			break
		}
		stepped++
	}
	if stepped == 0 {
		return false, fmt.Errorf("nothing to undo")
	}
	c.printBoard()
	c.printStatus()
	return false, nil
}

func handleRedo(c *console, args []string) (bool, error) {
	count, err := stepCount(args, "/redo")
	if err != nil {
		return false, err
	}
	stepped := 0
	for i := 0; i < count; i++ {
		if !c.sess.Redo() {
			break
		}
		stepped++
	}
	if stepped == 0 {
		return false, fmt.Errorf("nothing to redo")
	}
	c.printBoard()
	c.printStatus()
	return false, nil
}

func stepCount(args []string, usage string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("usage: %s [count]", usage)
	}
	count, err := strconv.Atoi(args[0])
	if err != nil || count < 1 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return count, nil
}

func handleDone(c *console, args []string) (bool, error) {
	_ = args
	if !c.sess.Done() {
		return false, fmt.Errorf("no blind attempt to finish")
	}
	c.printBoard()
	c.printResult()
	return false, nil
}

func handleHistory(c *console, args []string) (bool, error) {
	limit := 10
	if len(args) > 1 {
		return false, fmt.Errorf("usage: /history [count]")
	}
	if len(args) == 1 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			return false, fmt.Errorf("invalid count %q", args[0])
		}
		limit = parsed
	}
	renderHistory(c.out, c.sess.History(), c.sess.Mode(), limit)
	return false, nil
}

func handleStats(c *console, args []string) (bool, error) {
	_ = args
	renderStats(c.out, c.sess.EventKey(), c.sess.Stats(), c.sess.Mode())
	return false, nil
}

func handleSessions(c *console, args []string) (bool, error) {
	_ = args
	if c.store == nil {
		return false, fmt.Errorf("no solve store configured")
	}
	recs, err := c.store.AllSessions(c.ctx())
	if err != nil {
		return false, err
	}
	if len(recs) == 0 {
		c.printf("sessions: (empty)\n")
		return false, nil
	}
	c.printf("sessions:\n")
	current := c.sess.SessionID()
	for _, rec := range recs {
		marker := " "
		if rec.ID == current {
			marker = "*"
		}
		solves, err := c.store.SolvesBySession(c.ctx(), rec.ID)
		if err != nil {
			return false, err
		}
		c.printf(" %s %s  created=%s  solves=%d\n", marker, rec.ID, rec.Created.Format(time.RFC3339), len(solves))
	}
	return false, nil
}

func handleInspect(c *console, args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("usage: /inspect <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return false, fmt.Errorf("invalid solve number %q", args[0])
	}
	hist := c.sess.History()
	if n > len(hist) {
		return false, fmt.Errorf("no solve %d in history, see /history", n)
	}
	if err := c.sess.Inspect(hist[len(hist)-n]); err != nil {
		return false, err
	}
	c.printf("replaying solve %d: /redo steps forward, /undo steps back, /back returns\n", n)
	c.printBoard()
	c.printStatus()
	return false, nil
}

func handleBack(c *console, args []string) (bool, error) {
	_ = args
	if !c.sess.ExitInspect() {
		return false, fmt.Errorf("not replaying a solve")
	}
	c.printBoard()
	c.printStatus()
	return false, nil
}

func handleSize(c *console, args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("usage: /size <cols>x<rows>")
	}
	cols, rows, err := parseSize(args[0])
	if err != nil {
		return false, err
	}
	if err := c.sess.SetDimensions(cols, rows); err != nil {
		return false, err
	}
	c.persistEvent()
	c.printBoard()
	c.printStatus()
	return false, nil
}

func parseSize(input string) (cols, rows int, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(input)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q, expected <cols>x<rows>", input)
	}
	cols, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q, expected <cols>x<rows>", input)
	}
	rows, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q, expected <cols>x<rows>", input)
	}
	return cols, rows, nil
}

func handleMode(c *console, args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("usage: /mode <normal|blind|moves>")
	}
	mode, err := solve.ParseMode(args[0])
	if err != nil {
		return false, err
	}
	if err := c.sess.SetMode(mode); err != nil {
		return false, err
	}
	c.persistEvent()
	c.printf("mode=%s event=%s\n", mode, c.sess.EventKey())
	return false, nil
}

func handleNoRegrips(c *console, args []string) (bool, error) {
	on, err := parseOnOff(args, "/noregrips")
	if err != nil {
		return false, err
	}
	c.sess.SetNoRegrips(on)
	c.persistEvent()
	c.printf("noregrips=%v event=%s\n", on, c.sess.EventKey())
	return false, nil
}

func handleLetters(c *console, args []string) (bool, error) {
	on, err := parseOnOff(args, "/letters")
	if err != nil {
		return false, err
	}
	if c.prefs == nil {
		return false, fmt.Errorf("preferences are not available")
	}
	if err := c.prefs.SetUseLetters(on); err != nil {
		return false, err
	}
	c.printf("letters=%v\n", on)
	c.printBoard()
	return false, nil
}

func parseOnOff(args []string, usage string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("usage: %s <on|off>", usage)
	}
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("usage: %s <on|off>", usage)
	}
}

func handlePrefs(c *console, args []string) (bool, error) {
	_ = args
	if c.prefs == nil {
		return false, fmt.Errorf("preferences are not available")
	}
	c.printf("path=%s\n", c.prefs.Path())
	c.printf("event=%dx%d mode=%s noregrips=%v\n", c.prefs.Cols(), c.prefs.Rows(), c.prefs.Mode(), c.prefs.NoRegrips())
	c.printf("letters=%v dark_mode=%v dark_text=%v force_mobile=%v\n", c.prefs.UseLetters(), c.prefs.DarkMode(), c.prefs.DarkText(), c.prefs.ForceMobile())
	return false, nil
}
