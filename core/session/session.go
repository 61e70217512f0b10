// Package session implements the solving-session state machine: scrambling,
// timing, the undo/redo move log, mode branching, solved/DNF detection and
// replay of recorded solves. It owns all transient attempt state; the puzzle
// engine owns the board and the store owns durable records.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/OnslaughtSnail/loopover/core/clock"
	"github.com/OnslaughtSnail/loopover/core/movelog"
	"github.com/OnslaughtSnail/loopover/core/puzzle"
	"github.com/OnslaughtSnail/loopover/core/solve"
	"github.com/OnslaughtSnail/loopover/store"
)

// Phase is the session's current state. Exactly one phase holds at a time.
type Phase string

const (
	// PhaseIdle is free play: the board moves but nothing is recorded.
	PhaseIdle Phase = "idle"
	// PhaseScrambled waits for the first player move to start the timer.
	PhaseScrambled Phase = "scrambled"
	PhaseTiming    Phase = "timing"
	// PhaseMemorizing is the blind sub-phase between scramble and first move.
	// The timer already runs; the board is still visible.
	PhaseMemorizing   Phase = "memorizing"
	PhaseBlindSolving Phase = "blind_solving"
	PhaseFinished     Phase = "finished"
	PhaseInspecting   Phase = "inspecting"
)

const (
	defaultSize = 3
	minSize     = 2
)

// Config configures Session.
type Config struct {
	// Engine is the puzzle collaborator. Required.
	Engine puzzle.Engine
	// Store receives finished solves. Optional; without it the session runs
	// purely in memory.
	Store store.Store
	// DecodeBoard rebuilds scramble snapshots from persisted records.
	// Required when Store is set.
	DecodeBoard solve.BoardDecoder

	Cols      int
	Rows      int
	Mode      solve.Mode
	NoRegrips bool

	// Interval overrides the timer sampler period. Zero selects the default.
	Interval time.Duration
	// OnSample receives live elapsed-time updates for display.
	OnSample func(elapsed time.Duration)
}

// Session is the single solving session of the process. All methods are safe
// for concurrent use; the sampler and persistence goroutines never hold the
// session lock while doing their work.
type Session struct {
	mu     sync.Mutex
	engine puzzle.Engine
	store  store.Store
	decode solve.BoardDecoder

	cols      int
	rows      int
	mode      solve.Mode
	noRegrips bool

	phase    Phase
	log      *movelog.Log
	clk      *clock.Clock
	scramble puzzle.Board

	memoMS       int64
	lastTime     int64
	inspectTotal int64

	sid     string
	loadGen uint64

	history map[solve.EventKey][]solve.Solve
	all     []solve.Solve
}

func New(cfg Config) (*Session, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("session: engine is nil")
	}
	if cfg.Store != nil && cfg.DecodeBoard == nil {
		return nil, fmt.Errorf("session: board decoder is required with a store")
	}
	cols, rows := cfg.Cols, cfg.Rows
	if cols == 0 {
		cols = defaultSize
	}
	if rows == 0 {
		rows = defaultSize
	}
	if cols < minSize || rows < minSize {
		return nil, fmt.Errorf("session: board size %dx%d is below the %dx%d minimum", cols, rows, minSize, minSize)
	}
	mode := cfg.Mode
	if mode == "" {
		mode = solve.ModeNormal
	}
	if _, err := solve.ParseMode(string(mode)); err != nil {
		return nil, err
	}

	s := &Session{
		engine:    cfg.Engine,
		store:     cfg.Store,
		decode:    cfg.DecodeBoard,
		cols:      cols,
		rows:      rows,
		mode:      mode,
		noRegrips: cfg.NoRegrips,
		phase:     PhaseIdle,
		log:       movelog.New(),
		clk:       clock.New(clock.Config{Interval: cfg.Interval, OnSample: cfg.OnSample}),
		history:   make(map[solve.EventKey][]solve.Solve),
	}
	s.engine.SetOnMove(s.OnMove)
	s.engine.SetDimensions(cols, rows)
	s.engine.SetConstraint(cfg.NoRegrips)
	s.engine.SetVisibility(true)

	s.mu.Lock()
	s.reloadHistoryLocked()
	s.mu.Unlock()
	return s, nil
}

// OnMove is the engine's move callback. Moves not originating from the
// player (scramble, undo/redo, replay) mutate only the board and return
// before the session lock, so session methods may drive the engine while
// holding it.
func (s *Session) OnMove(mv puzzle.Move, player bool) {
	if !player {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handleMove(mv)
}

func (s *Session) handleMove(mv puzzle.Move) {
	switch s.phase {
	case PhaseScrambled:
		s.clk.Start()
		s.phase = PhaseTiming
	case PhaseMemorizing:
		// Memorization ends at the first move: record its duration once and
		// hide the board for the blind execution.
		s.memoMS = s.clk.Exact().Milliseconds()
		s.engine.SetVisibility(false)
		s.phase = PhaseBlindSolving
	}
	mv.Time = s.clk.Exact().Milliseconds()
	s.log.Append(mv)
	if s.phase == PhaseTiming && s.engine.IsSolved() {
		s.finalizeLocked(false)
	}
}

// Scramble abandons whatever the session was doing, regenerates the board and
// snapshots it, then arms the next attempt. An unfinished attempt leaves no
// record. In blind mode the timer starts here, with the board still visible
// for memorization.
func (s *Session) Scramble() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.softResetLocked()
	s.engine.Scramble()
	s.scramble = s.engine.Clone()
	if s.mode == solve.ModeBlind {
		s.clk.Start()
		s.phase = PhaseMemorizing
	} else {
		s.phase = PhaseScrambled
	}
	s.reloadHistoryLocked()
}

// Done ends a blind attempt: reveal the board, evaluate the solved predicate
// and finalize either way. Outside a running blind attempt it is a no-op and
// reports false.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != solve.ModeBlind {
		return false
	}
	switch s.phase {
	case PhaseMemorizing, PhaseBlindSolving:
	default:
		return false
	}
	s.engine.SetVisibility(true)
	s.finalizeLocked(!s.engine.IsSolved())
	return true
}

// Undo applies the inverse of the move behind the cursor. It never touches
// the timer, the phase or log bookkeeping, and reports false past the start
// of the log.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mv, ok := s.log.Step(movelog.Undo)
	if !ok {
		return false
	}
	s.engine.ApplyMove(mv.Axis, mv.Index, mv.N)
	return true
}

// Redo replays the move ahead of the cursor, reporting false at the log tip.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mv, ok := s.log.Step(movelog.Redo)
	if !ok {
		return false
	}
	s.engine.ApplyMove(mv.Axis, mv.Index, mv.N)
	return true
}

// Inspect replays a recorded solve: the board becomes the solve's scramble
// snapshot and the log its move sequence with the cursor parked at the start,
// so Undo and Redo double as step-backward and step-forward controls.
func (s *Session) Inspect(sv solve.Solve) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	board := sv.Scramble()
	if board == nil {
		return fmt.Errorf("session: solve has no scramble snapshot to inspect")
	}
	s.softResetLocked()
	if err := s.engine.Restore(board); err != nil {
		return fmt.Errorf("session: restore scramble: %w", err)
	}
	s.log.Load(sv.Moves())
	s.inspectTotal = sv.Time()
	s.phase = PhaseInspecting
	return nil
}

// ExitInspect leaves replay mode, keeping the board wherever the replay
// stood. It reports false outside of replay.
func (s *Session) ExitInspect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInspecting {
		return false
	}
	s.softResetLocked()
	return true
}

// Elapsed returns the milliseconds to display for the current phase: live
// elapsed time during an attempt, the recorded total after a finish, and the
// replay boundary timestamp while inspecting (the solve's total once fully
// replayed).
func (s *Session) Elapsed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseInspecting:
		if mv, ok := s.log.PeekRedo(); ok {
			return mv.Time
		}
		return s.inspectTotal
	case PhaseFinished:
		return s.lastTime
	}
	return s.clk.Exact().Milliseconds()
}

// SetDimensions reconfigures the board size, resets the session and reloads
// history for the new event. Unchanged dimensions are a no-op.
func (s *Session) SetDimensions(cols, rows int) error {
	if cols < minSize || rows < minSize {
		return fmt.Errorf("session: board size %dx%d is below the %dx%d minimum", cols, rows, minSize, minSize)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cols == s.cols && rows == s.rows {
		return nil
	}
	s.cols, s.rows = cols, rows
	s.softResetLocked()
	s.engine.SetDimensions(cols, rows)
	s.reloadHistoryLocked()
	return nil
}

// SetMode switches the solving discipline, resetting the session. A running
// attempt is abandoned without a record.
func (s *Session) SetMode(mode solve.Mode) error {
	parsed, err := solve.ParseMode(string(mode))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if parsed == s.mode {
		return nil
	}
	s.mode = parsed
	s.softResetLocked()
	s.reloadHistoryLocked()
	return nil
}

// SetNoRegrips toggles the fixed-tile constraint, resetting the session.
func (s *Session) SetNoRegrips(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on == s.noRegrips {
		return
	}
	s.noRegrips = on
	s.softResetLocked()
	s.engine.SetConstraint(on)
	s.reloadHistoryLocked()
}

func (s *Session) softResetLocked() {
	s.clk.Reset()
	s.log.Reset()
	s.scramble = nil
	s.memoMS = 0
	s.inspectTotal = 0
	s.phase = PhaseIdle
	s.engine.SetVisibility(true)
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Dimensions() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols, s.rows
}

func (s *Session) Mode() solve.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) NoRegrips() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noRegrips
}

// EventKey identifies the current puzzle configuration.
func (s *Session) EventKey() solve.EventKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventKeyLocked()
}

// MoveCount returns the total number of logged unit moves, including any
// undone branch still behind the cursor.
func (s *Session) MoveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Len()
}

// Cursor returns how many log entries are currently undone.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Cursor()
}

// MemoTime returns the memorization milliseconds of the running or just
// finished blind attempt, zero otherwise.
func (s *Session) MemoTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoMS
}

func (s *Session) eventKeyLocked() solve.EventKey {
	return solve.NewEventKey(s.cols, s.rows, s.mode, s.noRegrips)
}
