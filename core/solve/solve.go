// Package solve holds the immutable solve record and the event key grouping
// solves by puzzle configuration.
package solve

import (
	"fmt"
	"strings"
	"time"

	"github.com/OnslaughtSnail/loopover/core/puzzle"
)

// Mode names a solving discipline.
type Mode string

const (
	ModeNormal Mode = "normal"
	// ModeBlind hides the board after memorization; solved state is only
	// checked when the player declares the attempt done.
	ModeBlind Mode = "blind"
	// ModeMoves scores by move count rather than time.
	ModeMoves Mode = "moves"
)

// ParseMode converts user input to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNormal:
		return ModeNormal, nil
	case ModeBlind:
		return ModeBlind, nil
	case ModeMoves:
		return ModeMoves, nil
	}
	return "", fmt.Errorf("solve: unknown mode %q, expected normal|blind|moves", s)
}

// EventKey groups historical solves for lookup and display.
type EventKey string

// NewEventKey derives the key from dimensions, mode and constraint flags.
func NewEventKey(cols, rows int, mode Mode, noRegrips bool) EventKey {
	key := fmt.Sprintf("%dx%d", cols, rows)
	if mode != ModeNormal && mode != "" {
		key += "-" + string(mode)
	}
	if noRegrips {
		key += "-nr"
	}
	return EventKey(key)
}

// Config carries the inputs captured at finalize time.
type Config struct {
	// Time is the total elapsed milliseconds.
	Time int64
	// Moves is the unit-move sequence in play order.
	Moves []puzzle.Move
	// Scramble is the board snapshot taken right after scrambling.
	Scramble puzzle.Board
	// StartTime is the wall-clock instant the timer started.
	StartTime time.Time
	// MemoTime is the blind memorization duration in milliseconds; zero
	// means not applicable.
	MemoTime int64
	// DNF marks an attempt ended without a confirmed solved board.
	DNF bool
}

// Solve is an immutable record of one finished attempt. Construct it with
// New; accessors hand out copies so the record cannot change afterwards.
type Solve struct {
	time      int64
	moves     []puzzle.Move
	scramble  puzzle.Board
	startTime time.Time
	memoTime  int64
	dnf       bool
}

// New builds a Solve, copying the move list.
func New(cfg Config) Solve {
	moves := make([]puzzle.Move, len(cfg.Moves))
	copy(moves, cfg.Moves)
	return Solve{
		time:      cfg.Time,
		moves:     moves,
		scramble:  cfg.Scramble,
		startTime: cfg.StartTime,
		memoTime:  cfg.MemoTime,
		dnf:       cfg.DNF,
	}
}

// Time returns the total elapsed milliseconds.
func (s Solve) Time() int64 {
	return s.time
}

// Moves returns a copy of the recorded unit moves.
func (s Solve) Moves() []puzzle.Move {
	out := make([]puzzle.Move, len(s.moves))
	copy(out, s.moves)
	return out
}

// MoveCount returns the number of recorded unit moves.
func (s Solve) MoveCount() int {
	return len(s.moves)
}

// Scramble returns an independent copy of the scramble snapshot, or nil when
// the record carries none.
func (s Solve) Scramble() puzzle.Board {
	if s.scramble == nil {
		return nil
	}
	return s.scramble.Clone()
}

// StartTime returns the wall-clock start of the attempt.
func (s Solve) StartTime() time.Time {
	return s.startTime
}

// MemoTime returns the memorization milliseconds, zero outside blind mode.
func (s Solve) MemoTime() int64 {
	return s.memoTime
}

// DNF reports whether the attempt ended unsolved.
func (s Solve) DNF() bool {
	return s.dnf
}
