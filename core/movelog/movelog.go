// Package movelog implements the session's append-only move log with an
// undo cursor. The cursor counts entries walked back from the tail; zero
// means the log tip is live.
package movelog

import "github.com/OnslaughtSnail/loopover/core/puzzle"

// Direction selects which way Step walks the log.
type Direction int

const (
	Undo Direction = iota
	Redo
)

// Log holds unit moves in play order. Appending while the cursor is off the
// tail abandons the undone branch first.
type Log struct {
	moves  []puzzle.Move
	cursor int
}

func New() *Log {
	return &Log{}
}

// Append records a player move. A move with |N| > 1 expands into |N| unit
// entries sharing the sign and timestamp of the source move, so undo, redo
// and replay always operate at unit granularity. If the cursor sits above
// zero the trailing cursor-many entries are discarded before appending.
func (l *Log) Append(mv puzzle.Move) {
	if mv.N == 0 {
		return
	}
	if l.cursor > 0 {
		l.moves = l.moves[:len(l.moves)-l.cursor]
		l.cursor = 0
	}
	unit := mv
	count := mv.N
	if count < 0 {
		count = -count
		unit.N = -1
	} else {
		unit.N = 1
	}
	for i := 0; i < count; i++ {
		l.moves = append(l.moves, unit)
	}
}

// Step returns the board mutation for one undo or redo step and shifts the
// cursor. Undo yields the inverse of the entry behind the cursor; redo
// yields the entry ahead of it unchanged. Out-of-bounds steps report ok ==
// false and change nothing.
func (l *Log) Step(dir Direction) (puzzle.Move, bool) {
	switch dir {
	case Undo:
		idx := len(l.moves) - l.cursor - 1
		if idx < 0 {
			return puzzle.Move{}, false
		}
		l.cursor++
		return l.moves[idx].Inverse(), true
	case Redo:
		if l.cursor == 0 {
			return puzzle.Move{}, false
		}
		idx := len(l.moves) - l.cursor
		l.cursor--
		return l.moves[idx], true
	}
	return puzzle.Move{}, false
}

// PeekRedo returns the entry the next redo would replay, without moving the
// cursor.
func (l *Log) PeekRedo() (puzzle.Move, bool) {
	if l.cursor == 0 {
		return puzzle.Move{}, false
	}
	return l.moves[len(l.moves)-l.cursor], true
}

func (l *Log) Len() int {
	return len(l.moves)
}

func (l *Log) Cursor() int {
	return l.cursor
}

// Moves returns a copy of the log contents in play order.
func (l *Log) Moves() []puzzle.Move {
	out := make([]puzzle.Move, len(l.moves))
	copy(out, l.moves)
	return out
}

// Load replaces the log contents with a recorded move sequence and parks the
// cursor at the start, ready for forward replay.
func (l *Log) Load(moves []puzzle.Move) {
	l.moves = make([]puzzle.Move, len(moves))
	copy(l.moves, moves)
	l.cursor = len(l.moves)
}

// Reset clears the log and cursor.
func (l *Log) Reset() {
	l.moves = l.moves[:0]
	l.cursor = 0
}
