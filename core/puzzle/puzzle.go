// Package puzzle defines the contracts between the solving session and a
// concrete puzzle implementation.
package puzzle

// Move axes. A row move shifts tiles horizontally, a column move vertically.
const (
	AxisRow = 0
	AxisCol = 1
)

// Move is one signed cyclic shift along an axis at one index. Log entries
// always carry N = +1 or -1; larger player input is expanded before logging.
// Time is milliseconds since the session timer started.
type Move struct {
	Axis  int   `json:"axis"`
	Index int   `json:"index"`
	N     int   `json:"n"`
	Time  int64 `json:"time"`
}

// Inverse returns the move that undoes m.
func (m Move) Inverse() Move {
	m.N = -m.N
	return m
}

// Board is an opaque board snapshot held by solve records.
type Board interface {
	Clone() Board
	Solved() bool
}

// MoveHandler observes every move the engine applies. The player flag marks
// moves originating from player input as opposed to programmatic ones
// (scramble, undo/redo, replay).
type MoveHandler func(move Move, player bool)

// Engine is the puzzle collaborator owning the live board.
type Engine interface {
	// Scramble regenerates the board into a randomized non-solved state.
	Scramble()
	// ApplyMove shifts the board in place. Programmatic origin: the engine
	// reports it to the move handler with player == false.
	ApplyMove(axis, index, n int)
	IsSolved() bool
	// Clone snapshots the current board independently of later mutation.
	Clone() Board
	// Restore replaces the live board with a snapshot previously produced
	// by Clone, adopting its dimensions.
	Restore(Board) error
	SetDimensions(cols, rows int)
	SetVisibility(visible bool)
	SetConstraint(noRegrips bool)
	SetOnMove(MoveHandler)
}
