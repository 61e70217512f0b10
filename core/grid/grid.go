// Package grid implements the loopover board: a cols x rows torus of
// numbered tiles where a move cyclically shifts one row or one column.
// Solved is the identity arrangement, tile i at cell i in row-major order.
package grid

import (
	"fmt"
	"math/rand/v2"

	"github.com/OnslaughtSnail/loopover/core/puzzle"
)

const (
	defaultCols = 3
	defaultRows = 3
	minSize     = 2
)

// Config configures Grid.
type Config struct {
	// Cols and Rows default to 3 when zero; either below 2 is rejected.
	Cols int
	Rows int
	// NoRegrips pins the anchor tile (highest value) in place: moves that
	// would displace it are rejected.
	NoRegrips bool
}

// Grid is the live board. It implements puzzle.Engine; player input enters
// through PlayerMove so the move handler can tell origins apart.
type Grid struct {
	cols      int
	rows      int
	tiles     []int
	visible   bool
	noRegrips bool
	onMove    puzzle.MoveHandler
}

func New(cfg Config) (*Grid, error) {
	cols := cfg.Cols
	rows := cfg.Rows
	if cols == 0 {
		cols = defaultCols
	}
	if rows == 0 {
		rows = defaultRows
	}
	if cols < minSize || rows < minSize {
		return nil, fmt.Errorf("grid: dimensions must be at least %dx%d, got %dx%d", minSize, minSize, cols, rows)
	}
	g := &Grid{
		cols:      cols,
		rows:      rows,
		visible:   true,
		noRegrips: cfg.NoRegrips,
	}
	g.reset()
	return g, nil
}

func (g *Grid) reset() {
	g.tiles = make([]int, g.cols*g.rows)
	for i := range g.tiles {
		g.tiles[i] = i
	}
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

// Tile returns the value at a cell. Out-of-range coordinates wrap, matching
// the torus topology.
func (g *Grid) Tile(col, row int) int {
	return g.tiles[wrap(row, g.rows)*g.cols+wrap(col, g.cols)]
}

// Visible reports whether the board contents may be rendered. Blind mode
// turns this off between memorization and reveal.
func (g *Grid) Visible() bool { return g.visible }

// NoRegrips reports whether the anchor constraint is active.
func (g *Grid) NoRegrips() bool { return g.noRegrips }

// SetOnMove registers the move handler invoked for every applied move.
func (g *Grid) SetOnMove(fn puzzle.MoveHandler) {
	g.onMove = fn
}

// SetDimensions reconfigures the board size and rebuilds it solved. Values
// below the minimum are clamped; unchanged dimensions leave the board alone.
func (g *Grid) SetDimensions(cols, rows int) {
	if cols < minSize {
		cols = minSize
	}
	if rows < minSize {
		rows = minSize
	}
	if cols == g.cols && rows == g.rows {
		return
	}
	g.cols = cols
	g.rows = rows
	g.reset()
}

func (g *Grid) SetVisibility(visible bool) {
	g.visible = visible
}

func (g *Grid) SetConstraint(noRegrips bool) {
	g.noRegrips = noRegrips
}

// IsSolved reports whether every tile sits at its home cell.
func (g *Grid) IsSolved() bool {
	for i, v := range g.tiles {
		if v != i {
			return false
		}
	}
	return true
}

// ApplyMove shifts the board in place and reports the move to the handler
// as programmatic. Moves blocked by the anchor constraint do nothing.
func (g *Grid) ApplyMove(axis, index, n int) {
	g.apply(axis, index, n, false)
}

// PlayerMove applies a move originating from player input and reports it
// with the player flag set. It returns false when the move was rejected.
func (g *Grid) PlayerMove(axis, index, n int) bool {
	return g.apply(axis, index, n, true)
}

func (g *Grid) apply(axis, index, n int, player bool) bool {
	if n == 0 {
		return false
	}
	switch axis {
	case puzzle.AxisRow:
		index = wrap(index, g.rows)
	case puzzle.AxisCol:
		index = wrap(index, g.cols)
	default:
		return false
	}
	if g.noRegrips && g.displacesAnchor(axis, index) {
		return false
	}
	if axis == puzzle.AxisRow {
		g.shiftRow(index, n)
	} else {
		g.shiftCol(index, n)
	}
	if g.onMove != nil {
		g.onMove(puzzle.Move{Axis: axis, Index: index, N: n}, player)
	}
	return true
}

// anchor is the tile pinned by the no-regrips constraint.
func (g *Grid) anchor() int {
	return g.cols*g.rows - 1
}

func (g *Grid) displacesAnchor(axis, index int) bool {
	pos := 0
	anchor := g.anchor()
	for i, v := range g.tiles {
		if v == anchor {
			pos = i
			break
		}
	}
	row := pos / g.cols
	col := pos % g.cols
	if axis == puzzle.AxisRow {
		return row == index
	}
	return col == index
}

func (g *Grid) shiftRow(row, n int) {
	cols := g.cols
	shift := wrap(n, cols)
	if shift == 0 {
		return
	}
	tmp := make([]int, cols)
	base := row * cols
	for c := 0; c < cols; c++ {
		tmp[(c+shift)%cols] = g.tiles[base+c]
	}
	copy(g.tiles[base:base+cols], tmp)
}

func (g *Grid) shiftCol(col, n int) {
	rows := g.rows
	shift := wrap(n, rows)
	if shift == 0 {
		return
	}
	tmp := make([]int, rows)
	for r := 0; r < rows; r++ {
		tmp[(r+shift)%rows] = g.tiles[r*g.cols+col]
	}
	for r := 0; r < rows; r++ {
		g.tiles[r*g.cols+col] = tmp[r]
	}
}

// Scramble regenerates the board: it rebuilds the solved arrangement and
// applies random unit moves, honoring the anchor constraint. The result is
// guaranteed non-solved.
func (g *Grid) Scramble() {
	g.reset()
	steps := g.cols * g.rows * 10
	for i := 0; i < steps; i++ {
		g.randomMove()
	}
	for g.IsSolved() {
		g.randomMove()
	}
}

func (g *Grid) randomMove() {
	for {
		axis := rand.IntN(2)
		n := 1
		if rand.IntN(2) == 0 {
			n = -1
		}
		index := 0
		if axis == puzzle.AxisRow {
			index = rand.IntN(g.rows)
		} else {
			index = rand.IntN(g.cols)
		}
		if g.apply(axis, index, n, false) {
			return
		}
	}
}

// Clone snapshots the current board.
func (g *Grid) Clone() puzzle.Board {
	tiles := make([]int, len(g.tiles))
	copy(tiles, g.tiles)
	return &Board{cols: g.cols, rows: g.rows, tiles: tiles}
}

// Restore replaces the live board with a snapshot, adopting its dimensions.
func (g *Grid) Restore(b puzzle.Board) error {
	snap, ok := b.(*Board)
	if !ok {
		return fmt.Errorf("grid: cannot restore board of type %T", b)
	}
	if len(snap.tiles) != snap.cols*snap.rows || snap.cols < minSize || snap.rows < minSize {
		return fmt.Errorf("grid: malformed board snapshot %dx%d/%d", snap.cols, snap.rows, len(snap.tiles))
	}
	g.cols = snap.cols
	g.rows = snap.rows
	g.tiles = make([]int, len(snap.tiles))
	copy(g.tiles, snap.tiles)
	return nil
}

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}
