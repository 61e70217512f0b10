package grid

import (
	"encoding/json"
	"fmt"

	"github.com/OnslaughtSnail/loopover/core/puzzle"
)

// Board is a frozen snapshot of a grid, used for scramble records and
// replay. It encodes to JSON so solve records can be persisted.
type Board struct {
	cols  int
	rows  int
	tiles []int
}

func (b *Board) Cols() int { return b.cols }
func (b *Board) Rows() int { return b.rows }

// Tile returns the value at a cell, wrapping out-of-range coordinates.
func (b *Board) Tile(col, row int) int {
	return b.tiles[wrap(row, b.rows)*b.cols+wrap(col, b.cols)]
}

// Tiles returns a copy of the cells in row-major order.
func (b *Board) Tiles() []int {
	out := make([]int, len(b.tiles))
	copy(out, b.tiles)
	return out
}

func (b *Board) Clone() puzzle.Board {
	tiles := make([]int, len(b.tiles))
	copy(tiles, b.tiles)
	return &Board{cols: b.cols, rows: b.rows, tiles: tiles}
}

func (b *Board) Solved() bool {
	for i, v := range b.tiles {
		if v != i {
			return false
		}
	}
	return true
}

type boardDoc struct {
	Cols  int   `json:"cols"`
	Rows  int   `json:"rows"`
	Tiles []int `json:"tiles"`
}

func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardDoc{Cols: b.cols, Rows: b.rows, Tiles: b.tiles})
}

// DecodeBoard rebuilds a snapshot from its encoded form. It satisfies
// solve.BoardDecoder.
func DecodeBoard(data []byte) (puzzle.Board, error) {
	var doc boardDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("grid: decode board: %w", err)
	}
	if doc.Cols < minSize || doc.Rows < minSize || len(doc.Tiles) != doc.Cols*doc.Rows {
		return nil, fmt.Errorf("grid: malformed board document %dx%d/%d", doc.Cols, doc.Rows, len(doc.Tiles))
	}
	return &Board{cols: doc.Cols, rows: doc.Rows, tiles: doc.Tiles}, nil
}
