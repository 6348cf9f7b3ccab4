package game

import (
	"errors"
	"fmt"
	"strings"
)

// PlayerMark represents the content of a cell: a player's mark (X, O), an empty cell or a blocked cell.
type PlayerMark string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Block is a cell that is permanently unavailable to both players.
	Block PlayerMark = "#"
)

var (
	ErrInvalidSize        = errors.New("board size must be positive")
	ErrInvalidWinLength   = errors.New("win length must be between 1 and the board size")
	ErrBlockCountMismatch = errors.New("number of blocks does not correspond to list of block coordinates")
	ErrBlockOutOfRange    = errors.New("block coordinate outside the board")
	ErrDuplicateBlock     = errors.New("block coordinate listed twice")
	ErrIllegalMove        = errors.New("illegal move")
	ErrInvalidMark        = errors.New("invalid player mark")
)

// Coord is a (row, col) position on the board.
type Coord struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d)", c.Row, c.Col)
}

// Settings describe the shape of a board. BlockCount must match len(Blocks).
type Settings struct {
	Size       int     `json:"size"`
	WinLength  int     `json:"win_length"`
	BlockCount int     `json:"block_count"`
	Blocks     []Coord `json:"blocks,omitempty"`
}

// directions probed by TerminalState and the window counters, in scan order.
var directions = [4]Coord{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// Directions returns the four line directions in the fixed order used by every scan.
func Directions() [4]Coord {
	return directions
}

// Board is an n×n grid where k marks in a row win. Cells are stored row-major.
type Board struct {
	size      int
	winLength int
	cells     []PlayerMark
	blocks    []Coord
}

// NewBoard validates the settings and returns an empty board with its blocks applied.
func NewBoard(s Settings) (*Board, error) {
	if s.Size <= 0 {
		return nil, ErrInvalidSize
	}
	if s.WinLength < 1 || s.WinLength > s.Size {
		return nil, fmt.Errorf("%w: got %d for size %d", ErrInvalidWinLength, s.WinLength, s.Size)
	}
	if s.BlockCount != len(s.Blocks) {
		return nil, fmt.Errorf("%w: %d blocks, %d coordinates", ErrBlockCountMismatch, s.BlockCount, len(s.Blocks))
	}

	seen := make(map[Coord]bool, len(s.Blocks))
	for _, c := range s.Blocks {
		if c.Row < 0 || c.Row >= s.Size || c.Col < 0 || c.Col >= s.Size {
			return nil, fmt.Errorf("%w: %s", ErrBlockOutOfRange, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBlock, c)
		}
		seen[c] = true
	}

	b := &Board{
		size:      s.Size,
		winLength: s.WinLength,
		cells:     make([]PlayerMark, s.Size*s.Size),
		blocks:    append([]Coord(nil), s.Blocks...),
	}
	b.Reset()
	return b, nil
}

// Reset clears every mark and re-applies the blocks.
func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = None
	}
	for _, c := range b.blocks {
		b.cells[b.index(c.Row, c.Col)] = Block
	}
}

func (b *Board) Size() int      { return b.size }
func (b *Board) WinLength() int { return b.winLength }

// Blocks returns a copy of the blocked coordinates.
func (b *Board) Blocks() []Coord {
	return append([]Coord(nil), b.blocks...)
}

func (b *Board) index(row, col int) int {
	return row*b.size + col
}

// ValidCoord reports whether (row, col) lies inside the board.
func (b *Board) ValidCoord(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// At returns the content of a cell. The coordinate must be valid.
func (b *Board) At(row, col int) PlayerMark {
	return b.cells[b.index(row, col)]
}

// IsLegalMove reports whether (row, col) is on the board and empty.
func (b *Board) IsLegalMove(row, col int) bool {
	return b.ValidCoord(row, col) && b.cells[b.index(row, col)] == None
}

// Place puts mark on (row, col). Callers must have checked IsLegalMove.
func (b *Board) Place(row, col int, mark PlayerMark) {
	b.cells[b.index(row, col)] = mark
}

// Clear empties (row, col). It only undoes speculative placements made by the search.
func (b *Board) Clear(row, col int) {
	b.cells[b.index(row, col)] = None
}

// Play validates and commits a move for mark.
func (b *Board) Play(row, col int, mark PlayerMark) error {
	if mark != PlayerX && mark != PlayerO {
		return fmt.Errorf("%w: %q", ErrInvalidMark, mark)
	}
	if !b.IsLegalMove(row, col) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, Coord{row, col})
	}
	b.Place(row, col, mark)
	return nil
}

// EmptyCells lists the empty cells in row-major order.
func (b *Board) EmptyCells() []Coord {
	var empty []Coord
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			if b.cells[b.index(r, c)] == None {
				empty = append(empty, Coord{r, c})
			}
		}
	}
	return empty
}

// IsFull reports whether no empty cell remains.
func (b *Board) IsFull() bool {
	for _, cell := range b.cells {
		if cell == None {
			return false
		}
	}
	return true
}

// Count returns how many cells hold mark.
func (b *Board) Count(mark PlayerMark) int {
	n := 0
	for _, cell := range b.cells {
		if cell == mark {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	return &Board{
		size:      b.size,
		winLength: b.winLength,
		cells:     append([]PlayerMark(nil), b.cells...),
		blocks:    append([]Coord(nil), b.blocks...),
	}
}

// Rows converts the board to a slice of rows, suitable for JSON snapshots.
func (b *Board) Rows() [][]PlayerMark {
	rows := make([][]PlayerMark, b.size)
	for r := range rows {
		rows[r] = append([]PlayerMark(nil), b.cells[b.index(r, 0):b.index(r, 0)+b.size]...)
	}
	return rows
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			cell := b.cells[b.index(r, c)]
			if cell == None {
				sb.WriteByte('.')
			} else {
				sb.WriteString(string(cell))
			}
			if c < b.size-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
