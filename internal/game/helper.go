package game

import (
	"fmt"
	"math/rand/v2"
)

// Status is the state of a game as seen from the board.
type Status string

const (
	InProgress Status = "in_progress"
	Win        Status = "win"
	Tie        Status = "tie"
)

// Result is what TerminalState reports. Winner is set only when Status is Win.
type Result struct {
	Status Status     `json:"status"`
	Winner PlayerMark `json:"winner,omitempty"`
}

// Over reports whether the game has ended.
func (r Result) Over() bool {
	return r.Status != InProgress
}

// Role is the fixed part a player takes in the search for the whole game.
type Role int

const (
	Minimizer Role = iota
	Maximizer
)

func (r Role) String() string {
	if r == Maximizer {
		return "max"
	}
	return "min"
}

// RoleOf returns the role bound to a mark: X, the first player, always minimizes.
func RoleOf(mark PlayerMark) Role {
	if mark == PlayerO {
		return Maximizer
	}
	return Minimizer
}

// MarkFor is the inverse of RoleOf.
func MarkFor(role Role) PlayerMark {
	if role == Maximizer {
		return PlayerO
	}
	return PlayerX
}

// Opponent returns the other player's mark.
func Opponent(mark PlayerMark) PlayerMark {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// TerminalState scans the board for a winner and otherwise for a tie.
//
// Cells are visited row-major and each occupied cell probes the four directions in the order of
// Directions(); the first run of WinLength identical marks found decides the winner.
func (b *Board) TerminalState() Result {
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			mark := b.cells[b.index(r, c)]
			if mark == None || mark == Block {
				continue
			}
			for _, d := range directions {
				if b.runFrom(r, c, d, mark) == b.winLength {
					return Result{Status: Win, Winner: mark}
				}
			}
		}
	}

	if b.IsFull() {
		return Result{Status: Tie}
	}
	return Result{Status: InProgress}
}

// runFrom counts the cells equal to mark among the WinLength cells starting at (row, col) along d.
func (b *Board) runFrom(row, col int, d Coord, mark PlayerMark) int {
	streak := 0
	for k := 0; k < b.winLength; k++ {
		r, c := row+k*d.Row, col+k*d.Col
		if !b.ValidCoord(r, c) {
			break
		}
		if b.cells[b.index(r, c)] != mark {
			break
		}
		streak++
	}
	return streak
}

// FromRows builds a board from a compact picture where '.' is empty, '#' a block and 'X'/'O' marks.
// Every row must have as many characters as there are rows.
func FromRows(winLength int, rows ...string) (*Board, error) {
	var blocks []Coord
	for r, row := range rows {
		if len(row) != len(rows) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), len(rows))
		}
		for c, ch := range row {
			if ch == '#' {
				blocks = append(blocks, Coord{r, c})
			}
		}
	}

	b, err := NewBoard(Settings{Size: len(rows), WinLength: winLength, BlockCount: len(blocks), Blocks: blocks})
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		for c, ch := range row {
			switch ch {
			case 'X':
				b.Place(r, c, PlayerX)
			case 'O':
				b.Place(r, c, PlayerO)
			case '.', '#':
			default:
				return nil, fmt.Errorf("unknown cell %q at %s", ch, Coord{r, c})
			}
		}
	}
	return b, nil
}

// WithRandomBlocks fills in BlockCount distinct random block coordinates when none are listed.
func (s Settings) WithRandomBlocks(rng *rand.Rand) (Settings, error) {
	if len(s.Blocks) > 0 || s.BlockCount == 0 {
		return s, nil
	}
	if s.Size <= 0 {
		return s, ErrInvalidSize
	}
	if s.BlockCount < 0 || s.BlockCount > s.Size*s.Size {
		return s, fmt.Errorf("%w: cannot place %d blocks on %d cells", ErrBlockCountMismatch, s.BlockCount, s.Size*s.Size)
	}
	perm := rng.Perm(s.Size * s.Size)
	s.Blocks = make([]Coord, s.BlockCount)
	for i := range s.Blocks {
		s.Blocks[i] = Coord{perm[i] / s.Size, perm[i] % s.Size}
	}
	return s, nil
}
