package eval

import (
	"ctchen222/line-em-up/internal/game"
	"fmt"
	"strings"
)

// Heuristic selects how a leaf position is scored.
type Heuristic int

const (
	// Material counts the searching side's own marks. It is fast and knowingly weak.
	Material Heuristic = iota
	// LinePotential counts open windows for each side and is terminal-aware.
	LinePotential
)

// MaterialWinBonus is added by Material when the own mark count equals the win length.
const MaterialWinBonus = 2

func (h Heuristic) String() string {
	switch h {
	case Material:
		return "material"
	case LinePotential:
		return "line_potential"
	default:
		return fmt.Sprintf("heuristic(%d)", int(h))
	}
}

func (h Heuristic) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Heuristic) UnmarshalText(text []byte) error {
	parsed, err := ParseHeuristic(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHeuristic accepts the config names ("material", "line_potential") and the
// short names ("e1", "e2").
func ParseHeuristic(s string) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "material", "e1":
		return Material, nil
	case "line_potential", "linepotential", "e2":
		return LinePotential, nil
	}
	return 0, fmt.Errorf("unknown heuristic %q", s)
}

// Evaluate scores b at the given search depth with heuristic h. own is the mark of the side that
// started the search; only Material looks at it.
func Evaluate(b *game.Board, h Heuristic, depth int, own game.PlayerMark) float64 {
	if h == Material {
		return MaterialScore(b, own)
	}
	return LinePotentialScore(b, depth)
}

// MaterialScore returns own's mark count plus MaterialWinBonus when that count equals the win length.
// The opponent's marks are never subtracted.
func MaterialScore(b *game.Board, own game.PlayerMark) float64 {
	count := b.Count(own)
	score := float64(count)
	if count == b.WinLength() {
		score += MaterialWinBonus
	}
	return score
}

// WinScore is the magnitude a decided position scores at depth 0. It is large enough that
// WinScore/(depth+1) exceeds the largest window count at every reachable depth.
func WinScore(b *game.Board) float64 {
	cells := b.Size() * b.Size()
	return float64(4*cells+1) * float64(cells+1)
}

// LinePotentialScore returns open windows for the maximizer minus open windows for the minimizer,
// or a depth-weighted extreme when the game is already decided.
func LinePotentialScore(b *game.Board, depth int) float64 {
	switch result := b.TerminalState(); result.Status {
	case game.Tie:
		return 0
	case game.Win:
		score := WinScore(b) / float64(depth+1)
		if game.RoleOf(result.Winner) == game.Minimizer {
			return -score
		}
		return score
	}

	maxOpen, minOpen := OpenWindows(b)
	return float64(maxOpen - minOpen)
}

// OpenWindows counts, for the maximizer and the minimizer, the WinLength windows that are fully
// inside the board, contain no block and no opposing mark.
func OpenWindows(b *game.Board) (maxOpen, minOpen int) {
	maxMark := game.MarkFor(game.Maximizer)
	minMark := game.MarkFor(game.Minimizer)
	size, k := b.Size(), b.WinLength()

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			for _, d := range game.Directions() {
				endRow, endCol := r+(k-1)*d.Row, c+(k-1)*d.Col
				if !b.ValidCoord(endRow, endCol) {
					continue
				}
				openMax, openMin := true, true
				for i := 0; i < k && (openMax || openMin); i++ {
					switch b.At(r+i*d.Row, c+i*d.Col) {
					case game.Block:
						openMax, openMin = false, false
					case maxMark:
						openMin = false
					case minMark:
						openMax = false
					}
				}
				if openMax {
					maxOpen++
				}
				if openMin {
					minOpen++
				}
			}
		}
	}
	return maxOpen, minOpen
}
