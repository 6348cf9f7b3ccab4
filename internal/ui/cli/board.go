// Package cli implements the console front end: a move source reading stdin and a reporter printing the
// board and search statistics.
package cli

import (
	"ctchen222/line-em-up/internal/game"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	x, o, block, empty, header lipgloss.Style
	banner                     lipgloss.Style
}

// newPalette builds styles for w. Writers that are not terminals get plain text.
func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		x:      r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		o:      r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		block:  r.NewStyle().Foreground(lipgloss.Color("8")),
		empty:  r.NewStyle().Faint(true),
		header: r.NewStyle().Foreground(lipgloss.Color("11")),
		banner: r.NewStyle().Bold(true).Padding(0, 2).Border(lipgloss.RoundedBorder()),
	}
}

func (p palette) cell(mark game.PlayerMark) string {
	switch mark {
	case game.PlayerX:
		return p.x.Render("X")
	case game.PlayerO:
		return p.o.Render("O")
	case game.Block:
		return p.block.Render("#")
	default:
		return p.empty.Render(".")
	}
}

// renderBoard draws the board with row and column indices.
func (p palette) renderBoard(b *game.Board) string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < b.Size(); c++ {
		sb.WriteString(p.header.Render(fmt.Sprintf("%-2d", c)))
	}
	sb.WriteByte('\n')
	for r := 0; r < b.Size(); r++ {
		sb.WriteString(p.header.Render(fmt.Sprintf("%2d ", r)))
		for c := 0; c < b.Size(); c++ {
			sb.WriteString(p.cell(b.At(r, c)))
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (p palette) renderResult(r game.Result) string {
	if r.Status == game.Win {
		return p.banner.Render(fmt.Sprintf("The winner is %s!", r.Winner))
	}
	return p.banner.Render("It's a tie!")
}
