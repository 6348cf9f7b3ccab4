package cli

import (
	"context"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Printer reports a game on a writer, normally stdout teed into the trace file.
type Printer struct {
	w       io.Writer
	palette palette
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, palette: newPalette(w)}
}

// OpenTrace creates the trace file for cfg in dir and returns a printer writing to both w and the file.
// The caller closes the file.
func OpenTrace(w io.Writer, dir string, cfg match.Config) (*Printer, *os.File, error) {
	f, err := os.Create(filepath.Join(dir, match.TraceFileName(cfg)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	return NewPrinter(io.MultiWriter(w, f)), f, nil
}

func (p *Printer) GameStarted(ctx context.Context, cfg match.Config, b *game.Board) {
	p.write(ctx, func(w io.Writer) error {
		if err := match.WriteConfig(w, cfg); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\n%s\n", p.palette.renderBoard(b))
		return err
	})
}

func (p *Printer) MovePlayed(ctx context.Context, m match.MoveStats, b *game.Board) {
	p.write(ctx, func(w io.Writer) error {
		control := "AI"
		if m.Kind == match.Human {
			control = "a human"
		}
		if _, err := fmt.Fprintf(w, "Move #%d: player %s under %s control plays %s\n\n", m.Number, m.Mark, control, m.Move); err != nil {
			return err
		}
		if m.Recommended != nil && *m.Recommended != m.Move {
			fmt.Fprintf(w, "Recommended move was %s\n", *m.Recommended)
		}
		if err := match.WriteMove(w, m); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\n%s\n", p.palette.renderBoard(b))
		return err
	})
}

func (p *Printer) GameConcluded(ctx context.Context, stats match.GameStatistics, b *game.Board) {
	p.write(ctx, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "%s\n\n", p.palette.renderResult(stats.Result)); err != nil {
			return err
		}
		return match.WriteGame(w, stats)
	})
}

func (p *Printer) write(ctx context.Context, fn func(io.Writer) error) {
	if err := fn(p.w); err != nil {
		slog.WarnContext(ctx, "Failed to print game progress", "error", err)
	}
}
