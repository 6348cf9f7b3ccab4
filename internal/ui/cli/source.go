package cli

import (
	"bufio"
	"context"
	"ctchen222/line-em-up/internal/game"
	"ctchen222/line-em-up/internal/match"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"sync"

	"golang.org/x/term"
)

var coordParser = regexp.MustCompile(`^\s*(\d+)[\s,]+(\d+)\s*$`)

// StdinSource reads human moves as "row col" lines.
type StdinSource struct {
	out     io.Writer
	palette palette
	prompt  bool

	once  sync.Once
	in    io.Reader
	lines chan string
	err   error
}

// NewStdinSource reads from in and writes prompts to out. The board and prompts are only printed when in is
// a terminal; piped input is read silently.
func NewStdinSource(in io.Reader, out io.Writer) *StdinSource {
	prompt := false
	if f, ok := in.(*os.File); ok {
		prompt = term.IsTerminal(int(f.Fd()))
	}
	return &StdinSource{out: out, palette: newPalette(out), prompt: prompt, in: in}
}

// WithPrompts forces prompts on or off.
func (s *StdinSource) WithPrompts(on bool) *StdinSource {
	s.prompt = on
	return s
}

// NextMove prompts for and parses a move. Lines that are not a free cell are refused and read again.
func (s *StdinSource) NextMove(ctx context.Context, turn match.HumanTurn) (game.Coord, error) {
	s.once.Do(s.startReader)

	if s.prompt {
		fmt.Fprintf(s.out, "\n%s\n", s.palette.renderBoard(turn.Board))
		if turn.Rejected != nil {
			fmt.Fprintf(s.out, "    * %v\n", turn.Rejected)
		}
		if turn.Recommendation != nil {
			fmt.Fprintf(s.out, "    Recommended move: %d %d\n", turn.Recommendation.Row, turn.Recommendation.Col)
		}
	}

	for {
		if s.prompt {
			fmt.Fprintf(s.out, "Player %s, enter row and column > ", turn.Mark)
		}
		var line string
		select {
		case <-ctx.Done():
			return game.Coord{}, ctx.Err()
		case l, ok := <-s.lines:
			if !ok {
				return game.Coord{}, fmt.Errorf("reading move: %w", s.err)
			}
			line = l
		}

		c, err := parseCoord(line)
		if err == nil && !turn.Board.IsLegalMove(c.Row, c.Col) {
			err = fmt.Errorf("%s is not a free cell", c)
		}
		if err != nil {
			fmt.Fprintf(s.out, "    * %v, please try again.\n", err)
			continue
		}
		return c, nil
	}
}

// startReader feeds lines to NextMove so that a pending read does not block cancellation.
func (s *StdinSource) startReader() {
	s.lines = make(chan string)
	go func() {
		defer close(s.lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			s.lines <- scanner.Text()
		}
		s.err = scanner.Err()
		if s.err == nil {
			s.err = io.EOF
		}
	}()
}

func parseCoord(line string) (game.Coord, error) {
	m := coordParser.FindStringSubmatch(line)
	if m == nil {
		return game.Coord{}, fmt.Errorf("failed to parse %q as \"row col\"", line)
	}
	row, err := strconv.Atoi(m[1])
	if err != nil {
		return game.Coord{}, err
	}
	col, err := strconv.Atoi(m[2])
	if err != nil {
		return game.Coord{}, err
	}
	return game.Coord{Row: row, Col: col}, nil
}
