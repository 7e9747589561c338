package render

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/robotalks/canpong/pkg/game"
	"github.com/robotalks/canpong/pkg/peer"
)

// Default character grid when the output isn't a terminal.
const (
	DefaultCols = 64
	DefaultRows = 16
)

// ASCII draws the court with characters, redrawing in place on terminals.
type ASCII struct {
	Out  io.Writer
	Game game.Config
	// Cols and Rows of the court, 0 fits the terminal.
	Cols int
	Rows int
	// Home moves the cursor to the top left before every frame.
	Home bool

	buf bytes.Buffer
}

// NewASCII creates an ASCII renderer.
func NewASCII(out io.Writer, conf game.Config) *ASCII {
	a := &ASCII{Out: out, Game: conf}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.Home = true
	}
	return a
}

// Render implements Renderer.
func (a *ASCII) Render(s peer.Snapshot) error {
	cols, rows := a.size()
	grid := make([][]byte, rows)
	for y := range grid {
		grid[y] = bytes.Repeat([]byte{' '}, cols)
	}
	c := &a.Game
	a.fill(grid, game.Rect{X: 0, Y: s.LeftPaddleY, W: c.PaddleWidth, H: c.PaddleHeight}, '|')
	a.fill(grid, game.Rect{X: c.Width - c.PaddleWidth, Y: s.RightPaddleY, W: c.PaddleWidth, H: c.PaddleHeight}, '|')
	x, y := s.State.BallPos()
	a.fill(grid, game.Rect{X: x, Y: y, W: c.BallSize, H: c.BallSize}, 'o')

	a.buf.Reset()
	if a.Home {
		a.buf.WriteString("\x1b[H\x1b[2J")
	}
	border := bytes.Repeat([]byte{'-'}, cols+2)
	a.buf.Write(border)
	a.buf.WriteString("\r\n")
	for _, line := range grid {
		a.buf.WriteByte('+')
		a.buf.Write(line)
		a.buf.WriteString("+\r\n")
	}
	a.buf.Write(border)
	a.buf.WriteString("\r\n")
	fmt.Fprintf(&a.buf, "tick %-6d role %-12s peer-master %-5v ball (%d,%d)\r\n",
		s.Tick, s.Role, s.PeerIsMaster, x, y)
	_, err := a.Out.Write(a.buf.Bytes())
	return err
}

func (a *ASCII) size() (int, int) {
	cols, rows := a.Cols, a.Rows
	if cols > 0 && rows > 0 {
		return cols, rows
	}
	cols, rows = DefaultCols, DefaultRows
	if f, ok := a.Out.(*os.File); ok {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil && w > 4 && h > 4 {
			// borders and the status line.
			cols, rows = w-2, h-3
		}
	}
	if cols > a.Game.Width {
		cols = a.Game.Width
	}
	if rows > a.Game.Height {
		rows = a.Game.Height
	}
	return cols, rows
}

// fill marks every cell covered by r, clipped to the court.
func (a *ASCII) fill(grid [][]byte, r game.Rect, c byte) {
	rows, cols := len(grid), len(grid[0])
	x0, x1 := a.cell(r.X, a.Game.Width, cols), a.cell(r.X+r.W-1, a.Game.Width, cols)
	y0, y1 := a.cell(r.Y, a.Game.Height, rows), a.cell(r.Y+r.H-1, a.Game.Height, rows)
	if r.X+r.W <= 0 || r.X >= a.Game.Width || r.Y+r.H <= 0 || r.Y >= a.Game.Height {
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			grid[y][x] = c
		}
	}
}

func (a *ASCII) cell(v, extent, cells int) int {
	n := v * cells / extent
	if n < 0 {
		return 0
	}
	if n >= cells {
		return cells - 1
	}
	return n
}
