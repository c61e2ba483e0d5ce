package ladders

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/tui-ladders/internal/board"
	"github.com/vovakirdan/tui-ladders/internal/core"
	"github.com/vovakirdan/tui-ladders/internal/engine"
)

// Board glyphs.
const (
	glyphLadder = '▲' // Cell with a ladder foot
	glyphSnake  = '▼' // Cell with a snake head
	glyphLand   = '•' // Cell where a snake or ladder ends
)

var dieFaces = []rune{'⚀', '⚁', '⚂', '⚃', '⚄', '⚅'}

// cellWidth is the number of columns one board cell takes: the cell number,
// a marker, one slot per player and a gap.
func cellWidth(final, players int) int {
	return len(strconv.Itoa(final)) + 1 + players + 1
}

func (g *Game) cellWidth() int {
	return cellWidth(g.eng.FinalCell(), len(g.tokens))
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	if dst.Width() != g.screenW || dst.Height() != g.screenH {
		g.resize(dst.Width(), dst.Height())
	}
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	size := g.eng.Table().Size()
	boardW := size*g.cellWidth() + 1
	boardX := (g.screenW - boardW - 2) / 2
	boardY := hudTop

	g.renderHeader(dst)
	dst.DrawBox(core.NewRect(boardX, boardY, boardW+2, size+2), core.ColorGray)
	drawBoard(dst, boardX+1, boardY+1, g.eng.Table(), g.tokens)
	g.renderFooter(dst, boardY+size+2)
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small", core.ColorYellow)

	w, h := g.MinSize()
	need := fmt.Sprintf("Need %dx%d", w, h)
	dst.DrawTextCentered(y+1, need, core.ColorGray)
}

// renderHeader draws the title and the turn counter.
func (g *Game) renderHeader(dst *core.Screen) {
	dst.DrawTextCentered(0, g.Title(), core.ColorBrightWhite)

	die := g.eng.DieValue()
	info := fmt.Sprintf("Turn %d   Die %c %d", g.eng.Turns()+1, dieFaces[die-1], die)
	if g.eng.Phase() == engine.GameOver {
		info = fmt.Sprintf("Finished after %d turns", g.eng.Turns())
	}
	dst.DrawTextCentered(1, info, core.ColorGray)
}

// drawBoard draws every cell of the grid with its top-left corner at (x0, y0).
// Screen rows run top to bottom, so the last cell is on the first line and
// cell 1 on the last.
func drawBoard(dst *core.Screen, x0, y0 int, table *board.Table, tokens []engine.Player) {
	size := table.Size()
	final := board.FinalCell(size)
	cw := cellWidth(final, len(tokens))
	digits := len(strconv.Itoa(final))

	for row := range size {
		for col := range size {
			pos := board.GridToCell(size, row, col)
			x := x0 + col*cw
			y := y0 + row

			dst.DrawTextColored(x, y, fmt.Sprintf("%*d", digits, pos), core.ColorGray)

			if r, c := marker(table, pos); r != 0 {
				dst.SetColored(x+digits, y, r, c)
			}

			for i, p := range tokens {
				if p.Position == pos {
					dst.SetColored(x+digits+1+i, y, rune('1'+i), p.Color)
				}
			}
		}
	}
}

// marker returns the glyph for a cell that starts or ends a transition.
func marker(table *board.Table, pos int) (rune, core.Color) {
	if tr, ok := table.Lookup(pos); ok {
		if tr.Kind() == board.Shortcut {
			return glyphLadder, core.ColorGreen
		}
		return glyphSnake, core.ColorRed
	}
	if ends := table.EndingAt(pos); len(ends) > 0 {
		if ends[0].Kind() == board.Shortcut {
			return glyphLand, core.ColorGreen
		}
		return glyphLand, core.ColorRed
	}
	return 0, core.ColorDefault
}

// RenderBoard draws a board with its tokens as plain text, one line per row.
// Used by the headless simulator and the board command.
func RenderBoard(table *board.Table, tokens []engine.Player) string {
	size := table.Size()
	w := size * cellWidth(board.FinalCell(size), len(tokens))
	scr := core.NewScreen(w, size)
	drawBoard(scr, 0, 0, table, tokens)

	lines := strings.Split(scr.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

// renderFooter draws the status message, the positions and the key hints.
func (g *Game) renderFooter(dst *core.Screen, y int) {
	cur := g.eng.Current()
	dst.DrawTextCentered(y, g.eng.Message(), cur.Color)

	parts := make([]string, 0, len(g.tokens))
	for _, p := range g.tokens {
		parts = append(parts, fmt.Sprintf("%d %s: %d", p.ID, p.Name, p.Position))
	}
	dst.DrawTextCentered(y+1, strings.Join(parts, "   "), core.ColorWhite)

	status, color := g.status()
	dst.DrawTextCentered(y+2, status, color)

	dst.DrawTextCentered(y+3, g.legend(), core.ColorGray)
}

func (g *Game) legend() string {
	return fmt.Sprintf("%c ladder   %c snake   %c lands here", glyphLadder, glyphSnake, glyphLand)
}

// status describes what input the game accepts right now.
func (g *Game) status() (string, core.Color) {
	switch {
	case g.eng.CanReset():
		return "Game over! SPACE or N for a new game", core.ColorBrightYellow
	case g.paused:
		return "PAUSED - P to resume", core.ColorYellow
	case g.eng.CanRoll():
		return fmt.Sprintf("%s: press SPACE to roll", g.eng.Current().Name), core.ColorBrightGreen
	default:
		return "Moving...", core.ColorGray
	}
}
