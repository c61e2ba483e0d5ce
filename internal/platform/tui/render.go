package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-ladders/internal/core"
)

// palette maps core.Color to ANSI 256-color codes.
var palette = map[core.Color]string{
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
}

// ScreenStyles holds one lipgloss style per screen color, bound to a renderer.
// SSH sessions get their own renderer so colors match the client terminal.
type ScreenStyles struct {
	r      *lipgloss.Renderer
	styles map[core.Color]lipgloss.Style
}

// NewScreenStyles builds the styles for a renderer.
// A nil renderer means the process's standard output.
func NewScreenStyles(r *lipgloss.Renderer) *ScreenStyles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	s := &ScreenStyles{
		r:      r,
		styles: make(map[core.Color]lipgloss.Style, len(palette)+1),
	}
	s.styles[core.ColorDefault] = r.NewStyle()
	for c, code := range palette {
		s.styles[c] = r.NewStyle().Foreground(lipgloss.Color(code))
	}
	// Tokens are drawn in the player colors; make them stand out from the numbers.
	for _, c := range []core.Color{core.ColorRed, core.ColorBlue, core.ColorGreen, core.ColorYellow} {
		s.styles[c] = s.styles[c].Bold(true)
	}
	return s
}

// Renderer returns the lipgloss renderer the styles belong to.
func (s *ScreenStyles) Renderer() *lipgloss.Renderer {
	return s.r
}

func (s *ScreenStyles) style(c core.Color) lipgloss.Style {
	if st, ok := s.styles[c]; ok {
		return st
	}
	return s.styles[core.ColorDefault]
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func (s *ScreenStyles) RenderScreen(scr *core.Screen) string {
	var sb strings.Builder
	sb.Grow(scr.Width()*scr.Height()*2 + scr.Height())

	for y := range scr.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < scr.Width() {
			color := scr.GetCell(x, y).Color

			var run strings.Builder
			for x < scr.Width() {
				cell := scr.GetCell(x, y)
				if cell.Color != color {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(s.style(color).Render(run.String()))
		}
	}
	return sb.String()
}
