package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Get(x, y) != ' ' {
				t.Fatalf("New screen should be filled with spaces, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetGet(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetColored(5, 5, 'X', ColorRed)
	cell := s.GetCell(5, 5)
	if cell.Rune != 'X' || cell.Color != ColorRed {
		t.Errorf("GetCell(5, 5) = %+v, expected red 'X'", cell)
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'A')
	s.Set(100, 0, 'A')
	s.Set(0, -1, 'A')
	s.Set(0, 100, 'A')

	if s.Get(-1, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
	if s.GetCell(100, 0).Color != ColorDefault {
		t.Error("Out of bounds GetCell should return default color")
	}
}

func TestScreenClear(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawRect(NewRect(0, 0, 4, 3), '#')
	s.Clear()

	for y := 0; y < 3; y++ {
		if got := s.Row(y); got != "    " {
			t.Errorf("Row(%d) after Clear = %q", y, got)
		}
	}
}

func TestDrawTextMultibyte(t *testing.T) {
	s := NewScreen(10, 1)
	s.DrawTextColored(0, 0, "→14", ColorGreen)

	if s.Get(0, 0) != '→' || s.Get(1, 0) != '1' || s.Get(2, 0) != '4' {
		t.Errorf("multibyte text laid out wrong: %q", s.Row(0))
	}
	if s.GetCell(2, 0).Color != ColorGreen {
		t.Error("text color not applied")
	}
}

func TestDrawTextCentered(t *testing.T) {
	s := NewScreen(11, 1)
	s.DrawTextCentered(0, "abc", ColorDefault)

	if got := s.Row(0); got != "    abc    " {
		t.Errorf("DrawTextCentered row = %q", got)
	}
}

func TestDrawBox(t *testing.T) {
	s := NewScreen(4, 3)
	s.DrawBox(NewRect(0, 0, 4, 3), ColorGray)

	want := []string{
		"┌──┐",
		"│  │",
		"└──┘",
	}
	got := strings.Split(s.String(), "\n")
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(5, 5)
	s.Set(1, 1, 'X')
	s.Resize(8, 3)

	if s.Width() != 8 || s.Height() != 3 {
		t.Fatalf("Resize dims = %dx%d", s.Width(), s.Height())
	}
	if s.Get(1, 1) != ' ' {
		t.Error("Resize should clear content")
	}
}

func TestScreenBlit(t *testing.T) {
	src := NewScreen(3, 2)
	src.DrawTextColored(0, 0, "abc", ColorGreen)
	src.DrawText(0, 1, "def")

	dst := NewScreen(5, 3)
	dst.Blit(src, 1, 1)

	if got := dst.Row(1); got != " abc " {
		t.Errorf("Row(1) = %q, expected %q", got, " abc ")
	}
	if got := dst.Row(2); got != " def " {
		t.Errorf("Row(2) = %q, expected %q", got, " def ")
	}
	if c := dst.GetCell(1, 1); c.Color != ColorGreen {
		t.Errorf("color at (1,1) = %v, expected green", c.Color)
	}

	// Clipped at the edges
	dst.Clear()
	dst.Blit(src, 3, 2)
	if got := dst.Row(2); got != "   ab" {
		t.Errorf("clipped Row(2) = %q, expected %q", got, "   ab")
	}
}
