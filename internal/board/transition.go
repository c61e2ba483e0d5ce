package board

import (
	"errors"
	"fmt"
	"sort"
)

// Configuration errors returned by NewTable.
var (
	ErrInvalidSize     = errors.New("invalid board size")
	ErrOutOfBounds     = errors.New("cell outside the board")
	ErrSelfLoop        = errors.New("source equals destination")
	ErrWrongDirection  = errors.New("transition goes the wrong way")
	ErrDuplicateSource = errors.New("cell is already the source of a transition")
)

// Kind distinguishes ladders from snakes.
type Kind int

const (
	Shortcut Kind = iota // ladder, destination above source
	Setback              // snake, destination below source
)

// String returns the board name of the transition kind.
func (k Kind) String() string {
	if k == Setback {
		return "snake"
	}
	return "ladder"
}

// Transition moves a token that comes to rest on From to To.
type Transition struct {
	From int
	To   int
}

// Kind reports whether the transition climbs or slides.
func (t Transition) Kind() Kind {
	if t.To < t.From {
		return Setback
	}
	return Shortcut
}

// String formats the transition as "ladder 4→14" or "snake 16→6".
func (t Transition) String() string {
	return fmt.Sprintf("%s %d→%d", t.Kind(), t.From, t.To)
}

// Table is an immutable set of transitions keyed by source cell.
type Table struct {
	size    int
	bySrc   map[int]Transition
	byDst   map[int][]Transition
	ordered []Transition
}

// NewTable validates the shortcuts and setbacks for a board of the given size.
// It fails on the first problem found: a bad size, an endpoint off the board,
// a transition onto itself, a shortcut that does not climb or a setback that
// does not slide, or a cell used as a source twice.
func NewTable(size int, shortcuts, setbacks []Transition) (*Table, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("board: size %d not in [%d, %d]: %w", size, MinSize, MaxSize, ErrInvalidSize)
	}

	t := &Table{
		size:  size,
		bySrc: make(map[int]Transition, len(shortcuts)+len(setbacks)),
		byDst: make(map[int][]Transition),
	}

	if err := t.add(shortcuts, Shortcut); err != nil {
		return nil, err
	}
	if err := t.add(setbacks, Setback); err != nil {
		return nil, err
	}

	sort.Slice(t.ordered, func(i, j int) bool {
		return t.ordered[i].From < t.ordered[j].From
	})
	return t, nil
}

// MustTable is like NewTable but panics on invalid data.
// Intended for hardcoded layouts.
func MustTable(size int, shortcuts, setbacks []Transition) *Table {
	t, err := NewTable(size, shortcuts, setbacks)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) add(list []Transition, want Kind) error {
	final := FinalCell(t.size)

	for _, tr := range list {
		if tr.From == tr.To {
			return fmt.Errorf("board: %s at %d: %w", want, tr.From, ErrSelfLoop)
		}
		// The final cell ends the game, so it can never be a source.
		if tr.From < 1 || tr.From >= final || tr.To < 1 || tr.To > final {
			return fmt.Errorf("board: %s %d→%d on %d cells: %w", want, tr.From, tr.To, final, ErrOutOfBounds)
		}
		if tr.Kind() != want {
			return fmt.Errorf("board: %s %d→%d: %w", want, tr.From, tr.To, ErrWrongDirection)
		}
		if prev, ok := t.bySrc[tr.From]; ok {
			return fmt.Errorf("board: %d→%d conflicts with %s: %w", tr.From, tr.To, prev, ErrDuplicateSource)
		}

		t.bySrc[tr.From] = tr
		t.byDst[tr.To] = append(t.byDst[tr.To], tr)
		t.ordered = append(t.ordered, tr)
	}
	return nil
}

// Size returns the board dimension the table was validated against.
func (t *Table) Size() int {
	return t.size
}

// Len returns the number of transitions.
func (t *Table) Len() int {
	return len(t.ordered)
}

// Lookup returns the transition starting at position, if any.
func (t *Table) Lookup(position int) (Transition, bool) {
	tr, ok := t.bySrc[position]
	return tr, ok
}

// EndingAt returns the transitions whose destination is position.
func (t *Table) EndingAt(position int) []Transition {
	return append([]Transition(nil), t.byDst[position]...)
}

// All returns every transition ordered by source cell.
func (t *Table) All() []Transition {
	return append([]Transition(nil), t.ordered...)
}

// Shortcuts returns the ladders ordered by source cell.
func (t *Table) Shortcuts() []Transition {
	return t.filter(Shortcut)
}

// Setbacks returns the snakes ordered by source cell.
func (t *Table) Setbacks() []Transition {
	return t.filter(Setback)
}

func (t *Table) filter(k Kind) []Transition {
	var out []Transition
	for _, tr := range t.ordered {
		if tr.Kind() == k {
			out = append(out, tr)
		}
	}
	return out
}
