// Package board implements the Snakes and Ladders board: the boustrophedon
// numbering of cells and the table of shortcuts (ladders) and setbacks (snakes).
package board

import "github.com/vovakirdan/tui-ladders/internal/core"

// Board size limits. The classic board is 10x10.
const (
	ClassicSize = 10
	MinSize     = 4
	MaxSize     = 20
)

// FinalCell returns the winning cell number for a board of the given size.
func FinalCell(size int) int {
	return size * size
}

// ClampSize restricts a board size to [MinSize, MaxSize].
func ClampSize(size int) int {
	return core.Clamp(size, MinSize, MaxSize)
}

// ClampPosition restricts a position to [1, size*size].
func ClampPosition(size, position int) int {
	return core.Clamp(position, 1, FinalCell(size))
}

// CellToGrid maps a linear position to (row, col) grid coordinates.
// Row 0 is the top line of the board, col 0 the leftmost column.
// Position 1 is bottom-left; rows alternate direction going up, so the
// bottom row runs left-to-right, the next one right-to-left, and so on.
// Out-of-range sizes and positions are clamped first.
func CellToGrid(size, position int) (row, col int) {
	size = ClampSize(size)
	position = ClampPosition(size, position)

	fromBottom := core.CeilDiv(position, size) - 1
	offset := (position - 1) % size

	if fromBottom%2 == 0 {
		col = offset
	} else {
		col = size - 1 - offset
	}
	row = size - 1 - fromBottom
	return row, col
}

// GridToCell is the inverse of CellToGrid.
// Size, row and column are clamped to the board.
func GridToCell(size, row, col int) int {
	size = ClampSize(size)
	row = core.Clamp(row, 0, size-1)
	col = core.Clamp(col, 0, size-1)

	fromBottom := size - 1 - row
	offset := col
	if fromBottom%2 == 1 {
		offset = size - 1 - col
	}
	return fromBottom*size + offset + 1
}
