package vtparser

import "titi/internal/grid"

// GridSink is the subset of *grid.Grid the parser drives. Declared as a
// concrete interface (rather than accepting *grid.Grid directly) so
// tests can substitute a recording fake.
type GridSink interface {
	PutChar(c rune)
	Newline()
	CarriageReturn()
	Backspace()
	Tab()
	MoveCursor(dx, dy int)
	SetCursor(x, y int)
	ClearScreen()
	ClearLine()
	SetScrollRegion(top, bottom int)
	SaveCursor()
	RestoreCursor()
	Rows() int
	CurrentStyle() grid.Style
	SetCurrentStyle(s grid.Style)
}

var _ GridSink = (*grid.Grid)(nil)
