// Package grid implements the terminal screen buffer: a 2D cell array
// with scroll regions, scrollback, cursor/style state, and dirty-region
// tracking for incremental redraw. It is the "performer" the VT parser
// (package vtparser) mutates; Grid owns no I/O and never panics on
// out-of-range input — everything is clamped.
package grid

// DefaultMaxScrollback is the default bound on retained evicted rows.
const DefaultMaxScrollback = 10000

// Pos is a zero-indexed (column, row) coordinate, used as a dirty-set key.
type Pos struct {
	Col, Row int
}

// Grid is the terminal screen buffer. All methods assume the caller
// holds whatever external lock guards concurrent access (callers in
// this module compose Grid behind a mutex in package terminal); Grid
// itself does no locking.
type Grid struct {
	cols, rows int
	cells      []Cell // row-major, len == cols*rows

	cursorX, cursorY int
	currentStyle     Style
	savedX, savedY   int

	scrollTop, scrollBottom int

	scrollback    [][]Cell
	maxScrollback int
	scrollOffset  int

	dirtyCells map[Pos]struct{}
	allDirty   bool
}

// New constructs a Grid of the given size with the default scrollback
// bound. cols and rows are clamped to at least 1.
func New(cols, rows int) *Grid {
	return NewWithScrollback(cols, rows, DefaultMaxScrollback)
}

// NewWithScrollback is New with an explicit scrollback bound (0 disables
// scrollback retention entirely).
func NewWithScrollback(cols, rows, maxScrollback int) *Grid {
	cols = clampMin(cols, 1)
	rows = clampMin(rows, 1)
	g := &Grid{
		cols:          cols,
		rows:          rows,
		cells:         make([]Cell, cols*rows),
		currentStyle:  DefaultStyle,
		scrollBottom:  rows - 1,
		maxScrollback: clampMin(maxScrollback, 0),
		dirtyCells:    make(map[Pos]struct{}),
	}
	g.fillAll(blankCell())
	return g
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Cols and Rows report the live (non-scrollback) dimensions.
func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

// Cursor returns the current cursor position. X may equal Cols() to
// signal the pending-wrap state.
func (g *Grid) Cursor() (x, y int) { return g.cursorX, g.cursorY }

// CurrentStyle returns the style newly written cells will use.
func (g *Grid) CurrentStyle() Style { return g.currentStyle }

// SetCurrentStyle replaces the style newly written cells will use.
func (g *Grid) SetCurrentStyle(s Style) { g.currentStyle = s }

func (g *Grid) index(x, y int) int { return y*g.cols + x }

func (g *Grid) fillAll(c Cell) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

func (g *Grid) markDirty(x, y int) {
	if g.allDirty {
		return
	}
	g.dirtyCells[Pos{x, y}] = struct{}{}
}

func (g *Grid) markAllDirty() {
	g.allDirty = true
}

// ClearDirty resets the dirty set; after this, DirtyCells() returns
// empty and AllDirty() returns false.
func (g *Grid) ClearDirty() {
	g.dirtyCells = make(map[Pos]struct{})
	g.allDirty = false
}

// AllDirty reports whether a full redraw is pending.
func (g *Grid) AllDirty() bool { return g.allDirty }

// DirtyCells returns the set of individually-dirty coordinates. Callers
// should check AllDirty first: when true, this set need not be
// inspected (it may be stale or empty).
func (g *Grid) DirtyCells() []Pos {
	out := make([]Pos, 0, len(g.dirtyCells))
	for p := range g.dirtyCells {
		out = append(out, p)
	}
	return out
}

// clearPendingWrap clears the pending-wrap state (cursorX==cols). Any
// absolute cursor movement must call this.
func (g *Grid) clearPendingWrap() {
	if g.cursorX > g.cols-1 {
		g.cursorX = g.cols - 1
	}
}

// PutChar writes c at the cursor using the current style, advancing
// the cursor. If the cursor was in the pending-wrap state, the line
// wraps first.
func (g *Grid) PutChar(c rune) {
	if g.cursorX == g.cols {
		g.cursorX = 0
		g.cursorY++
		if g.cursorY > g.scrollBottom {
			g.ScrollUp(1)
			g.cursorY = g.scrollBottom
		}
	}
	g.setCell(g.cursorX, g.cursorY, Cell{Ch: c, Style: g.currentStyle})
	g.cursorX++
}

func (g *Grid) setCell(x, y int, c Cell) {
	if x < 0 || x >= g.cols || y < 0 || y >= g.rows {
		return
	}
	g.cells[g.index(x, y)] = c
	g.markDirty(x, y)
}

// Newline treats LF as CR+LF (the Unix convention): advance the row,
// scrolling the region if needed, and reset the column to 0.
func (g *Grid) Newline() {
	g.cursorY++
	if g.cursorY > g.scrollBottom {
		g.ScrollUp(1)
		g.cursorY = g.scrollBottom
	}
	g.cursorX = 0
}

// CarriageReturn moves the cursor to column 0.
func (g *Grid) CarriageReturn() {
	g.cursorX = 0
	g.clearPendingWrap()
}

// Backspace moves the cursor left one column; it does not wrap to the
// previous line.
func (g *Grid) Backspace() {
	if g.cursorX > 0 {
		g.cursorX--
	}
}

// Tab advances the cursor to the next multiple of 8, clamped to the
// last column.
func (g *Grid) Tab() {
	next := (g.cursorX/8 + 1) * 8
	if next > g.cols-1 {
		next = g.cols - 1
	}
	g.cursorX = next
}

// SetCursor moves the cursor to an absolute position, clamping both
// coordinates into range and clearing pending-wrap.
func (g *Grid) SetCursor(x, y int) {
	g.cursorX = clamp(x, 0, g.cols-1)
	g.cursorY = clamp(y, 0, g.rows-1)
}

// MoveCursor moves the cursor by a relative offset, clamped into range.
func (g *Grid) MoveCursor(dx, dy int) {
	g.SetCursor(g.cursorX+dx, g.cursorY+dy)
}

// ClearScreen fills the whole grid with the default cell and forces a
// full redraw.
func (g *Grid) ClearScreen() {
	g.fillAll(blankCell())
	g.markAllDirty()
}

// ClearLine fills the cursor's current row with the default cell.
func (g *Grid) ClearLine() {
	y := g.cursorY
	for x := 0; x < g.cols; x++ {
		g.cells[g.index(x, y)] = blankCell()
	}
	for x := 0; x < g.cols; x++ {
		g.markDirty(x, y)
	}
}

// ScrollUp scrolls the active scroll region up by n rows. When the
// region's top is row 0, evicted rows are appended to scrollback
// (oldest-first eviction once maxScrollback is exceeded). Always
// resets scrollOffset to 0 and forces a full redraw.
func (g *Grid) ScrollUp(n int) {
	for i := 0; i < n; i++ {
		if g.scrollTop == 0 {
			top := make([]Cell, g.cols)
			copy(top, g.cells[g.index(0, 0):g.index(0, 0)+g.cols])
			g.scrollback = append(g.scrollback, top)
			if g.maxScrollback >= 0 && len(g.scrollback) > g.maxScrollback {
				g.scrollback = g.scrollback[len(g.scrollback)-g.maxScrollback:]
			}
		}
		for y := g.scrollTop; y < g.scrollBottom; y++ {
			copy(g.cells[g.index(0, y):g.index(0, y)+g.cols], g.cells[g.index(0, y+1):g.index(0, y+1)+g.cols])
		}
		for x := 0; x < g.cols; x++ {
			g.cells[g.index(x, g.scrollBottom)] = blankCell()
		}
	}
	g.scrollOffset = 0
	g.markAllDirty()
}

// SetScrollRegion sets the DECSTBM top/bottom margins, clamped into a
// valid [0,rows-1] range with top<=bottom.
func (g *Grid) SetScrollRegion(top, bottom int) {
	top = clamp(top, 0, g.rows-1)
	bottom = clamp(bottom, 0, g.rows-1)
	if top > bottom {
		top, bottom = bottom, top
	}
	g.scrollTop = top
	g.scrollBottom = bottom
}

// SaveCursor stores the current cursor position (DECSC). Style-save is
// out of scope per spec.
func (g *Grid) SaveCursor() {
	g.savedX, g.savedY = g.cursorX, g.cursorY
}

// RestoreCursor restores the previously saved cursor position (DECRC).
func (g *Grid) RestoreCursor() {
	g.cursorX, g.cursorY = g.savedX, g.savedY
	g.clearPendingWrap()
}

// GetCell reads the cell at (x,y). When scrollOffset>0, the read is
// resolved against scrollback as if the viewport were scrolled back
// that many rows; positions beyond the available scrollback read as
// blank cells. Out-of-range coordinates also read as blank.
func (g *Grid) GetCell(x, y int) Cell {
	if x < 0 || x >= g.cols || y < 0 || y >= g.rows {
		return blankCell()
	}
	if g.scrollOffset == 0 {
		return g.cells[g.index(x, y)]
	}
	// The viewport is scrolled back by scrollOffset rows: row 0 of the
	// view now shows scrollback row (len-scrollOffset), and rows beyond
	// the scrollback length fall through to the live buffer or blank.
	virtualRow := y - g.scrollOffset
	if virtualRow < 0 {
		idx := len(g.scrollback) + virtualRow
		if idx < 0 || idx >= len(g.scrollback) {
			return blankCell()
		}
		return g.scrollback[idx][x]
	}
	if virtualRow >= g.rows {
		return blankCell()
	}
	return g.cells[g.index(x, virtualRow)]
}

// ScrollBackUp moves the viewport n rows further into scrollback,
// clamped to the available history.
func (g *Grid) ScrollBackUp(n int) {
	g.scrollOffset = clamp(g.scrollOffset+n, 0, len(g.scrollback))
	g.markAllDirty()
}

// ScrollBackDown moves the viewport n rows toward the live view,
// clamped at 0.
func (g *Grid) ScrollBackDown(n int) {
	g.scrollOffset = clamp(g.scrollOffset-n, 0, len(g.scrollback))
	g.markAllDirty()
}

// ScrollToBottom resets the viewport to the live view.
func (g *Grid) ScrollToBottom() {
	if g.scrollOffset != 0 {
		g.scrollOffset = 0
		g.markAllDirty()
	}
}

// ScrollOffset reports the current scrollback viewport offset.
func (g *Grid) ScrollOffset() int { return g.scrollOffset }

// ScrollbackLen reports how many rows are currently retained.
func (g *Grid) ScrollbackLen() int { return len(g.scrollback) }

// ScrollRegion reports the current DECSTBM region.
func (g *Grid) ScrollRegion() (top, bottom int) { return g.scrollTop, g.scrollBottom }

// Resize reallocates the grid to new dimensions, copying the
// intersection of old and new content, clamping the cursor into range,
// resetting the scroll region to the full new height, and forcing a
// full redraw. Reflow is not attempted.
func (g *Grid) Resize(newCols, newRows int) {
	newCols = clampMin(newCols, 1)
	newRows = clampMin(newRows, 1)
	newCells := make([]Cell, newCols*newRows)
	for i := range newCells {
		newCells[i] = blankCell()
	}
	copyCols := min(g.cols, newCols)
	copyRows := min(g.rows, newRows)
	for y := 0; y < copyRows; y++ {
		for x := 0; x < copyCols; x++ {
			newCells[y*newCols+x] = g.cells[g.index(x, y)]
		}
	}
	g.cells = newCells
	g.cols = newCols
	g.rows = newRows
	g.cursorX = clamp(g.cursorX, 0, newCols-1)
	g.cursorY = clamp(g.cursorY, 0, newRows-1)
	g.scrollTop = 0
	g.scrollBottom = newRows - 1
	g.markAllDirty()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
