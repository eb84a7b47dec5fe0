package grid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/starlingterm/starling/parser"
)

// DefaultMaxScrollback bounds how many evicted rows are retained.
const DefaultMaxScrollback = 10000

// tabWidth is the fixed expansion of a Tab action.
const tabWidth = 4

// ErrBadDimensions is returned when a resize asks for a non-positive
// number of rows or columns.
var ErrBadDimensions = errors.New("rows and cols must be positive")

// Grid is the screen model: a rows×cols matrix of styled cells, a cursor,
// the attribute state applied to the next printed character, and a bounded
// scrollback of evicted rows.
//
// A Grid is not safe for concurrent use. Exactly one goroutine applies
// Actions and resizes; everyone else reads published Snapshots.
type Grid struct {
	cells []Cell
	rows  int
	cols  int

	cursorRow int
	cursorCol int

	st style

	// Armed by CarriageReturn, consumed by the next print. Shells redraw
	// prompts via CR plus rewrite; the stale tail is cleared lazily so a
	// bare CR never blanks the line.
	pendingEraseEOL bool

	savedCursorRow int
	savedCursorCol int

	scrollback    [][]Cell
	maxScrollback int
	scrollOffset  int

	bells uint64
	seq   uint64
}

// NewGrid creates a grid. Dimensions below 1 are raised to 1.
func NewGrid(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	cells := make([]Cell, rows*cols)
	for i := range cells {
		cells[i] = NewCell()
	}
	return &Grid{
		cells:         cells,
		rows:          rows,
		cols:          cols,
		st:            defaultStyle(),
		maxScrollback: DefaultMaxScrollback,
	}
}

// SetMaxScrollback changes the scrollback bound, discarding the oldest
// rows if the history already exceeds it. A bound below zero is treated
// as zero.
func (g *Grid) SetMaxScrollback(n int) {
	if n < 0 {
		n = 0
	}
	g.maxScrollback = n
	if len(g.scrollback) > n {
		g.scrollback = g.scrollback[len(g.scrollback)-n:]
	}
	if g.scrollOffset > len(g.scrollback) {
		g.scrollOffset = len(g.scrollback)
	}
}

// index returns the linear index for a cell position.
func (g *Grid) index(col, row int) int {
	return row*g.cols + col
}

// Size returns the grid dimensions.
func (g *Grid) Size() (rows, cols int) {
	return g.rows, g.cols
}

// Cursor returns the cursor position, 0-based.
func (g *Grid) Cursor() (row, col int) {
	return g.cursorRow, g.cursorCol
}

// CellAt returns the cell at a 0-based position. Out-of-bounds positions
// read as empty cells.
func (g *Grid) CellAt(row, col int) Cell {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return NewCell()
	}
	return g.cells[g.index(col, row)]
}

// Bells returns how many bell actions have been applied.
func (g *Grid) Bells() uint64 {
	return g.bells
}

// ScrollbackLen returns how many evicted rows are retained.
func (g *Grid) ScrollbackLen() int {
	return len(g.scrollback)
}

// Apply executes one decoded Action against the buffer. Actions must be
// applied in the order the decoder produced them.
func (g *Grid) Apply(a parser.Action) {
	switch a.Type {
	case parser.ActionPrint:
		g.print(a.Char)
	case parser.ActionCarriageReturn:
		g.carriageReturn()
	case parser.ActionLineFeed:
		g.lineFeed()
	case parser.ActionBackspace:
		g.backspace()
	case parser.ActionTab:
		g.tab()
	case parser.ActionSetGraphicAttributes:
		g.st.apply(a.Params)
	case parser.ActionEraseInLine:
		g.eraseInLine(a.Mode)
	case parser.ActionEraseInDisplay:
		g.eraseInDisplay(a.Mode)
	case parser.ActionCursorPosition:
		g.setCursor(a.Row, a.Col)
	case parser.ActionCursorMove:
		g.moveCursor(a.Dir, a.Count)
	case parser.ActionSaveCursor:
		g.saveCursor()
	case parser.ActionRestoreCursor:
		g.restoreCursor()
	case parser.ActionBell:
		g.bells++
	case parser.ActionIgnored:
		// nothing to do
	}
}

// ApplyAll executes a batch of Actions in order.
func (g *Grid) ApplyAll(actions []parser.Action) {
	for _, a := range actions {
		g.Apply(a)
	}
}

// print overwrites the cell at the cursor and advances one column,
// clamped at the line width. The shell does its own wrap math from
// COLUMNS, so the grid never wraps. A wide rune takes a second cell as
// a blank continuation; at the last column it degrades to one cell.
func (g *Grid) print(ch rune) {
	w := RuneWidth(ch)
	if w == 0 {
		return
	}
	if g.pendingEraseEOL {
		g.clearLineRange(g.cursorCol, g.cols)
		g.pendingEraseEOL = false
	}
	g.setCell(ch)
	if w == 2 && g.cursorCol < g.cols-1 {
		g.cursorCol++
		g.setCell(' ')
	}
	if g.cursorCol < g.cols-1 {
		g.cursorCol++
	}
}

func (g *Grid) setCell(ch rune) {
	g.cells[g.index(g.cursorCol, g.cursorRow)] = Cell{
		Char: ch,
		Fg:   g.st.fg,
		Bg:   g.st.bg,
		Bold: g.st.bold,
	}
}

func (g *Grid) carriageReturn() {
	g.cursorCol = 0
	g.pendingEraseEOL = true
}

// lineFeed advances to the next row, evicting the top row into scrollback
// when the cursor is already on the bottom row. The column is left alone;
// that belongs to CarriageReturn.
func (g *Grid) lineFeed() {
	if g.cursorRow >= g.rows-1 {
		g.scrollUp()
		g.cursorRow = g.rows - 1
	} else {
		g.cursorRow++
	}
	// New output snaps the view back to live.
	g.scrollOffset = 0
}

// scrollUp evicts the top row into scrollback and shifts everything up.
func (g *Grid) scrollUp() {
	topRow := make([]Cell, g.cols)
	copy(topRow, g.cells[:g.cols])
	g.scrollback = append(g.scrollback, topRow)
	if len(g.scrollback) > g.maxScrollback {
		g.scrollback = g.scrollback[len(g.scrollback)-g.maxScrollback:]
	}

	copy(g.cells, g.cells[g.cols:])
	for i := (g.rows - 1) * g.cols; i < g.rows*g.cols; i++ {
		g.cells[i] = NewCell()
	}
}

func (g *Grid) backspace() {
	if g.cursorCol > 0 {
		g.cursorCol--
	}
}

// tab expands to a fixed run of spaces through the normal print path.
func (g *Grid) tab() {
	for i := 0; i < tabWidth; i++ {
		g.print(' ')
	}
}

// clearLineRange blanks columns [from, to) of the cursor's row.
func (g *Grid) clearLineRange(from, to int) {
	if from < 0 {
		from = 0
	}
	if to > g.cols {
		to = g.cols
	}
	for col := from; col < to; col++ {
		g.cells[g.index(col, g.cursorRow)] = NewCell()
	}
}

func (g *Grid) eraseInLine(mode int) {
	switch mode {
	case 0: // cursor to end of line
		g.clearLineRange(g.cursorCol, g.cols)
	case 1: // start of line to cursor, inclusive
		g.clearLineRange(0, g.cursorCol+1)
	case 2: // whole line
		g.clearLineRange(0, g.cols)
	}
}

func (g *Grid) eraseInDisplay(mode int) {
	switch mode {
	case 0: // cursor to end of screen
		g.clearLineRange(g.cursorCol, g.cols)
		for row := g.cursorRow + 1; row < g.rows; row++ {
			g.clearRow(row)
		}
	case 1: // start of screen to cursor, inclusive
		for row := 0; row < g.cursorRow; row++ {
			g.clearRow(row)
		}
		g.clearLineRange(0, g.cursorCol+1)
	case 2: // whole screen
		for row := 0; row < g.rows; row++ {
			g.clearRow(row)
		}
	}
}

func (g *Grid) clearRow(row int) {
	for col := 0; col < g.cols; col++ {
		g.cells[g.index(col, row)] = NewCell()
	}
}

// setCursor moves the cursor to a 1-based position, clamped into bounds.
func (g *Grid) setCursor(row, col int) {
	g.cursorRow = clamp(row-1, 0, g.rows-1)
	g.cursorCol = clamp(col-1, 0, g.cols-1)
}

// moveCursor moves the cursor relatively, clamped into bounds.
func (g *Grid) moveCursor(dir parser.Direction, n int) {
	switch dir {
	case parser.DirUp:
		g.cursorRow -= n
	case parser.DirDown:
		g.cursorRow += n
	case parser.DirRight:
		g.cursorCol += n
	case parser.DirLeft:
		g.cursorCol -= n
	}
	g.cursorRow = clamp(g.cursorRow, 0, g.rows-1)
	g.cursorCol = clamp(g.cursorCol, 0, g.cols-1)
}

func (g *Grid) saveCursor() {
	g.savedCursorRow = g.cursorRow
	g.savedCursorCol = g.cursorCol
}

func (g *Grid) restoreCursor() {
	g.cursorRow = clamp(g.savedCursorRow, 0, g.rows-1)
	g.cursorCol = clamp(g.savedCursorCol, 0, g.cols-1)
}

// Resize changes the grid dimensions. Lines that still fit are preserved;
// content beyond the new width is truncated, never re-wrapped. The cursor
// is clamped into the new bounds.
func (g *Grid) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadDimensions, rows, cols)
	}

	newCells := make([]Cell, rows*cols)
	for i := range newCells {
		newCells[i] = NewCell()
	}
	for row := 0; row < min(rows, g.rows); row++ {
		for col := 0; col < min(cols, g.cols); col++ {
			newCells[row*cols+col] = g.cells[g.index(col, row)]
		}
	}

	g.cells = newCells
	g.rows = rows
	g.cols = cols

	g.cursorRow = clamp(g.cursorRow, 0, rows-1)
	g.cursorCol = clamp(g.cursorCol, 0, cols-1)
	g.savedCursorRow = clamp(g.savedCursorRow, 0, rows-1)
	g.savedCursorCol = clamp(g.savedCursorCol, 0, cols-1)
	return nil
}

// ScrollViewUp moves the view n rows back into scrollback.
func (g *Grid) ScrollViewUp(n int) {
	g.scrollOffset += n
	if g.scrollOffset > len(g.scrollback) {
		g.scrollOffset = len(g.scrollback)
	}
}

// ScrollViewDown moves the view n rows toward the live screen.
func (g *Grid) ScrollViewDown(n int) {
	g.scrollOffset -= n
	if g.scrollOffset < 0 {
		g.scrollOffset = 0
	}
}

// ResetScrollView snaps the view back to the live screen.
func (g *Grid) ResetScrollView() {
	g.scrollOffset = 0
}

// ScrollOffset returns how many rows back into scrollback the view sits.
func (g *Grid) ScrollOffset() int {
	return g.scrollOffset
}

// displayCell resolves a view position to a cell, accounting for the
// scroll offset into scrollback.
func (g *Grid) displayCell(col, row int) Cell {
	if g.scrollOffset == 0 {
		return g.CellAt(row, col)
	}

	scrollbackRow := len(g.scrollback) - g.scrollOffset + row
	if scrollbackRow < 0 {
		return NewCell()
	}
	if scrollbackRow < len(g.scrollback) {
		if col < len(g.scrollback[scrollbackRow]) {
			return g.scrollback[scrollbackRow][col]
		}
		return NewCell()
	}
	return g.CellAt(scrollbackRow-len(g.scrollback), col)
}

// VisibleText returns the current view as plain text with trailing blanks
// trimmed, mostly for tests and logging.
func (g *Grid) VisibleText() string {
	lines := make([]string, g.rows)
	for row := 0; row < g.rows; row++ {
		var b strings.Builder
		b.Grow(g.cols)
		for col := 0; col < g.cols; col++ {
			ch := g.displayCell(col, row).Char
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
		}
		lines[row] = strings.TrimRight(b.String(), " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
