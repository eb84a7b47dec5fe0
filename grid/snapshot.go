package grid

import "strings"

// Snapshot is an immutable copy of the visible view, published by the
// goroutine that owns the Grid and safe to read from anywhere. When the
// view is scrolled back into history the cursor is off-screen and
// CursorVisible is false.
type Snapshot struct {
	Seq        uint64
	Rows, Cols int
	Cells      [][]Cell

	CursorRow     int
	CursorCol     int
	CursorVisible bool

	ScrollOffset  int
	ScrollbackLen int

	Bells uint64
}

// Snapshot copies the visible view. Each call returns fresh backing
// storage, so later mutation of the grid never shows through.
func (g *Grid) Snapshot() *Snapshot {
	g.seq++

	cells := make([][]Cell, g.rows)
	for row := 0; row < g.rows; row++ {
		line := make([]Cell, g.cols)
		for col := 0; col < g.cols; col++ {
			line[col] = g.displayCell(col, row)
		}
		cells[row] = line
	}

	return &Snapshot{
		Seq:           g.seq,
		Rows:          g.rows,
		Cols:          g.cols,
		Cells:         cells,
		CursorRow:     g.cursorRow,
		CursorCol:     g.cursorCol,
		CursorVisible: g.scrollOffset == 0,
		ScrollOffset:  g.scrollOffset,
		ScrollbackLen: len(g.scrollback),
		Bells:         g.bells,
	}
}

// Text renders the snapshot as plain text, one line per row with
// trailing blanks stripped.
func (s *Snapshot) Text() string {
	var b strings.Builder
	for row := 0; row < s.Rows; row++ {
		line := make([]rune, s.Cols)
		for col := 0; col < s.Cols; col++ {
			line[col] = s.Cells[row][col].Char
		}
		b.WriteString(strings.TrimRight(string(line), " "))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// DiffRows returns the indexes of rows whose content differs from prev,
// in order. A nil prev, or one with different geometry or scroll
// position, reports every row.
func (s *Snapshot) DiffRows(prev *Snapshot) []int {
	if prev == nil || prev.Rows != s.Rows || prev.Cols != s.Cols || prev.ScrollOffset != s.ScrollOffset {
		all := make([]int, s.Rows)
		for i := range all {
			all[i] = i
		}
		return all
	}

	var changed []int
	for row := range s.Cells {
		if !rowsEqual(s.Cells[row], prev.Cells[row]) {
			changed = append(changed, row)
		}
	}
	return changed
}

func rowsEqual(a, b []Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
