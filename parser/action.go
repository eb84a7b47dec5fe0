package parser

import "fmt"

// ActionType identifies what a decoded Action instructs the screen buffer
// to do.
type ActionType int

const (
	ActionPrint ActionType = iota
	ActionCarriageReturn
	ActionLineFeed
	ActionBackspace
	ActionTab
	ActionSetGraphicAttributes
	ActionEraseInLine
	ActionEraseInDisplay
	ActionCursorPosition
	ActionCursorMove
	ActionSaveCursor
	ActionRestoreCursor
	ActionBell
	ActionIgnored
)

// Direction is the axis of a relative cursor movement.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirRight
	DirLeft
)

// Action is a single decoded instruction. The decoder emits Actions in the
// exact order their bytes arrived; the screen buffer applies them in that
// same order.
type Action struct {
	Type   ActionType
	Char   rune      // Print
	Params []int     // SetGraphicAttributes, raw SGR parameters
	Mode   int       // EraseInLine, EraseInDisplay
	Row    int       // CursorPosition, 1-based
	Col    int       // CursorPosition, 1-based
	Dir    Direction // CursorMove
	Count  int       // CursorMove
}

// Print writes one character at the cursor.
func Print(ch rune) Action { return Action{Type: ActionPrint, Char: ch} }

// CarriageReturn moves the cursor to column 0 of the current line.
func CarriageReturn() Action { return Action{Type: ActionCarriageReturn} }

// LineFeed advances the cursor to the next line.
func LineFeed() Action { return Action{Type: ActionLineFeed} }

// Backspace moves the cursor left one column without deleting.
func Backspace() Action { return Action{Type: ActionBackspace} }

// Tab expands to a fixed run of spaces at the cursor.
func Tab() Action { return Action{Type: ActionTab} }

// SetGraphicAttributes carries raw SGR parameters to the buffer's style
// state. An empty parameter list means reset.
func SetGraphicAttributes(params []int) Action {
	return Action{Type: ActionSetGraphicAttributes, Params: params}
}

// EraseInLine clears part of the cursor's line: mode 0 cursor to end,
// mode 1 start to cursor, mode 2 the whole line.
func EraseInLine(mode int) Action { return Action{Type: ActionEraseInLine, Mode: mode} }

// EraseInDisplay clears part of the screen: mode 0 cursor to end, mode 1
// start to cursor, mode 2 the whole screen.
func EraseInDisplay(mode int) Action { return Action{Type: ActionEraseInDisplay, Mode: mode} }

// CursorPosition moves the cursor to a 1-based row and column.
func CursorPosition(row, col int) Action {
	return Action{Type: ActionCursorPosition, Row: row, Col: col}
}

// CursorMove moves the cursor count cells in the given direction.
func CursorMove(dir Direction, count int) Action {
	return Action{Type: ActionCursorMove, Dir: dir, Count: count}
}

// SaveCursor records the current cursor position.
func SaveCursor() Action { return Action{Type: ActionSaveCursor} }

// RestoreCursor returns the cursor to the last saved position.
func RestoreCursor() Action { return Action{Type: ActionRestoreCursor} }

// Bell rings the terminal bell.
func Bell() Action { return Action{Type: ActionBell} }

// Ignored marks input that was recognized and dropped.
func Ignored() Action { return Action{Type: ActionIgnored} }

func (t ActionType) String() string {
	switch t {
	case ActionPrint:
		return "Print"
	case ActionCarriageReturn:
		return "CarriageReturn"
	case ActionLineFeed:
		return "LineFeed"
	case ActionBackspace:
		return "Backspace"
	case ActionTab:
		return "Tab"
	case ActionSetGraphicAttributes:
		return "SetGraphicAttributes"
	case ActionEraseInLine:
		return "EraseInLine"
	case ActionEraseInDisplay:
		return "EraseInDisplay"
	case ActionCursorPosition:
		return "CursorPosition"
	case ActionCursorMove:
		return "CursorMove"
	case ActionSaveCursor:
		return "SaveCursor"
	case ActionRestoreCursor:
		return "RestoreCursor"
	case ActionBell:
		return "Bell"
	case ActionIgnored:
		return "Ignored"
	}
	return fmt.Sprintf("ActionType(%d)", int(t))
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirRight:
		return "right"
	case DirLeft:
		return "left"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// String returns a compact description, mostly for logs and test output.
func (a Action) String() string {
	switch a.Type {
	case ActionPrint:
		return fmt.Sprintf("Print(%q)", a.Char)
	case ActionSetGraphicAttributes:
		return fmt.Sprintf("SetGraphicAttributes(%v)", a.Params)
	case ActionEraseInLine:
		return fmt.Sprintf("EraseInLine(%d)", a.Mode)
	case ActionEraseInDisplay:
		return fmt.Sprintf("EraseInDisplay(%d)", a.Mode)
	case ActionCursorPosition:
		return fmt.Sprintf("CursorPosition(%d,%d)", a.Row, a.Col)
	case ActionCursorMove:
		return fmt.Sprintf("CursorMove(%s,%d)", a.Dir, a.Count)
	}
	return a.Type.String()
}
