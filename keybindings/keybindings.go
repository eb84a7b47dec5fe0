// Package keybindings maps key events to terminal input bytes and
// application actions. It is display-agnostic: the renderer converts
// its backend's events into Key, rune and Mod values and acts on the
// returned KeyResult.
package keybindings

import "unicode/utf8"

// Key identifies a non-printable key on the input surface.
type Key int

const (
	KeyNone Key = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Mod is a bitmask of held modifier keys.
type Mod int

const (
	ModShift Mod = 1 << iota
	ModCtrl
	ModAlt
)

// KeyAction represents the action to take for a key press.
type KeyAction int

const (
	ActionNone KeyAction = iota
	ActionInput
	ActionInterrupt
	ActionExit
	ActionScrollUp
	ActionScrollDown
	ActionScrollUpLine
	ActionScrollDownLine
	ActionScrollReset
)

// KeyResult contains the result of processing a key.
type KeyResult struct {
	Action KeyAction
	Data   []byte
}

// Options adjusts translation for user preferences.
type Options struct {
	// Backspace is the byte the Backspace key sends. Zero means DEL
	// (0x7F); some programs want BS (0x08) instead.
	Backspace byte
}

func input(data ...byte) KeyResult {
	return KeyResult{Action: ActionInput, Data: data}
}

func inputSeq(seq string) KeyResult {
	return KeyResult{Action: ActionInput, Data: []byte(seq)}
}

var fKeySeqs = map[Key]string{
	KeyF1:  "\x1bOP",
	KeyF2:  "\x1bOQ",
	KeyF3:  "\x1bOR",
	KeyF4:  "\x1bOS",
	KeyF5:  "\x1b[15~",
	KeyF6:  "\x1b[17~",
	KeyF7:  "\x1b[18~",
	KeyF8:  "\x1b[19~",
	KeyF9:  "\x1b[20~",
	KeyF10: "\x1b[21~",
	KeyF11: "\x1b[23~",
	KeyF12: "\x1b[24~",
}

// TranslateKey translates a special key press to terminal input or an
// application action.
func TranslateKey(key Key, mods Mod, opts Options) KeyResult {
	shift := mods&ModShift != 0

	// Scrollback navigation keeps the bytes away from the shell.
	if shift {
		switch key {
		case KeyPageUp:
			return KeyResult{Action: ActionScrollUp}
		case KeyPageDown:
			return KeyResult{Action: ActionScrollDown}
		case KeyUp:
			return KeyResult{Action: ActionScrollUpLine}
		case KeyDown:
			return KeyResult{Action: ActionScrollDownLine}
		case KeyEnd:
			return KeyResult{Action: ActionScrollReset}
		}
	}

	switch key {
	case KeyEnter:
		return input('\n')
	case KeyBackspace:
		b := opts.Backspace
		if b == 0 {
			b = 0x7f
		}
		return input(b)
	case KeyTab:
		if shift {
			return inputSeq("\x1b[Z")
		}
		return input('\t')
	case KeyEscape:
		return input(0x1b)
	case KeyUp:
		return inputSeq("\x1b[A")
	case KeyDown:
		return inputSeq("\x1b[B")
	case KeyRight:
		return inputSeq("\x1b[C")
	case KeyLeft:
		return inputSeq("\x1b[D")
	case KeyHome:
		return inputSeq("\x1b[H")
	case KeyEnd:
		return inputSeq("\x1b[F")
	case KeyPageUp:
		return inputSeq("\x1b[5~")
	case KeyPageDown:
		return inputSeq("\x1b[6~")
	case KeyInsert:
		return inputSeq("\x1b[2~")
	case KeyDelete:
		return inputSeq("\x1b[3~")
	}

	if seq, ok := fKeySeqs[key]; ok {
		return inputSeq(seq)
	}

	return KeyResult{Action: ActionNone}
}

// TranslateRune translates a printable character, honoring Ctrl and
// Alt modifiers.
func TranslateRune(ch rune, mods Mod) KeyResult {
	ctrl := mods&ModCtrl != 0
	alt := mods&ModAlt != 0

	if ctrl {
		switch {
		case ch == 'c' || ch == 'C':
			return KeyResult{Action: ActionInterrupt}
		case ch == 'q' || ch == 'Q':
			return KeyResult{Action: ActionExit}
		case ch == ' ':
			return input(0)
		case ch >= 'a' && ch <= 'z':
			return input(byte(ch - 'a' + 1))
		case ch >= 'A' && ch <= 'Z':
			return input(byte(ch - 'A' + 1))
		}
		return KeyResult{Action: ActionNone}
	}

	buf := utf8.AppendRune(nil, ch)
	if alt {
		// Alt sends an ESC prefix.
		return KeyResult{Action: ActionInput, Data: append([]byte{0x1b}, buf...)}
	}
	return KeyResult{Action: ActionInput, Data: buf}
}
