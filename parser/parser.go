package parser

import (
	"strconv"
	"strings"
)

// decoderState identifies the current position in the escape grammar.
type decoderState int

const (
	stateGround decoderState = iota
	stateEscape
	stateCSIParam
	stateOSCString
)

// Decoder turns the raw byte stream produced by a shell into an ordered
// stream of Actions. The only state it keeps is the parse position, so a
// sequence split across deliveries decodes exactly as if it had arrived
// whole. It never mutates a screen itself and never aborts on unknown
// input; anything it does not model comes out as Ignored.
//
// A Decoder is not safe for concurrent use. Feed it from the single
// goroutine that owns the screen buffer.
type Decoder struct {
	state     decoderState
	csiParams string
	oscEsc    bool // saw ESC inside an OSC string, string terminator pending

	// UTF-8 decoding state
	utf8Buf       []byte
	utf8Remaining int

	actions []Action
}

// NewDecoder returns a decoder in ground state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed decodes one output delivery and returns the Actions it produced, in
// order. The returned slice is freshly allocated; callers may retain it
// across further Feed calls.
func (d *Decoder) Feed(data []byte) []Action {
	d.actions = make([]Action, 0, len(data))
	for _, b := range data {
		d.processByte(b)
	}
	out := d.actions
	d.actions = nil
	return out
}

// Reset discards any partial sequence or partial character and returns to
// ground state. Used when a session restarts, and at shutdown when the
// process exits mid-sequence.
func (d *Decoder) Reset() {
	d.state = stateGround
	d.csiParams = ""
	d.oscEsc = false
	d.utf8Buf = nil
	d.utf8Remaining = 0
}

func (d *Decoder) emit(a Action) {
	d.actions = append(d.actions, a)
}

func (d *Decoder) processByte(b byte) {
	switch d.state {
	case stateGround:
		d.processGround(b)
	case stateEscape:
		d.processEscape(b)
	case stateCSIParam:
		d.processCSIParam(b)
	case stateOSCString:
		d.processOSCString(b)
	}
}

// processGround classifies bytes outside any escape sequence.
func (d *Decoder) processGround(b byte) {
	// If we're in the middle of a UTF-8 sequence, continue it.
	if d.utf8Remaining > 0 {
		if b&0xC0 == 0x80 { // valid continuation byte
			d.utf8Buf = append(d.utf8Buf, b)
			d.utf8Remaining--
			if d.utf8Remaining == 0 {
				d.emit(Print(decodeUTF8(d.utf8Buf)))
				d.utf8Buf = nil
			}
		} else {
			// Invalid continuation: drop the partial rune and process
			// this byte normally.
			d.utf8Buf = nil
			d.utf8Remaining = 0
			d.processGround(b)
		}
		return
	}

	switch b {
	case 0x1b: // ESC
		d.state = stateEscape
	case 0x07: // BEL
		d.emit(Bell())
	case 0x08, 0x7f: // BS, DEL
		d.emit(Backspace())
	case 0x09: // HT
		d.emit(Tab())
	case 0x0a: // LF
		d.emit(LineFeed())
	case 0x0d: // CR
		d.emit(CarriageReturn())
	default:
		switch {
		case b >= 0x20 && b < 0x7f:
			// ASCII printable character
			d.emit(Print(rune(b)))
		case b >= 0xC0 && b < 0xE0:
			// Start of 2-byte UTF-8 sequence
			d.utf8Buf = []byte{b}
			d.utf8Remaining = 1
		case b >= 0xE0 && b < 0xF0:
			// Start of 3-byte UTF-8 sequence
			d.utf8Buf = []byte{b}
			d.utf8Remaining = 2
		case b >= 0xF0 && b < 0xF8:
			// Start of 4-byte UTF-8 sequence
			d.utf8Buf = []byte{b}
			d.utf8Remaining = 3
		default:
			// Remaining C0 controls and stray continuation bytes.
			d.emit(Ignored())
		}
	}
}

// decodeUTF8 decodes a complete UTF-8 byte sequence to a rune.
func decodeUTF8(buf []byte) rune {
	switch len(buf) {
	case 1:
		return rune(buf[0])
	case 2:
		if buf[0]&0xE0 == 0xC0 {
			return rune(buf[0]&0x1F)<<6 | rune(buf[1]&0x3F)
		}
	case 3:
		if buf[0]&0xF0 == 0xE0 {
			return rune(buf[0]&0x0F)<<12 | rune(buf[1]&0x3F)<<6 | rune(buf[2]&0x3F)
		}
	case 4:
		if buf[0]&0xF8 == 0xF0 {
			return rune(buf[0]&0x07)<<18 | rune(buf[1]&0x3F)<<12 | rune(buf[2]&0x3F)<<6 | rune(buf[3]&0x3F)
		}
	}
	return 0xFFFD // replacement character for invalid sequences
}

// processEscape handles the byte after ESC.
func (d *Decoder) processEscape(b byte) {
	switch b {
	case '[': // CSI
		d.state = stateCSIParam
		d.csiParams = ""
	case ']': // OSC
		d.state = stateOSCString
		d.oscEsc = false
	default:
		// ESC 7, charset designations, keypad modes and the rest are
		// not modeled.
		d.emit(Ignored())
		d.state = stateGround
	}
}

// processCSIParam accumulates CSI parameter bytes until a final byte
// dispatches the sequence.
func (d *Decoder) processCSIParam(b byte) {
	switch {
	case b >= 0x30 && b <= 0x3f:
		// Parameter byte: digits, ';', private markers
		d.csiParams += string(b)
	case b >= 0x20 && b <= 0x2f:
		// Intermediate byte
		d.csiParams += string(b)
	case b >= 0x40 && b <= 0x7e:
		// Final byte
		d.dispatchCSI(b)
		d.state = stateGround
	case b == 0x1b:
		// ESC aborts the sequence and starts a new one.
		d.emit(Ignored())
		d.state = stateEscape
	default:
		d.emit(Ignored())
		d.state = stateGround
	}
}

// dispatchCSI turns a completed CSI sequence into an Action.
func (d *Decoder) dispatchCSI(final byte) {
	params := parseParams(d.csiParams)

	switch final {
	case 'm': // SGR - select graphic rendition
		d.emit(SetGraphicAttributes(params))
	case 'K': // EL - erase in line
		d.emit(EraseInLine(getParam(params, 0, 0)))
	case 'J': // ED - erase in display
		d.emit(EraseInDisplay(getParam(params, 0, 0)))
	case 'H', 'f': // CUP - cursor position
		row := getParam(params, 0, 1)
		col := getParam(params, 1, 1)
		d.emit(CursorPosition(row, col))
	case 'A': // CUU - cursor up
		d.emit(CursorMove(DirUp, getParam(params, 0, 1)))
	case 'B': // CUD - cursor down
		d.emit(CursorMove(DirDown, getParam(params, 0, 1)))
	case 'C': // CUF - cursor forward
		d.emit(CursorMove(DirRight, getParam(params, 0, 1)))
	case 'D': // CUB - cursor back
		d.emit(CursorMove(DirLeft, getParam(params, 0, 1)))
	case 's': // SCP - save cursor position
		d.emit(SaveCursor())
	case 'u': // RCP - restore cursor position
		d.emit(RestoreCursor())
	default:
		d.emit(Ignored())
	}
}

// processOSCString swallows an operating-system-command payload. Window
// title sets and the like produce no Action.
func (d *Decoder) processOSCString(b byte) {
	if d.oscEsc {
		d.oscEsc = false
		if b == '\\' { // ESC \ is the string terminator
			d.state = stateGround
			return
		}
		// A lone ESC also ends the string; whatever follows it starts a
		// fresh sequence.
		d.state = stateEscape
		d.processEscape(b)
		return
	}
	switch b {
	case 0x07: // BEL terminator
		d.state = stateGround
	case 0x1b:
		d.oscEsc = true
	}
}

// parseParams parses accumulated CSI parameters.
func parseParams(s string) []int {
	// Remove private mode indicators.
	s = strings.TrimPrefix(s, "?")
	s = strings.TrimPrefix(s, ">")
	s = strings.TrimPrefix(s, "!")

	if s == "" {
		return nil
	}

	parts := strings.Split(s, ";")
	params := make([]int, len(parts))
	for i, part := range parts {
		// Handle sub-parameters (colon-separated) by taking the first one.
		if idx := strings.Index(part, ":"); idx >= 0 {
			part = part[:idx]
		}
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			params[i] = 0
		} else {
			params[i] = n
		}
	}
	return params
}

// getParam gets a parameter with a default value. A missing or zero
// parameter means "use the default" throughout the CSI table.
func getParam(params []int, index, defaultVal int) int {
	if index < len(params) && params[index] > 0 {
		return params[index]
	}
	return defaultVal
}
