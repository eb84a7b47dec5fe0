package keybindings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateKeyInput(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		mods Mod
		want string
	}{
		{"enter", KeyEnter, 0, "\n"},
		{"backspace", KeyBackspace, 0, "\x7f"},
		{"tab", KeyTab, 0, "\t"},
		{"shift tab", KeyTab, ModShift, "\x1b[Z"},
		{"escape", KeyEscape, 0, "\x1b"},
		{"up", KeyUp, 0, "\x1b[A"},
		{"down", KeyDown, 0, "\x1b[B"},
		{"right", KeyRight, 0, "\x1b[C"},
		{"left", KeyLeft, 0, "\x1b[D"},
		{"home", KeyHome, 0, "\x1b[H"},
		{"end", KeyEnd, 0, "\x1b[F"},
		{"page up", KeyPageUp, 0, "\x1b[5~"},
		{"page down", KeyPageDown, 0, "\x1b[6~"},
		{"insert", KeyInsert, 0, "\x1b[2~"},
		{"delete", KeyDelete, 0, "\x1b[3~"},
		{"f1", KeyF1, 0, "\x1bOP"},
		{"f4", KeyF4, 0, "\x1bOS"},
		{"f5", KeyF5, 0, "\x1b[15~"},
		{"f12", KeyF12, 0, "\x1b[24~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateKey(tt.key, tt.mods, Options{})
			assert.Equal(t, ActionInput, got.Action)
			assert.Equal(t, []byte(tt.want), got.Data)
		})
	}
}

func TestBackspaceByteIsConfigurable(t *testing.T) {
	got := TranslateKey(KeyBackspace, 0, Options{Backspace: 0x08})
	assert.Equal(t, []byte{0x08}, got.Data)

	got = TranslateKey(KeyBackspace, 0, Options{})
	assert.Equal(t, []byte{0x7f}, got.Data)
}

func TestScrollbackBindings(t *testing.T) {
	assert.Equal(t, ActionScrollUp, TranslateKey(KeyPageUp, ModShift, Options{}).Action)
	assert.Equal(t, ActionScrollDown, TranslateKey(KeyPageDown, ModShift, Options{}).Action)
	assert.Equal(t, ActionScrollUpLine, TranslateKey(KeyUp, ModShift, Options{}).Action)
	assert.Equal(t, ActionScrollDownLine, TranslateKey(KeyDown, ModShift, Options{}).Action)
	assert.Equal(t, ActionScrollReset, TranslateKey(KeyEnd, ModShift, Options{}).Action)
}

func TestUnknownKeyDoesNothing(t *testing.T) {
	got := TranslateKey(KeyNone, 0, Options{})
	assert.Equal(t, ActionNone, got.Action)
	assert.Nil(t, got.Data)
}

func TestTranslateRune(t *testing.T) {
	got := TranslateRune('a', 0)
	assert.Equal(t, ActionInput, got.Action)
	assert.Equal(t, []byte("a"), got.Data)

	got = TranslateRune('é', 0)
	assert.Equal(t, []byte("é"), got.Data)

	got = TranslateRune('世', 0)
	assert.Equal(t, []byte("世"), got.Data)
}

func TestTranslateRuneAltPrefix(t *testing.T) {
	got := TranslateRune('b', ModAlt)
	assert.Equal(t, []byte{0x1b, 'b'}, got.Data)
}

func TestTranslateRuneControl(t *testing.T) {
	assert.Equal(t, ActionInterrupt, TranslateRune('c', ModCtrl).Action)
	assert.Equal(t, ActionInterrupt, TranslateRune('C', ModCtrl).Action)
	assert.Equal(t, ActionExit, TranslateRune('q', ModCtrl).Action)

	got := TranslateRune('a', ModCtrl)
	assert.Equal(t, []byte{0x01}, got.Data)

	got = TranslateRune('Z', ModCtrl)
	assert.Equal(t, []byte{0x1a}, got.Data)

	got = TranslateRune(' ', ModCtrl)
	assert.Equal(t, []byte{0x00}, got.Data)

	assert.Equal(t, ActionNone, TranslateRune('1', ModCtrl).Action)
}
