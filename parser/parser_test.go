package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlainText(t *testing.T) {
	d := NewDecoder()
	got := d.Feed([]byte("abc\r\ndef"))

	want := []Action{
		Print('a'), Print('b'), Print('c'),
		CarriageReturn(), LineFeed(),
		Print('d'), Print('e'), Print('f'),
	}
	require.Equal(t, want, got)
}

func TestDecodeColoredText(t *testing.T) {
	d := NewDecoder()
	got := d.Feed([]byte("\x1b[31mred\x1b[0m"))

	want := []Action{
		SetGraphicAttributes([]int{31}),
		Print('r'), Print('e'), Print('d'),
		SetGraphicAttributes([]int{0}),
	}
	require.Equal(t, want, got)
}

func TestDecodeGroundControls(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Action
	}{
		{"carriage return", "\r", []Action{CarriageReturn()}},
		{"line feed", "\n", []Action{LineFeed()}},
		{"backspace BS", "\x08", []Action{Backspace()}},
		{"backspace DEL", "\x7f", []Action{Backspace()}},
		{"tab", "\t", []Action{Tab()}},
		{"bell", "\x07", []Action{Bell()}},
		{"null ignored", "\x00", []Action{Ignored()}},
		{"vertical tab ignored", "\x0b", []Action{Ignored()}},
		{"form feed ignored", "\x0c", []Action{Ignored()}},
		{"space prints", " ", []Action{Print(' ')}},
		{"tilde prints", "~", []Action{Print('~')}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder()
			require.Equal(t, tt.want, d.Feed([]byte(tt.in)))
		})
	}
}

func TestCSIDispatch(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Action
	}{
		{"SGR single", "\x1b[31m", SetGraphicAttributes([]int{31})},
		{"SGR multiple", "\x1b[1;31;44m", SetGraphicAttributes([]int{1, 31, 44})},
		{"SGR empty", "\x1b[m", SetGraphicAttributes(nil)},
		{"SGR reset", "\x1b[0m", SetGraphicAttributes([]int{0})},
		{"SGR colon subparams keep first", "\x1b[38:5:196m", SetGraphicAttributes([]int{38})},
		{"erase line default", "\x1b[K", EraseInLine(0)},
		{"erase line to start", "\x1b[1K", EraseInLine(1)},
		{"erase whole line", "\x1b[2K", EraseInLine(2)},
		{"erase display default", "\x1b[J", EraseInDisplay(0)},
		{"erase display to start", "\x1b[1J", EraseInDisplay(1)},
		{"erase whole display", "\x1b[2J", EraseInDisplay(2)},
		{"cursor position", "\x1b[3;7H", CursorPosition(3, 7)},
		{"cursor position home", "\x1b[H", CursorPosition(1, 1)},
		{"cursor position default row", "\x1b[;5H", CursorPosition(1, 5)},
		{"cursor position f final", "\x1b[4;2f", CursorPosition(4, 2)},
		{"cursor position zero params", "\x1b[0;0H", CursorPosition(1, 1)},
		{"cursor up", "\x1b[5A", CursorMove(DirUp, 5)},
		{"cursor up default", "\x1b[A", CursorMove(DirUp, 1)},
		{"cursor down", "\x1b[2B", CursorMove(DirDown, 2)},
		{"cursor forward", "\x1b[3C", CursorMove(DirRight, 3)},
		{"cursor back", "\x1b[4D", CursorMove(DirLeft, 4)},
		{"save cursor", "\x1b[s", SaveCursor()},
		{"restore cursor", "\x1b[u", RestoreCursor()},
		{"private mode ignored", "\x1b[?25l", Ignored()},
		{"unknown final ignored", "\x1b[2~", Ignored()},
		{"device status ignored", "\x1b[6n", Ignored()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder()
			require.Equal(t, []Action{tt.want}, d.Feed([]byte(tt.in)))
		})
	}
}

func TestEscapeOtherReturnsToGround(t *testing.T) {
	d := NewDecoder()
	got := d.Feed([]byte("\x1b7x"))
	require.Equal(t, []Action{Ignored(), Print('x')}, got)
}

func TestCSIAborts(t *testing.T) {
	t.Run("control byte aborts to ground", func(t *testing.T) {
		d := NewDecoder()
		got := d.Feed([]byte("\x1b[3\x01m"))
		require.Equal(t, []Action{Ignored(), Print('m')}, got)
	})

	t.Run("esc aborts and starts a new sequence", func(t *testing.T) {
		d := NewDecoder()
		got := d.Feed([]byte("\x1b[3\x1b[2K"))
		require.Equal(t, []Action{Ignored(), EraseInLine(2)}, got)
	})
}

func TestOSCSwallowed(t *testing.T) {
	t.Run("BEL terminator", func(t *testing.T) {
		d := NewDecoder()
		require.Empty(t, d.Feed([]byte("\x1b]0;window title\x07")))
	})

	t.Run("ESC backslash terminator", func(t *testing.T) {
		d := NewDecoder()
		require.Empty(t, d.Feed([]byte("\x1b]2;title\x1b\\")))
	})

	t.Run("surrounding text survives", func(t *testing.T) {
		d := NewDecoder()
		got := d.Feed([]byte("ab\x1b]0;t\x07cd"))
		want := []Action{Print('a'), Print('b'), Print('c'), Print('d')}
		require.Equal(t, want, got)
	})

	t.Run("lone ESC ends the string", func(t *testing.T) {
		d := NewDecoder()
		got := d.Feed([]byte("\x1b]0;t\x1b[31mx"))
		want := []Action{SetGraphicAttributes([]int{31}), Print('x')}
		require.Equal(t, want, got)
	})
}

func TestDecodeUTF8(t *testing.T) {
	t.Run("two byte rune", func(t *testing.T) {
		d := NewDecoder()
		require.Equal(t, []Action{Print('é')}, d.Feed([]byte("é")))
	})

	t.Run("three byte runes", func(t *testing.T) {
		d := NewDecoder()
		want := []Action{Print('日'), Print('本'), Print('語')}
		require.Equal(t, want, d.Feed([]byte("日本語")))
	})

	t.Run("split across feeds", func(t *testing.T) {
		d := NewDecoder()
		require.Empty(t, d.Feed([]byte{0xC3}))
		require.Equal(t, []Action{Print('é')}, d.Feed([]byte{0xA9}))
	})

	t.Run("invalid continuation reprocessed", func(t *testing.T) {
		d := NewDecoder()
		got := d.Feed([]byte{0xC3, 'x'})
		require.Equal(t, []Action{Print('x')}, got)
	})

	t.Run("stray continuation byte ignored", func(t *testing.T) {
		d := NewDecoder()
		require.Equal(t, []Action{Ignored()}, d.Feed([]byte{0x80}))
	})

	t.Run("invalid lead byte ignored", func(t *testing.T) {
		d := NewDecoder()
		require.Equal(t, []Action{Ignored()}, d.Feed([]byte{0xFF}))
	})
}

// Any split of a byte stream must decode to the same Action list as the
// whole stream delivered at once.
func TestChunkBoundaryInvariance(t *testing.T) {
	streams := []string{
		"abc\r\ndef",
		"\x1b[31mred\x1b[0m plain",
		"\x1b[1;31;44mX\x1b[2K\x1b[3;7Hy",
		"\x1b]0;some title\x07ok",
		"\x1b]w\x1b\\x",
		"héllo wörld",
		"日本語\r\n",
		"a\x07b\x08\x7f\tc",
		"\x1b[?25l\x1b[2~x\x1b[s\x1b[u",
		"ls -la\r\x1b[Kls -lah",
	}

	for _, stream := range streams {
		t.Run(fmt.Sprintf("%q", stream), func(t *testing.T) {
			whole := NewDecoder().Feed([]byte(stream))

			for i := 0; i <= len(stream); i++ {
				d := NewDecoder()
				got := d.Feed([]byte(stream[:i]))
				got = append(got, d.Feed([]byte(stream[i:]))...)
				require.Equalf(t, whole, got, "split at byte %d", i)
			}

			// A few three-way splits to cover sequences spanning more
			// than one boundary.
			for i := 0; i <= len(stream); i += 2 {
				for j := i; j <= len(stream); j += 3 {
					d := NewDecoder()
					got := d.Feed([]byte(stream[:i]))
					got = append(got, d.Feed([]byte(stream[i:j]))...)
					got = append(got, d.Feed([]byte(stream[j:]))...)
					require.Equalf(t, whole, got, "split at bytes %d,%d", i, j)
				}
			}
		})
	}
}

func TestByteAtATimeMatchesWhole(t *testing.T) {
	stream := "\x1b[1mbold\x1b[0m \x1b]0;t\x1b\\é\x1b[2;3H\x07"
	whole := NewDecoder().Feed([]byte(stream))

	d := NewDecoder()
	var got []Action
	for i := 0; i < len(stream); i++ {
		got = append(got, d.Feed([]byte{stream[i]})...)
	}
	require.Equal(t, whole, got)
}

func TestReset(t *testing.T) {
	t.Run("discards partial CSI", func(t *testing.T) {
		d := NewDecoder()
		require.Empty(t, d.Feed([]byte("\x1b[3")))
		d.Reset()
		got := d.Feed([]byte("1m"))
		require.Equal(t, []Action{Print('1'), Print('m')}, got)
	})

	t.Run("discards partial rune", func(t *testing.T) {
		d := NewDecoder()
		require.Empty(t, d.Feed([]byte{0xE3, 0x81}))
		d.Reset()
		require.Equal(t, []Action{Print('a')}, d.Feed([]byte("a")))
	})
}

func TestFeedReturnsFreshSlices(t *testing.T) {
	d := NewDecoder()
	first := d.Feed([]byte("ab"))
	second := d.Feed([]byte("cd"))

	assert.Equal(t, []Action{Print('a'), Print('b')}, first)
	assert.Equal(t, []Action{Print('c'), Print('d')}, second)
}

func TestActionStrings(t *testing.T) {
	assert.Equal(t, `Print('a')`, Print('a').String())
	assert.Equal(t, "SetGraphicAttributes([1 31])", SetGraphicAttributes([]int{1, 31}).String())
	assert.Equal(t, "CursorMove(left,2)", CursorMove(DirLeft, 2).String())
	assert.Equal(t, "CursorPosition(3,7)", CursorPosition(3, 7).String())
	assert.Equal(t, "Bell", Bell().String())
}
