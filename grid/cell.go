package grid

// ColorType identifies how a Color is resolved by the consumer.
type ColorType uint8

const (
	// ColorDefault resolves to the consumer's default foreground or
	// background, whichever slot it sits in.
	ColorDefault ColorType = iota
	// ColorIndexed resolves through the 8-entry ANSI palette.
	ColorIndexed
	// ColorRGB is a literal color.
	ColorRGB
)

// Color is a terminal color. Alpha is carried so that the reverse-video
// tint survives into snapshots: 255 is opaque, lower values blend toward
// whatever the consumer paints behind the cell.
type Color struct {
	Type    ColorType
	Index   uint8 // for indexed colors (0-7)
	R, G, B uint8 // for RGB colors
	A       uint8
}

// DefaultFg returns the default foreground color.
func DefaultFg() Color {
	return Color{Type: ColorDefault, A: 255}
}

// DefaultBg returns the default background color.
func DefaultBg() Color {
	return Color{Type: ColorDefault, A: 255}
}

// IndexedColor creates a color from the 8-entry ANSI table.
func IndexedColor(index uint8) Color {
	return Color{Type: ColorIndexed, Index: index, A: 255}
}

// RGBColor creates an opaque literal color.
func RGBColor(r, g, b uint8) Color {
	return Color{Type: ColorRGB, R: r, G: g, B: b, A: 255}
}

// Translucent returns c with its alpha replaced.
func Translucent(c Color, a uint8) Color {
	c.A = a
	return c
}

// Cell is a single screen cell: one character plus its style.
type Cell struct {
	Char rune
	Fg   Color
	Bg   Color
	Bold bool
}

// NewCell returns an empty cell: a space in the default style.
func NewCell() Cell {
	return Cell{
		Char: ' ',
		Fg:   DefaultFg(),
		Bg:   DefaultBg(),
	}
}
