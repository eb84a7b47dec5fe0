package grid

// Reverse video is not a literal color swap: the foreground becomes a
// fixed light color and the background becomes a translucent tint of the
// foreground that was in effect when reverse was switched on.
var reverseFg = RGBColor(0xEA, 0xEA, 0xEA)

const reverseTintAlpha = 64

// style is the attribute state applied to the next printed cell.
type style struct {
	fg   Color
	bg   Color
	bold bool

	reversed bool
	// Colors that were in effect before reverse video was switched on,
	// restored by SGR 27.
	preFg Color
	preBg Color
}

func defaultStyle() style {
	return style{fg: DefaultFg(), bg: DefaultBg()}
}

// apply folds one SGR parameter list into the style. An empty list means
// reset, same as a lone 0.
func (s *style) apply(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}

	i := 0
	for i < len(params) {
		p := params[i]
		switch {
		case p == 0: // reset
			*s = defaultStyle()
		case p == 1: // bold
			s.bold = true
		case p == 7: // reverse video
			if !s.reversed {
				s.preFg, s.preBg = s.fg, s.bg
				s.fg = reverseFg
				s.bg = Translucent(s.preFg, reverseTintAlpha)
				s.reversed = true
			}
		case p == 27: // reverse off
			if s.reversed {
				s.fg, s.bg = s.preFg, s.preBg
				s.reversed = false
			}
		case p >= 30 && p <= 37: // standard foreground colors
			s.fg = IndexedColor(uint8(p - 30))
		case p >= 40 && p <= 47: // standard background colors
			s.bg = IndexedColor(uint8(p - 40))
		case p == 38 || p == 48:
			// Extended colors are not modeled, but their arguments must
			// be consumed so the components aren't misread as separate
			// codes.
			if i+1 < len(params) {
				switch params[i+1] {
				case 5: // 256-color form: 38;5;n
					i += 2
				case 2: // RGB form: 38;2;r;g;b
					i += 4
				}
			}
		}
		// All other codes are no-ops.
		i++
	}
}
