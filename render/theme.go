package render

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/starlingterm/starling/config"
)

// Theme holds the colors the painter uses for cells the shell left at
// their defaults.
type Theme struct {
	Background colorful.Color
	Foreground colorful.Color
	Cursor     colorful.Color
	Selection  colorful.Color
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("render: bad theme hex " + s)
	}
	return c
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return ThemeByName("starling-blue")
}

// ThemeByName returns a theme for a known theme name.
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ink-black":
		return Theme{
			Background: mustHex("#050505"),
			Foreground: mustHex("#e6e6e6"),
			Cursor:     mustHex("#f6f6f6"),
			Selection:  mustHex("#b3b3b3"),
		}
	case "paper-grey":
		return Theme{
			Background: mustHex("#111111"),
			Foreground: mustHex("#f5f5f5"),
			Cursor:     mustHex("#ffffff"),
			Selection:  mustHex("#d0d0d0"),
		}
	case "catppuccin-mocha", "catppuccin":
		return Theme{
			Background: mustHex("#1e1e2e"),
			Foreground: mustHex("#cdd6f4"),
			Cursor:     mustHex("#f5c2e7"),
			Selection:  mustHex("#89b4fa"),
		}
	case "starling-blue":
		fallthrough
	default:
		return Theme{
			Background: mustHex("#0d101a"),
			Foreground: mustHex("#e8edf7"),
			Cursor:     mustHex("#a2e0c7"),
			Selection:  mustHex("#74b6ff"),
		}
	}
}

// ThemeFromConfig resolves the configured theme name, then overlays
// any custom palette with the same name. Unknown names fall back to
// the default palette as the base, so a fully custom theme only needs
// the fields it cares about.
func ThemeFromConfig(cfg *config.Config) Theme {
	th := ThemeByName(cfg.Theme)
	if p, ok := cfg.Themes[cfg.Theme]; ok {
		th = th.overlay(p)
	}
	return th
}

func (t Theme) overlay(p config.ThemePalette) Theme {
	if c, err := colorful.Hex(p.Background); err == nil && p.Background != "" {
		t.Background = c
	}
	if c, err := colorful.Hex(p.Foreground); err == nil && p.Foreground != "" {
		t.Foreground = c
	}
	if c, err := colorful.Hex(p.Cursor); err == nil && p.Cursor != "" {
		t.Cursor = c
	}
	if c, err := colorful.Hex(p.Selection); err == nil && p.Selection != "" {
		t.Selection = c
	}
	return t
}

// ansiColor returns the color for an indexed terminal color (0-255).
func ansiColor(index uint8) colorful.Color {
	if index < 16 {
		return ansiStandard[index]
	}

	// 216 color cube (indices 16-231).
	if index < 232 {
		idx := index - 16
		red := (idx / 36) % 6
		green := (idx / 6) % 6
		blue := idx % 6
		return colorful.Color{
			R: float64(red) * 51 / 255,
			G: float64(green) * 51 / 255,
			B: float64(blue) * 51 / 255,
		}
	}

	// Grayscale (indices 232-255).
	gray := float64(index-232) * 10 / 255
	return colorful.Color{R: gray, G: gray, B: gray}
}

var ansiStandard = [16]colorful.Color{
	{R: 0.043, G: 0.059, B: 0.078}, // 0: Black
	{R: 0.820, G: 0.412, B: 0.412}, // 1: Red
	{R: 0.498, G: 0.737, B: 0.549}, // 2: Green
	{R: 0.843, G: 0.729, B: 0.490}, // 3: Yellow
	{R: 0.533, G: 0.643, B: 0.831}, // 4: Blue
	{R: 0.773, G: 0.525, B: 0.753}, // 5: Magenta
	{R: 0.498, G: 0.773, B: 0.784}, // 6: Cyan
	{R: 0.831, G: 0.847, B: 0.871}, // 7: White
	{R: 0.294, G: 0.322, B: 0.388}, // 8: Bright Black
	{R: 0.878, G: 0.478, B: 0.478}, // 9: Bright Red
	{R: 0.604, G: 0.843, B: 0.659}, // 10: Bright Green
	{R: 0.906, G: 0.788, B: 0.545}, // 11: Bright Yellow
	{R: 0.647, G: 0.749, B: 0.941}, // 12: Bright Blue
	{R: 0.847, G: 0.627, B: 0.831}, // 13: Bright Magenta
	{R: 0.604, G: 0.843, B: 0.863}, // 14: Bright Cyan
	{R: 0.945, G: 0.953, B: 0.961}, // 15: Bright White
}
