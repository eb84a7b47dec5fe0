package render

import (
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"

	"github.com/starlingterm/starling/config"
)

func TestThemeByName(t *testing.T) {
	th := ThemeByName("ink-black")
	assert.Equal(t, mustHex("#050505"), th.Background)
	assert.Equal(t, mustHex("#e6e6e6"), th.Foreground)

	// Name matching is forgiving about case and whitespace.
	assert.Equal(t, th, ThemeByName(" Ink-Black "))
	assert.Equal(t, ThemeByName("catppuccin-mocha"), ThemeByName("catppuccin"))

	// Unknown names fall back to the default palette.
	assert.Equal(t, DefaultTheme(), ThemeByName("no-such-theme"))
}

func TestThemeFromConfigOverlay(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Theme = "ink-black"
	cfg.Themes = map[string]config.ThemePalette{
		"ink-black": {Background: "#123456"},
	}

	th := ThemeFromConfig(cfg)
	assert.Equal(t, mustHex("#123456"), th.Background)
	// Fields the palette leaves empty keep the named theme's values.
	assert.Equal(t, mustHex("#e6e6e6"), th.Foreground)
}

func TestThemeFromConfigCustomName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Theme = "custom"
	cfg.Themes = map[string]config.ThemePalette{
		"custom": {Foreground: "#00ff00"},
	}

	th := ThemeFromConfig(cfg)
	assert.Equal(t, mustHex("#00ff00"), th.Foreground)
	assert.Equal(t, DefaultTheme().Background, th.Background)
	assert.Equal(t, DefaultTheme().Cursor, th.Cursor)
}

func TestAnsiColorTable(t *testing.T) {
	assert.Equal(t, ansiStandard[1], ansiColor(1))
	assert.Equal(t, ansiStandard[15], ansiColor(15))

	// Color cube corners and a midpoint.
	assert.Equal(t, colorful.Color{}, ansiColor(16))
	assert.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, ansiColor(231))
	assert.Equal(t, colorful.Color{R: 102.0 / 255, G: 102.0 / 255}, ansiColor(100))

	// Grayscale ramp.
	assert.Equal(t, colorful.Color{}, ansiColor(232))
	assert.Equal(t, colorful.Color{R: 230.0 / 255, G: 230.0 / 255, B: 230.0 / 255}, ansiColor(255))
}