package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starling", "config.toml")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// The file now exists and loads back identically.
	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFileKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"ink-black\"\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ink-black", cfg.Theme)
	assert.Equal(t, 24, cfg.Terminal.Rows)
	assert.Equal(t, 80, cfg.Terminal.Cols)
	assert.Equal(t, 10000, cfg.Terminal.Scrollback)
	assert.Equal(t, "xterm", cfg.Shell.Term)
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Shell.Path = "/bin/bash"
	cfg.Shell.Env = map[string]string{"EDITOR": "vi"}
	cfg.Terminal.Rows = 50
	cfg.Input.Backspace = "bs"
	cfg.Themes = map[string]ThemePalette{
		"night": {Background: "#000000", Foreground: "#ffffff"},
	}
	require.NoError(t, cfg.SaveFile(path))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadFileRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = [unterminated"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("negative geometry", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Terminal.Rows = -1
		require.Error(t, cfg.Validate())
	})

	t.Run("negative scrollback", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Terminal.Scrollback = -10
		require.Error(t, cfg.Validate())
	})

	t.Run("unknown backspace mode", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Input.Backspace = "delete"
		require.Error(t, cfg.Validate())
	})

	t.Run("bad theme color", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Themes = map[string]ThemePalette{
			"broken": {Background: "not-a-color"},
		}
		require.Error(t, cfg.Validate())
	})

	t.Run("partial palettes are fine", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Themes = map[string]ThemePalette{
			"partial": {Background: "#101010"},
		}
		require.NoError(t, cfg.Validate())
	})
}

func TestBackspaceByte(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, byte(0x7f), cfg.BackspaceByte())

	cfg.Input.Backspace = "bs"
	assert.Equal(t, byte(0x08), cfg.BackspaceByte())
}

func TestEnvSlice(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.EnvSlice())

	cfg.Shell.Env = map[string]string{"B": "2", "A": "1"}
	assert.Equal(t, []string{"A=1", "B=2"}, cfg.EnvSlice())
}

func TestGetAvailableShells(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh on this system")
	}

	shells := GetAvailableShells()
	assert.Contains(t, shells, "/bin/sh")

	seen := map[string]bool{}
	for _, s := range shells {
		base := filepath.Base(s)
		assert.False(t, seen[base], "one path per shell name, got a second %s", s)
		seen[base] = true
	}
}

func TestThemeLabel(t *testing.T) {
	assert.Equal(t, "Starling Blue", ThemeLabel("starling-blue"))
	assert.Equal(t, "Starling Blue", ThemeLabel(""))
	assert.Equal(t, "custom-night", ThemeLabel("custom-night"))
}
