package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ShellConfig holds shell-specific settings.
type ShellConfig struct {
	// Path to the shell binary (empty = discover a system default).
	Path string `toml:"path"`
	// Term is the TERM value advertised to the shell.
	Term string `toml:"term"`
	// Env is extra environment variables appended to the curated set.
	Env map[string]string `toml:"env"`
}

// TerminalConfig holds screen geometry settings.
type TerminalConfig struct {
	Rows       int `toml:"rows"`
	Cols       int `toml:"cols"`
	Scrollback int `toml:"scrollback"`
}

// InputConfig holds input translation settings.
type InputConfig struct {
	// Backspace selects the byte the Backspace key sends: "del"
	// (0x7F, the default) or "bs" (0x08).
	Backspace string `toml:"backspace"`
}

// ThemePalette is a user-defined color palette. Colors are hex
// strings like "#0d101a".
type ThemePalette struct {
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
	Cursor     string `toml:"cursor"`
	Selection  string `toml:"selection"`
}

// Config holds the terminal configuration.
type Config struct {
	Shell    ShellConfig             `toml:"shell"`
	Terminal TerminalConfig          `toml:"terminal"`
	Input    InputConfig             `toml:"input"`
	Theme    string                  `toml:"theme"`
	Themes   map[string]ThemePalette `toml:"themes"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Shell: ShellConfig{
			Path: "",
			Term: "xterm",
			Env:  map[string]string{},
		},
		Terminal: TerminalConfig{
			Rows:       24,
			Cols:       80,
			Scrollback: 10000,
		},
		Input: InputConfig{
			Backspace: "del",
		},
		Theme:  "starling-blue",
		Themes: map[string]ThemePalette{},
	}
}

// GetConfigDir returns the config directory path.
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".config/starling"
	}
	return filepath.Join(homeDir, ".config", "starling")
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.toml")
}

// Load loads the configuration from the default location, creating a
// default file on first run.
func Load() (*Config, error) {
	return LoadFile(GetConfigPath())
}

// LoadFile loads the configuration from path. A missing file is
// created with defaults. Keys absent from the file keep their default
// values.
func LoadFile(path string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.SaveFile(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to the default location.
func (c *Config) Save() error {
	return c.SaveFile(GetConfigPath())
}

// SaveFile writes the configuration to path.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// Validate checks the configuration for values that cannot be acted
// on.
func (c *Config) Validate() error {
	if c.Terminal.Rows < 0 || c.Terminal.Cols < 0 {
		return fmt.Errorf("terminal size %dx%d must not be negative", c.Terminal.Rows, c.Terminal.Cols)
	}
	if c.Terminal.Scrollback < 0 {
		return fmt.Errorf("scrollback %d must not be negative", c.Terminal.Scrollback)
	}

	switch c.Input.Backspace {
	case "", "del", "bs":
	default:
		return fmt.Errorf("input.backspace %q must be \"del\" or \"bs\"", c.Input.Backspace)
	}

	for name, p := range c.Themes {
		for field, hex := range map[string]string{
			"background": p.Background,
			"foreground": p.Foreground,
			"cursor":     p.Cursor,
			"selection":  p.Selection,
		} {
			if hex == "" {
				continue
			}
			if _, err := colorful.Hex(hex); err != nil {
				return fmt.Errorf("theme %q: %s %q is not a hex color", name, field, hex)
			}
		}
	}
	return nil
}

// BackspaceByte returns the byte the Backspace key should send.
func (c *Config) BackspaceByte() byte {
	if c.Input.Backspace == "bs" {
		return 0x08
	}
	return 0x7f
}

// EnvSlice flattens the extra environment map into KEY=VALUE form in a
// stable order.
func (c *Config) EnvSlice() []string {
	if len(c.Shell.Env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Shell.Env))
	for k := range c.Shell.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+c.Shell.Env[k])
	}
	return env
}

// GetAvailableShells reports which known shells exist on this system,
// one path per shell name, in preference order.
func GetAvailableShells() []string {
	var shells []string
	for _, name := range []string{"zsh", "bash", "fish", "sh", "dash"} {
		for _, dir := range []string{"/bin", "/usr/bin"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				shells = append(shells, path)
				break
			}
		}
	}
	return shells
}
