package config

// ThemeOption describes an available color theme.
type ThemeOption struct {
	Name  string
	Label string
}

// ThemeOptions lists the built-in themes.
func ThemeOptions() []ThemeOption {
	return []ThemeOption{
		{Name: "starling-blue", Label: "Starling Blue"},
		{Name: "ink-black", Label: "Ink Black"},
		{Name: "paper-grey", Label: "Paper Grey"},
		{Name: "catppuccin-mocha", Label: "Catppuccin Mocha"},
	}
}

// ThemeLabel returns the display label for a theme name.
func ThemeLabel(name string) string {
	for _, opt := range ThemeOptions() {
		if opt.Name == name {
			return opt.Label
		}
	}
	if name == "" {
		return "Starling Blue"
	}
	return name
}
