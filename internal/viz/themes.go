package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name        string
	Primary     lipgloss.Color
	Accent      lipgloss.Color
	Text        lipgloss.Color
	Muted       lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
	Measurement string
	Setpoint    string
	Output      string
}

var (
	ThemeCyberpunk = Theme{
		Name:        "cyberpunk",
		Primary:     lipgloss.Color("#00ffff"),
		Accent:      lipgloss.Color("#ff00ff"),
		Text:        lipgloss.Color("#ffffff"),
		Muted:       lipgloss.Color("#666688"),
		Success:     lipgloss.Color("#00ff88"),
		Warning:     lipgloss.Color("#ffaa00"),
		Measurement: "cyan",
		Setpoint:    "magenta",
		Output:      "yellow",
	}

	ThemeRetroGreen = Theme{
		Name:        "retro",
		Primary:     lipgloss.Color("#00ff00"),
		Accent:      lipgloss.Color("#88ff88"),
		Text:        lipgloss.Color("#00ff00"),
		Muted:       lipgloss.Color("#005500"),
		Success:     lipgloss.Color("#88ff88"),
		Warning:     lipgloss.Color("#ffff00"),
		Measurement: "green",
		Setpoint:    "white",
		Output:      "yellow",
	}

	ThemeMinimal = Theme{
		Name:        "minimal",
		Primary:     lipgloss.Color("#ffffff"),
		Accent:      lipgloss.Color("#0088ff"),
		Text:        lipgloss.Color("#ffffff"),
		Muted:       lipgloss.Color("#888888"),
		Success:     lipgloss.Color("#00ff00"),
		Warning:     lipgloss.Color("#ffaa00"),
		Measurement: "blue",
		Setpoint:    "red",
		Output:      "default",
	}

	// Default theme
	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

// SetTheme changes the current theme and rebuilds the styles from it.
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	applyTheme(CurrentTheme)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme cycles to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}
