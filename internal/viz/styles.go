package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	panelStyle       lipgloss.Style
	headerStyle      lipgloss.Style
	labelStyle       lipgloss.Style
	valueStyle       lipgloss.Style
	activeParamStyle lipgloss.Style
	helpStyle        lipgloss.Style
	statusRunning    lipgloss.Style
	statusPaused     lipgloss.Style
	graphStyle       = lipgloss.NewStyle().Padding(1, 0)
)

func init() {
	applyTheme(CurrentTheme)
}

func applyTheme(t Theme) {
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(1, 2).
		Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(t.Text)
	activeParamStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	helpStyle = lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1)
	statusRunning = lipgloss.NewStyle().Foreground(t.Success).Bold(true)
	statusPaused = lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
}

// seriesColor maps a theme color name to an asciigraph color.
func seriesColor(name string) asciigraph.AnsiColor {
	if c, ok := asciigraph.ColorNames[strings.ToLower(name)]; ok {
		return c
	}
	return asciigraph.Default
}

// ProgressBar renders a horizontal bar for values in [0, 1].
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
