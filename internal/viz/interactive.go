package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	menuErr      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Entry is one selectable preset in the picker.
type Entry struct {
	Plant  string
	Preset string
	Info   string
}

func (e Entry) Name() string { return e.Plant + "/" + e.Preset }

// BuildFunc turns a picked entry into a running live view.
type BuildFunc func(Entry) (Model, error)

// picker lists presets and hands over to the live view once one is chosen.
type picker struct {
	entries []Entry
	cursor  int
	build   BuildFunc
	live    *Model
	err     error
}

func NewPicker(entries []Entry, build BuildFunc) tea.Model {
	return &picker{entries: entries, build: build}
}

func (p *picker) Init() tea.Cmd { return nil }

func (p *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.entries)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.entries) == 0 {
			return p, nil
		}
		m, err := p.build(p.entries[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.live = &m
		return p, m.Init()
	}
	return p, nil
}

func (p *picker) View() string {
	if p.live != nil {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("PIDSIM") + "\n    " + menuSub.Render("pick a preset to run live") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, e := range p.entries {
		name := fmt.Sprintf("%-20s", e.Name())
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(name), menuDesc.Render(e.Info)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", menuInactive.Render(name), menuInactive.Render(e.Info)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + menuErr.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuSub.Render(" navigate  ") + menuKey.Render("enter") + menuSub.Render(" run  ") + menuKey.Render("q") + menuSub.Render(" quit") + "\n")
	return b.String()
}

// RunPicker shows the preset menu full screen.
func RunPicker(entries []Entry, build BuildFunc) error {
	_, err := tea.NewProgram(NewPicker(entries, build), tea.WithAltScreen()).Run()
	return err
}

// Run shows a single live view full screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
