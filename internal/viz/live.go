package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/glog"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pidsim/internal/control"
	"github.com/san-kum/pidsim/internal/dynamo"
	"github.com/san-kum/pidsim/internal/sim"
)

const (
	frameRate       = 30
	historyCapacity = 300
	graphWidth      = 60
)

// Tuner is the controller surface the live view drives.
type Tuner interface {
	dynamo.Controller
	dynamo.Configurable
	Snapshot() control.Snapshot
	ToggleDirection()
	ToggleMode()
	ResetIntegral()
}

type TickMsg time.Time

// Model runs a closed loop in simulated real time and renders the
// measurement, setpoint and output traces next to the controller state.
type Model struct {
	sim   *sim.Simulator
	tuner Tuner
	title string

	x0            dynamo.State
	dt            float64
	speed         int
	running       bool
	showHelp      bool
	paramKeys     []string
	selected      int
	initialParams map[string]float64
	lastErr       error

	measurements []float64
	setpoints    []float64
	outputs      []float64
}

// NewModel wraps a simulator whose controller implements Tuner.
func NewModel(s *sim.Simulator, x0 dynamo.State, dt float64, title string) (Model, error) {
	tuner, ok := s.Controller().(Tuner)
	if !ok {
		return Model{}, fmt.Errorf("controller %T cannot be tuned live", s.Controller())
	}
	if dt <= 0 {
		return Model{}, fmt.Errorf("%w: dt must be positive", dynamo.ErrInvalidConfig)
	}

	m := Model{
		sim:           s,
		tuner:         tuner,
		title:         title,
		x0:            x0.Clone(),
		dt:            dt,
		speed:         1,
		running:       true,
		paramKeys:     []string{"kp", "ki", "kd", "setpoint"},
		initialParams: tuner.GetParams(),
		measurements:  make([]float64, 0, historyCapacity),
		setpoints:     make([]float64, 0, historyCapacity),
		outputs:       make([]float64, 0, historyCapacity),
	}
	s.Reset(x0)
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "d":
			m.tuner.ToggleDirection()
		case "m":
			m.tuner.ToggleMode()
		case "i":
			m.tuner.ResetIntegral()
		case "+", "=":
			if m.speed < 64 {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs enough steps to cover one frame of simulated time.
func (m *Model) advance() {
	steps := int(math.Round(float64(m.speed) / frameRate / m.dt))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		m.step()
	}
}

func (m *Model) step() {
	u := m.sim.Step(m.dt)
	x, _ := m.sim.State()
	if !x.IsValid() {
		m.running = false
		return
	}

	m.measurements = push(m.measurements, x.Measurement())
	m.setpoints = push(m.setpoints, m.tuner.Snapshot().Setpoint)
	out := 0.0
	if len(u) > 0 {
		out = u[0]
	}
	m.outputs = push(m.outputs, out)
}

func push(buf []float64, v float64) []float64 {
	if len(buf) == historyCapacity {
		copy(buf, buf[1:])
		buf = buf[:len(buf)-1]
	}
	return append(buf, v)
}

// adjustParam nudges the selected gain by 5% or the setpoint by one unit.
// Gains at zero move by a fixed 0.05 so they can be switched on.
func (m *Model) adjustParam(dir float64) {
	key := m.paramKeys[m.selected]
	val := m.tuner.GetParams()[key]

	var next float64
	switch {
	case key == "setpoint":
		next = val + dir
	case val == 0:
		next = math.Max(0, dir*0.05)
	default:
		next = val * (1 + dir*0.05)
	}
	m.lastErr = nil
	m.setParam(key, next)
}

// setParam applies a parameter change; a rejected change is logged and
// shown in the panel until the next successful one.
func (m *Model) setParam(key string, v float64) {
	if err := m.tuner.SetParam(key, v); err != nil {
		m.lastErr = fmt.Errorf("%s: %w", key, err)
		glog.Warningf("live: %v", m.lastErr)
	}
}

func (m *Model) reset() {
	m.lastErr = nil
	for k, v := range m.initialParams {
		m.setParam(k, v)
	}
	m.sim.Reset(m.x0)
	m.measurements = m.measurements[:0]
	m.setpoints = m.setpoints[:0]
	m.outputs = m.outputs[:0]
	m.running = true
}

// View renders the TUI interface.
func (m Model) View() string {
	snap := m.tuner.Snapshot()
	_, t := m.sim.State()

	var graphs strings.Builder
	if len(m.measurements) > 1 {
		chart := asciigraph.PlotMany(
			[][]float64{m.measurements, m.setpoints},
			asciigraph.Height(10),
			asciigraph.Width(graphWidth),
			asciigraph.SeriesColors(seriesColor(CurrentTheme.Measurement), seriesColor(CurrentTheme.Setpoint)),
			asciigraph.SeriesLegends("input", "setpoint"),
			asciigraph.Caption("process"),
		)
		graphs.WriteString(graphStyle.Render(chart) + "\n")

		chart = asciigraph.Plot(m.outputs,
			asciigraph.Height(5),
			asciigraph.Width(graphWidth),
			asciigraph.SeriesColors(seriesColor(CurrentTheme.Output)),
			asciigraph.Caption("output"),
		)
		graphs.WriteString(graphStyle.Render(chart))
	} else {
		graphs.WriteString(labelStyle.Render("waiting for samples"))
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	if m.running {
		s.WriteString(statusRunning.Render(fmt.Sprintf("RUNNING x%d", m.speed)))
	} else {
		s.WriteString(statusPaused.Render("PAUSED"))
	}
	if m.lastErr != nil {
		s.WriteString("\n" + statusPaused.Render("REJECTED") + " " + valueStyle.Render(m.lastErr.Error()))
	}
	s.WriteString("\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", t))
	row("Input", fmt.Sprintf("%.3f", snap.Input))
	row("Output", fmt.Sprintf("%.3f", snap.Output))
	row("Integral", fmt.Sprintf("%.3f", snap.Integral))
	row("Direction", snap.Direction.String())
	row("Mode", snap.Mode.String())
	row("Interval", snap.Interval.String())
	row("Ticks", fmt.Sprintf("%d", snap.Ticks))

	s.WriteString("\nPARAMETERS\n")
	params := m.tuner.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-9s %.4g", k, params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit ?:Help"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, graphs.String(), panelStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

const helpText = `
  Space     pause / resume
  R         reset plant, controller and gains
  Tab       select parameter
  Up/K      raise parameter (5%, setpoint +1)
  Down/J    lower parameter (5%, setpoint -1)
  D         toggle direction (normal / reverse)
  M         toggle mode (on error / on rate)
  I         clear the integral
  + / -     simulation speed
  T         cycle theme
  Q         quit
`
