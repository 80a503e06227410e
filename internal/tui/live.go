// Package tui is the terminal front end for a running simulation. It only
// drives the core through Simulation's public methods.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/maglev/internal/config"
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/export"
	"github.com/san-kum/maglev/internal/sim"
)

const (
	frameInterval = 16 * time.Millisecond
	chartSamples  = 600
	ballRows      = 14
)

// tunable is one live-adjustable parameter and its key step.
type tunable struct {
	name   string
	label  string
	step   float64
	format string
}

var tunables = []tunable{
	{"Kp", "kp", 5, "%.1f"},
	{"Ki", "ki", 5, "%.1f"},
	{"Kd", "kd", 1, "%.1f"},
	{"Setpoint", "setpoint", 0.05, "%.2f m"},
	{"Noise", "noise", 0.001, "%.3f m"},
	{"MaxForce", "max force", 5, "%.0f N"},
}

// Options configures the live view.
type Options struct {
	// Defaults are the parameters Restart returns to.
	Defaults   sim.Params
	SampleRate float64
	// ConfigPath, if set, is watched and re-applied on every save.
	ConfigPath string
	Now        func() time.Time
	Logger     *slog.Logger
}

type tickMsg time.Time

type configMsg struct{ cfg *config.Config }

type configErrMsg struct{ err error }

type model struct {
	sim      *sim.Simulation
	pacer    *sim.Pacer
	defaults sim.Params
	now      func() time.Time
	log      *slog.Logger

	keys     keyMap
	help     help.Model
	cursor   int
	paused   bool
	status   string
	statusOK bool
	failures int

	width  int
	height int
}

func newModel(s *sim.Simulation, opts Options) (*model, error) {
	pacer, err := sim.NewPacer(opts.SampleRate, opts.Now)
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s.SetHistoryLimit(chartSamples)

	return &model{
		sim:      s,
		pacer:    pacer,
		defaults: opts.Defaults,
		now:      now,
		log:      log,
		keys:     defaultKeys(),
		help:     help.New(),
		width:    80,
		height:   24,
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Init() tea.Cmd {
	m.pacer.Restart()
	return tick()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if !m.paused {
			m.advance()
		}
		return m, tick()
	case configMsg:
		m.applyConfig(msg.cfg)
		return m, nil
	case configErrMsg:
		m.setStatus(false, "config rejected: %v", msg.err)
		return m, nil
	}
	return m, nil
}

// advance steps the simulation once per elapsed sampling period.
func (m *model) advance() {
	n := m.pacer.Due()
	dt := m.pacer.Period()
	for i := 0; i < n; i++ {
		if _, err := m.sim.Step(dt); err != nil {
			m.failures++
			m.log.Warn("step failed, resetting", "error", err)
			m.setStatus(false, "%v; ball reset", err)
			initial := m.sim.Params().Initial
			m.sim.Reset(initial.Position, initial.Velocity)
			return
		}
	}
}

func (m *model) applyConfig(cfg *config.Config) {
	if err := m.sim.Apply(cfg.Params()); err != nil {
		m.setStatus(false, "config rejected: %v", err)
		return
	}
	if cfg.SampleRate > 0 && math.Abs(cfg.SampleRate-1/m.pacer.Period()) > 1e-9 {
		if pacer, err := sim.NewPacer(cfg.SampleRate, m.now); err == nil {
			m.pacer = pacer
		}
	}
	m.setStatus(true, "config reloaded")
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(tunables)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Increase):
		m.adjust(1)
	case key.Matches(msg, m.keys.Decrease):
		m.adjust(-1)
	case key.Matches(msg, m.keys.Hold):
		hold := !m.sim.Params().Physics.Hold
		if err := m.sim.SetHold(hold); err != nil {
			m.setStatus(false, "%v", err)
		}
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if !m.paused {
			m.pacer.Restart()
		}
	case key.Matches(msg, m.keys.Reset):
		initial := m.sim.Params().Initial
		if err := m.sim.Reset(initial.Position, initial.Velocity); err != nil {
			m.setStatus(false, "%v", err)
		} else {
			m.setStatus(true, "reset")
		}
	case key.Matches(msg, m.keys.Restart):
		if err := m.sim.Restart(m.defaults); err != nil {
			m.setStatus(false, "%v", err)
		} else {
			m.setStatus(true, "restarted with defaults")
		}
	}
	return m, nil
}

func (m *model) adjust(dir float64) {
	t := tunables[m.cursor]
	value := m.sim.GetParams()[t.name] + dir*t.step
	if math.Abs(value) < t.step/1e6 {
		value = 0
	}
	if err := m.sim.SetParam(t.name, value); err != nil {
		if errors.Is(err, dynamo.ErrInvalidInput) {
			m.setStatus(false, "%s cannot be %g", t.label, value)
			return
		}
		m.setStatus(false, "%v", err)
		return
	}
	m.status = ""
}

func (m *model) setStatus(ok bool, format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusOK = ok
}

func (m *model) View() string {
	snap := m.sim.Snapshot()
	params := m.sim.Params()

	var b strings.Builder

	statusIcon, statusText := green.Render("●"), green.Render("running")
	switch {
	case m.paused:
		statusIcon, statusText = yellow.Render("○"), yellow.Render("paused")
	case params.Physics.Hold:
		statusIcon, statusText = magenta.Render("◆"), magenta.Render("holding")
	}
	b.WriteString(fmt.Sprintf("\n %s %s  %s  %s\n\n",
		statusIcon, cyan.Render("maglev"), statusText,
		dim.Render(fmt.Sprintf("t=%.1fs  %d steps  %.0f Hz", snap.Time, snap.Steps, 1/m.pacer.Period()))))

	left := panel.Render(m.viewBall(snap, params))
	right := panel.Render(m.viewParams())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	chartWidth := m.width - 14
	if chartWidth < 30 {
		chartWidth = 30
	}
	if history := m.sim.History(); len(history) > 1 {
		b.WriteString(export.ASCII(history, chartWidth, 8, "position (cyan) vs setpoint (red)"))
		b.WriteString("\n")
	}

	if m.status != "" {
		style := red
		if m.statusOK {
			style = green
		}
		b.WriteString("\n " + style.Render(m.status) + "\n")
	}
	b.WriteString("\n " + m.help.View(m.keys) + "\n")
	return b.String()
}

// viewBall draws the vertical axis with the attractor, setpoint and ball.
func (m *model) viewBall(snap sim.Snapshot, params sim.Params) string {
	top := params.Physics.Attractor.Position + 0.2
	bottom := math.Min(0, params.Setpoint) - 0.2
	row := func(y float64) int {
		r := int(math.Round((top - y) / (top - bottom) * float64(ballRows-1)))
		return max(0, min(ballRows-1, r))
	}

	attractorRow := row(params.Physics.Attractor.Position)
	setpointRow := row(params.Setpoint)
	ballRow := row(snap.Ball.Position)

	var b strings.Builder
	for r := 0; r < ballRows; r++ {
		var cell string
		switch {
		case r == ballRow && (snap.Ball.Position > top || snap.Ball.Position < bottom):
			cell = red.Render("  ◌  ")
		case r == ballRow:
			cell = white.Render("  ●  ")
		case r == attractorRow:
			cell = yellow.Render("▀▀▀▀▀")
		case r == setpointRow:
			cell = red.Render("- - -")
		default:
			cell = dimmer.Render("  │  ")
		}
		b.WriteString(cell)
		if r == 0 {
			b.WriteString(dim.Render(fmt.Sprintf(" %.2f m", top)))
		}
		if r == ballRows-1 {
			b.WriteString(dim.Render(fmt.Sprintf(" %.2f m", bottom)))
		}
		b.WriteString("\n")
	}
	b.WriteString(dim.Render("x ") + white.Render(fmt.Sprintf("%+.4f", snap.Ball.Position)) + "\n")
	b.WriteString(dim.Render("v ") + white.Render(fmt.Sprintf("%+.4f", snap.Ball.Velocity)))
	return b.String()
}

func (m *model) viewParams() string {
	values := m.sim.GetParams()
	snap := m.sim.Snapshot()

	var b strings.Builder
	for i, t := range tunables {
		line := fmt.Sprintf("%-10s %12s", t.label, fmt.Sprintf(t.format, values[t.name]))
		if i == m.cursor {
			b.WriteString(selected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(dim.Render("  ") + white.Render(line) + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dim.Render(fmt.Sprintf("  drive     %12.2f\n", snap.Drive)))
	b.WriteString(dim.Render(fmt.Sprintf("  integral  %12.4f\n", snap.Integral)))
	b.WriteString(dim.Render(fmt.Sprintf("  measured  %12.4f\n", snap.Last.Measured)))
	b.WriteString(dim.Render(fmt.Sprintf("  error     %12.4f", snap.Setpoint-snap.Ball.Position)))
	if m.failures > 0 {
		b.WriteString("\n" + red.Render(fmt.Sprintf("  failures  %12d", m.failures)))
	}
	return b.String()
}

// Run shows the live view until the user quits.
func Run(ctx context.Context, s *sim.Simulation, opts Options) error {
	m, err := newModel(s, opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.ConfigPath != "" {
		go func() {
			err := config.Watch(ctx, opts.ConfigPath,
				func(cfg *config.Config) { p.Send(configMsg{cfg}) },
				func(err error) { p.Send(configErrMsg{err}) })
			if err != nil {
				m.log.Error("config watch stopped", "path", opts.ConfigPath, "error", err)
			}
		}()
	}

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
