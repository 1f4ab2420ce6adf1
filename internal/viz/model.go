package viz

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/pedaltrainer/internal/input"
	"github.com/san-kum/pedaltrainer/internal/pedal"
	"github.com/san-kum/pedaltrainer/internal/trainer"
)

const (
	// FrameInterval is the target cadence of the practice loop.
	FrameInterval = 16 * time.Millisecond

	traceCapacity = 240
)

type TickMsg time.Time

// Recorder receives every frame the loop runs.
type Recorder interface {
	Record(elapsed time.Duration, snap trainer.Snapshot, res trainer.StepResult)
}

// Options configures a Model.
type Options struct {
	Source   input.Source
	Keyboard input.KeySource
	Interval time.Duration
	Debounce time.Duration
	BarWidth int
	Graph    bool
	Theme    string
	Logger   *slog.Logger
	Recorder Recorder
}

// Model runs the practice loop inside a Bubble Tea program.
type Model struct {
	session *trainer.Session
	opts    Options
	keys    keyMap
	help    help.Model
	theme   Theme

	// Keys pressed in the terminal since the last tick.
	pending input.KeySet
	last    time.Time

	spring    harmonica.Spring
	marker    float64
	markerVel float64

	trace []float64
	goals []float64
}

// NewModel creates the loop model. start is the time of the first frame.
func NewModel(s *trainer.Session, opts Options, start time.Time) Model {
	if opts.Interval <= 0 {
		opts.Interval = FrameInterval
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Model{
		session: s,
		opts:    opts,
		keys:    defaultKeyMap(),
		help:    help.New(),
		theme:   GetTheme(opts.Theme),
		last:    start,
		spring:  harmonica.NewSpring(harmonica.FPS(60), 6.0, 1.0),
		marker:  s.Machine.Target(),
		trace:   make([]float64, 0, traceCapacity),
		goals:   make([]float64, 0, traceCapacity),
	}
}

func (m Model) Session() *trainer.Session { return m.session }

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.ClearScreen, tick(m.opts.Interval))
}

// Update collects key presses between ticks and runs one frame per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.ForceQuit):
			m.session.Apply(trainer.CmdQuit)
			return m, tea.Quit
		case key.Matches(msg, m.keys.Theme):
			m.theme = NextTheme(m.theme.Name)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if k, ok := m.keys.logicalKey(msg); ok {
			m.pending = m.pending.With(k)
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case TickMsg:
		next := m.frame(time.Time(msg))
		if !m.session.Running() {
			return m, tea.Quit
		}
		return m, tick(next)
	}
	return m, nil
}

// frame runs one loop iteration and returns the delay until the next one.
func (m *Model) frame(now time.Time) time.Duration {
	elapsed := now.Sub(m.last)
	if elapsed < 0 {
		elapsed = 0
	}
	m.last = now

	raw, ok := m.opts.Source.Poll()
	if !ok {
		m.opts.Logger.Debug("pedal poll failed, keeping previous sample")
	}
	keys := m.pending
	m.pending = 0
	if m.opts.Keyboard != nil {
		keys = keys.Union(m.opts.Keyboard.Keys())
	}

	res := m.session.Step(raw, ok, keys, elapsed)
	if res.Command != trainer.CmdNone {
		m.opts.Logger.Debug("command", "cmd", res.Command.String(),
			"tolerance", m.session.Difficulty.TolerancePercent(),
			"hold", m.session.Difficulty.HoldTime(),
			"active", m.session.Active.String())
	}
	if res.Retargeted {
		m.opts.Logger.Debug("target reached", "next", m.session.Machine.Target())
	}

	m.marker, m.markerVel = m.spring.Update(m.marker, m.markerVel, m.session.Machine.Target())
	snap := m.session.Snapshot()
	if m.opts.Recorder != nil {
		m.opts.Recorder.Record(elapsed, snap, res)
	}
	sample := snap.Brake
	if snap.Active == pedal.Throttle {
		sample = snap.Throttle
	}
	m.trace = appendCapped(m.trace, sample)
	m.goals = appendCapped(m.goals, snap.Target)

	if res.Debounce {
		return m.opts.Interval + m.opts.Debounce
	}
	return m.opts.Interval
}

func appendCapped(s []float64, v float64) []float64 {
	if len(s) >= traceCapacity {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	return append(s, v)
}

// Frame builds the display frame for the current state.
func (m Model) Frame() Frame {
	f := Frame{
		Device:   m.opts.Source.Name(),
		Snapshot: m.session.Snapshot(),
		Marker:   m.marker,
		Trace:    m.trace,
		Goals:    m.goals,
	}
	if m.session.Metrics != nil {
		f.Stats = m.session.Metrics.Summary()
	}
	return f
}

func (m Model) View() string {
	out := Render(m.Frame(), RenderOptions{
		Theme:    m.theme,
		BarWidth: m.opts.BarWidth,
		Graph:    m.opts.Graph,
	})
	return out + "\n" + indent + m.help.View(m.keys) + "\n"
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
