package viz

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pedaltrainer/internal/input"
	"github.com/san-kum/pedaltrainer/internal/pedal"
	"github.com/san-kum/pedaltrainer/internal/trainer"
)

type fixedTarget float64

func (f fixedTarget) Float64() float64 { return float64(f) }

type fakeSource struct {
	raw   pedal.Raw
	ok    bool
	polls int
}

func (f *fakeSource) Name() string { return "fake wheel" }
func (f *fakeSource) Poll() (pedal.Raw, bool) {
	f.polls++
	return f.raw, f.ok
}
func (f *fakeSource) Close() error { return nil }

func newTestModel(src *fakeSource, kb input.KeySource) (Model, time.Time) {
	s := trainer.NewSession(trainer.NewDifficulty(10, 20), pedal.Brake, fixedTarget(0.5))
	start := time.Unix(1000, 0)
	m := NewModel(s, Options{
		Source:   src,
		Keyboard: kb,
		Interval: 16 * time.Millisecond,
		Debounce: 64 * time.Millisecond,
		BarWidth: 40,
	}, start)
	return m, start
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return nm, cmd
}

func TestTickStepsSession(t *testing.T) {
	src := &fakeSource{raw: pedal.Raw{Throttle: pedal.RawMax, Brake: 32768}, ok: true}
	m, start := newTestModel(src, nil)

	m, cmd := update(t, m, TickMsg(start.Add(100*time.Millisecond)))
	if cmd == nil {
		t.Fatal("expected next tick to be scheduled")
	}
	if src.polls != 1 {
		t.Errorf("expected one poll, got %d", src.polls)
	}
	if got := m.Session().Machine.Dwell(); got != 100*time.Millisecond {
		t.Errorf("expected 100ms dwell, got %v", got)
	}
	if len(m.trace) != 1 || len(m.goals) != 1 {
		t.Errorf("expected one trace point, got %d/%d", len(m.trace), len(m.goals))
	}
}

func TestTerminalKeysApplyOnNextTick(t *testing.T) {
	src := &fakeSource{raw: pedal.Released, ok: true}
	m, start := newTestModel(src, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Session().Difficulty.TolerancePercent() != 10 {
		t.Fatal("keys must not apply before the tick")
	}

	m, _ = update(t, m, TickMsg(start.Add(16*time.Millisecond)))
	if got := m.Session().Difficulty.TolerancePercent(); got != 11 {
		t.Errorf("expected one increment per frame, got tolerance %d", got)
	}

	m, _ = update(t, m, TickMsg(start.Add(32*time.Millisecond)))
	if got := m.Session().Difficulty.TolerancePercent(); got != 11 {
		t.Errorf("released key should not fire again, got %d", got)
	}
}

func TestFrameDebounceDelay(t *testing.T) {
	src := &fakeSource{raw: pedal.Released, ok: true}
	m, start := newTestModel(src, nil)

	m.pending = input.Keys(input.KeyTab)
	if d := m.frame(start.Add(16 * time.Millisecond)); d != 80*time.Millisecond {
		t.Errorf("expected interval plus debounce, got %v", d)
	}
	if m.Session().Active != pedal.Throttle {
		t.Error("expected active pedal toggled")
	}

	if d := m.frame(start.Add(96 * time.Millisecond)); d != 16*time.Millisecond {
		t.Errorf("expected plain interval, got %v", d)
	}
}

func TestEscapeQuits(t *testing.T) {
	src := &fakeSource{raw: pedal.Released, ok: true}
	m, start := newTestModel(src, nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, cmd := update(t, m, TickMsg(start.Add(16*time.Millisecond)))
	if m.Session().Running() {
		t.Error("session should stop after escape")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
}

func TestHeldKeyboardKeys(t *testing.T) {
	src := &fakeSource{raw: pedal.Released, ok: true}
	m, start := newTestModel(src, input.StaticKeys(input.Keys(input.KeyUp)))

	now := start
	for i := 0; i < 3; i++ {
		now = now.Add(80 * time.Millisecond)
		m.frame(now)
	}
	if got := m.Session().Difficulty.HoldTime(); got != 23 {
		t.Errorf("expected hold time 23 after three frames, got %d", got)
	}
}

func TestFailedPollKeepsSample(t *testing.T) {
	src := &fakeSource{raw: pedal.Raw{Throttle: pedal.RawMax, Brake: 32768}, ok: true}
	m, start := newTestModel(src, nil)
	m.frame(start.Add(50 * time.Millisecond))

	src.raw = pedal.Released
	src.ok = false
	m.frame(start.Add(100 * time.Millisecond))

	if m.Session().Raw().Brake != 32768 {
		t.Errorf("expected previous brake sample, got %d", m.Session().Raw().Brake)
	}
	if got := m.Session().Machine.Dwell(); got != 100*time.Millisecond {
		t.Errorf("expected dwell to keep growing, got %v", got)
	}
}

func TestViewRenders(t *testing.T) {
	src := &fakeSource{raw: pedal.Released, ok: true}
	m, _ := newTestModel(src, nil)
	if out := m.View(); out == "" {
		t.Error("expected non-empty view")
	}
	if m.Frame().Device != "fake wheel" {
		t.Errorf("unexpected device %q", m.Frame().Device)
	}
}

func TestAppendCapped(t *testing.T) {
	var s []float64
	for i := 0; i < traceCapacity+10; i++ {
		s = appendCapped(s, float64(i))
	}
	if len(s) != traceCapacity {
		t.Fatalf("expected %d points, got %d", traceCapacity, len(s))
	}
	if s[0] != 10 || s[len(s)-1] != float64(traceCapacity+9) {
		t.Errorf("unexpected window %f..%f", s[0], s[len(s)-1])
	}
}

type frameLog struct {
	elapsed []time.Duration
	targets []float64
}

func (l *frameLog) Record(elapsed time.Duration, snap trainer.Snapshot, res trainer.StepResult) {
	l.elapsed = append(l.elapsed, elapsed)
	l.targets = append(l.targets, snap.Target)
}

func TestRecorderSeesEveryFrame(t *testing.T) {
	src := &fakeSource{raw: pedal.Released, ok: true}
	m, start := newTestModel(src, nil)
	log := &frameLog{}
	m.opts.Recorder = log

	m, _ = update(t, m, TickMsg(start.Add(16*time.Millisecond)))
	m, _ = update(t, m, TickMsg(start.Add(40*time.Millisecond)))

	if len(log.elapsed) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(log.elapsed))
	}
	if log.elapsed[1] != 24*time.Millisecond {
		t.Errorf("expected 24ms between frames, got %v", log.elapsed[1])
	}
	if log.targets[0] != 0.5 {
		t.Errorf("expected target 0.5, got %f", log.targets[0])
	}
}

func TestFrameWithoutMetrics(t *testing.T) {
	src := &fakeSource{raw: pedal.Released, ok: true}
	m, start := newTestModel(src, nil)
	m.Session().Metrics = nil

	m, _ = update(t, m, TickMsg(start.Add(16*time.Millisecond)))

	f := m.Frame()
	if f.Stats != nil {
		t.Errorf("expected no stats, got %v", f.Stats)
	}
	if m.View() == "" {
		t.Error("expected a view without metrics")
	}
}
