package trainer

import (
	"time"

	"github.com/san-kum/pedaltrainer/internal/input"
	"github.com/san-kum/pedaltrainer/internal/metrics"
	"github.com/san-kum/pedaltrainer/internal/pedal"
)

// Session is the state owned by one practice loop.
type Session struct {
	Difficulty Difficulty
	Active     pedal.Axis
	Machine    *Machine
	Bindings   Bindings
	Metrics    *metrics.Recorder

	running bool
	raw     pedal.Raw
}

// NewSession starts a running session with a freshly drawn target.
func NewSession(d Difficulty, active pedal.Axis, rng TargetSource) *Session {
	return &Session{
		Difficulty: d,
		Active:     active,
		Machine:    NewMachine(rng),
		Bindings:   DefaultBindings(),
		Metrics:    metrics.DefaultRecorder(),
		running:    true,
		raw:        pedal.Released,
	}
}

func (s *Session) Running() bool  { return s.running }
func (s *Session) Raw() pedal.Raw { return s.raw }

// Apply performs cmd and reports whether the next poll must be debounced.
func (s *Session) Apply(cmd Command) bool {
	switch cmd {
	case CmdQuit:
		s.running = false
	case CmdToggleAxis:
		s.Active = s.Active.Toggle()
	case CmdIncreaseTolerance:
		s.Difficulty.IncreaseTolerance()
	case CmdDecreaseTolerance:
		s.Difficulty.DecreaseTolerance()
	case CmdIncreaseHoldTime:
		s.Difficulty.IncreaseHoldTime()
	case CmdDecreaseHoldTime:
		s.Difficulty.DecreaseHoldTime()
	default:
		return false
	}
	return cmd.Debounces()
}

// StepResult describes what happened in one frame.
type StepResult struct {
	Command    Command
	Debounce   bool
	InBand     bool
	Retargeted bool
}

// Step runs one frame. When ok is false the previous raw sample is reused.
func (s *Session) Step(raw pedal.Raw, ok bool, keys input.KeySet, elapsed time.Duration) StepResult {
	if !s.running {
		return StepResult{}
	}
	if ok {
		s.raw = raw
	}

	var res StepResult
	if cmd, found := Dispatch(keys, s.Bindings); found {
		res.Command = cmd
		res.Debounce = s.Apply(cmd)
	}

	sample := pedal.Normalize(s.raw.Axis(s.Active))
	res.InBand = s.Machine.InBand(sample, s.Difficulty)
	res.Retargeted = s.Machine.Tick(sample, elapsed, s.Difficulty)

	if s.Metrics != nil {
		s.Metrics.Observe(metrics.Observation{
			Elapsed:    elapsed,
			InBand:     res.InBand,
			Retargeted: res.Retargeted,
		})
	}
	return res
}

// Snapshot is a read-only view of the session for display.
type Snapshot struct {
	TolerancePercent int
	HoldSeconds      float64
	Active           pedal.Axis
	Target           float64
	Throttle         float64
	Brake            float64
	Progress         float64
	InBand           bool
}

func (s *Session) Snapshot() Snapshot {
	th, br := s.raw.Normalized()
	sample := pedal.Normalize(s.raw.Axis(s.Active))
	return Snapshot{
		TolerancePercent: s.Difficulty.TolerancePercent(),
		HoldSeconds:      s.Difficulty.HoldThresholdSeconds(),
		Active:           s.Active,
		Target:           s.Machine.Target(),
		Throttle:         th,
		Brake:            br,
		Progress:         s.Machine.Progress(s.Difficulty),
		InBand:           s.Machine.InBand(sample, s.Difficulty),
	}
}
