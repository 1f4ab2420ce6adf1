package trainer

import "time"

// TargetSource draws targets uniformly from [0,1).
type TargetSource interface {
	Float64() float64
}

// Machine tracks the current target and the dwell time spent inside the
// tolerance band.
type Machine struct {
	rng    TargetSource
	target float64
	dwell  time.Duration
}

// NewMachine draws the first target from rng.
func NewMachine(rng TargetSource) *Machine {
	return &Machine{rng: rng, target: rng.Float64()}
}

func (m *Machine) Target() float64       { return m.target }
func (m *Machine) Dwell() time.Duration { return m.dwell }

// InBand reports whether sample lies strictly inside the band around the
// target. A sample exactly on either edge is outside.
func (m *Machine) InBand(sample float64, d Difficulty) bool {
	half := d.ToleranceFraction()
	return sample > m.target-half && sample < m.target+half
}

// Tick advances the machine by one frame and reports whether a new target was
// drawn.
//
// Leaving the band pauses the dwell timer instead of clearing it, and a met
// hold resets the timer to this frame's elapsed time rather than zero. Both
// are established trainer behaviour, but neither is known to be intended;
// change them only as a deliberate rule change.
func (m *Machine) Tick(sample float64, elapsed time.Duration, d Difficulty) bool {
	if !m.InBand(sample, d) {
		return false
	}
	if m.dwell > d.HoldThreshold() {
		m.target = m.rng.Float64()
		m.dwell = elapsed
		return true
	}
	m.dwell += elapsed
	return false
}

// Progress is the dwell time as a fraction of the hold threshold, capped at 1.
func (m *Machine) Progress(d Difficulty) float64 {
	th := d.HoldThreshold()
	if th <= 0 {
		return 1
	}
	p := float64(m.dwell) / float64(th)
	if p > 1 {
		return 1
	}
	return p
}
