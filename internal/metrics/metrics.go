// Package metrics accumulates per-session statistics for the trainer.
package metrics

import (
	"sort"
	"time"
)

// Observation is what the trainer reports after each frame.
type Observation struct {
	Elapsed    time.Duration
	InBand     bool
	Retargeted bool
}

type Metric interface {
	Name() string
	Observe(o Observation)
	Value() float64
	Reset()
}

// Recorder fans observations out to a fixed set of metrics.
type Recorder struct {
	metrics []Metric
}

func NewRecorder(ms ...Metric) *Recorder {
	return &Recorder{metrics: ms}
}

// DefaultRecorder tracks hits, time in band and mean time to target.
func DefaultRecorder() *Recorder {
	return NewRecorder(NewTargetsHit(), NewInBandRatio(), NewTimeToTarget())
}

func (r *Recorder) Observe(o Observation) {
	for _, m := range r.metrics {
		m.Observe(o)
	}
}

func (r *Recorder) Reset() {
	for _, m := range r.metrics {
		m.Reset()
	}
}

// Value returns the value of the named metric.
func (r *Recorder) Value(name string) (float64, bool) {
	for _, m := range r.metrics {
		if m.Name() == name {
			return m.Value(), true
		}
	}
	return 0, false
}

func (r *Recorder) Summary() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the metric names in sorted order.
func (r *Recorder) Names() []string {
	names := make([]string, 0, len(r.metrics))
	for _, m := range r.metrics {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}
